//go:build !linux

package socket

func applyPlatform(fd int, cfg *Config) {
	// No platform-specific options outside Linux.
}

func applyListenerPlatform(fd int, cfg *Config) {}
