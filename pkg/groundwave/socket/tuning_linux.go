//go:build linux

package socket

import "syscall"

// Linux-specific socket options not exported by the syscall package.
const (
	// TCP_QUICKACK - send immediate ACKs (disable the delayed-ACK
	// timer). Not persistent; reapplied per connection.
	tcpQuickAck = 12

	// TCP_DEFER_ACCEPT - accept(2) only returns once the client has
	// sent data, so the handler goroutine starts with bytes to parse.
	tcpDeferAccept = 9
)

func applyPlatform(fd int, cfg *Config) {
	if cfg.QuickAck {
		syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpQuickAck, 1)
	}
}

func applyListenerPlatform(fd int, cfg *Config) {
	if cfg.DeferAccept > 0 {
		syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpDeferAccept, cfg.DeferAccept)
	}
}
