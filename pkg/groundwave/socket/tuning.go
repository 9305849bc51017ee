// Package socket applies TCP-level tuning to accepted connections and
// provides zero-copy file transmission. Platform-specific pieces live
// in the _linux/_other files; on unsupported platforms everything
// degrades to portable no-ops and io.Copy.
package socket

import (
	"net"
	"syscall"
)

// Config represents socket tuning options.
// Zero values mean "use system defaults".
type Config struct {
	// TCP_NODELAY - disable Nagle's algorithm.
	// Recommended for HTTP/1.1: responses are flushed whole.
	NoDelay bool

	// SO_RCVBUF in bytes; 0 keeps the system default.
	RecvBuffer int

	// SO_SNDBUF in bytes; 0 keeps the system default.
	SendBuffer int

	// TCP_QUICKACK - send immediate ACKs (Linux only).
	QuickAck bool

	// SO_KEEPALIVE - enable TCP keepalive probes.
	KeepAlive bool

	// TCP_DEFER_ACCEPT - don't wake the accept loop until the client
	// has sent data (Linux only, listener option). Value is the
	// timeout in seconds.
	DeferAccept int
}

// DefaultConfig returns the recommended options for HTTP serving.
func DefaultConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		QuickAck:    true,
		KeepAlive:   true,
		DeferAccept: 5,
	}
}

// Apply applies the tuning options to an accepted connection.
// Non-TCP connections are left untouched. Platform-specific options
// that the kernel rejects are ignored; only a failure to reach the raw
// socket is reported.
func Apply(conn net.Conn, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}

	return rawConn.Control(func(fd uintptr) {
		if cfg.NoDelay {
			syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1)
		}
		if cfg.RecvBuffer > 0 {
			syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, cfg.RecvBuffer)
		}
		if cfg.SendBuffer > 0 {
			syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, cfg.SendBuffer)
		}
		if cfg.KeepAlive {
			syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
		}
		applyPlatform(int(fd), cfg)
	})
}

// ApplyListener applies the options that belong on the listening
// socket rather than on accepted connections. Safe to call with any
// listener; non-TCP listeners are left untouched.
func ApplyListener(ln net.Listener, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		return nil
	}

	rawConn, err := tcpLn.SyscallConn()
	if err != nil {
		return err
	}

	return rawConn.Control(func(fd uintptr) {
		applyListenerPlatform(int(fd), cfg)
	})
}
