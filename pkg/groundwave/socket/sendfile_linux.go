//go:build linux

package socket

import (
	"net"
	"os"
	"syscall"
)

// SendFile transmits count bytes of file starting at offset over conn
// using the sendfile(2) syscall: the kernel moves bytes from the page
// cache straight into the socket, with no userspace buffer or copy.
// Falls back to io.Copy for non-TCP connections or on syscall failure
// before any byte was written.
func SendFile(conn net.Conn, file *os.File, offset, count int64) (int64, error) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return copyFallback(conn, file, offset, count)
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return copyFallback(conn, file, offset, count)
	}

	srcFd := int(file.Fd())
	var (
		written     int64
		sendfileErr error
	)

	werr := rawConn.Write(func(dstFd uintptr) bool {
		curOffset := offset + written
		remaining := count - written

		for remaining > 0 {
			// sendfile caps a single call; chunk large files.
			chunk := remaining
			if chunk > 1<<30 {
				chunk = 1 << 30
			}

			n, err := syscall.Sendfile(int(dstFd), srcFd, &curOffset, int(chunk))
			if n > 0 {
				written += int64(n)
				remaining -= int64(n)
			}
			if err != nil {
				if err == syscall.EINTR {
					continue
				}
				if err == syscall.EAGAIN {
					// Socket buffer full; yield back to the poller and
					// resume when writable.
					return false
				}
				sendfileErr = err
				return true
			}
			if n == 0 {
				return true
			}
		}
		return true
	})

	if werr != nil {
		return written, werr
	}
	if sendfileErr != nil {
		if written == 0 {
			return copyFallback(conn, file, offset, count)
		}
		return written, sendfileErr
	}
	return written, nil
}
