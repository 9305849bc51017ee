//go:build !linux

package socket

import (
	"net"
	"os"
)

// SendFile streams count bytes of file over conn. Zero-copy
// transmission is Linux-only; other platforms use io.Copy.
func SendFile(conn net.Conn, file *os.File, offset, count int64) (int64, error) {
	return copyFallback(conn, file, offset, count)
}
