package socket

import (
	"io"
	"net"
	"os"
)

// copyFallback streams the file region through userspace when
// sendfile(2) is unavailable or fails.
func copyFallback(conn net.Conn, file *os.File, offset, count int64) (int64, error) {
	return io.Copy(conn, io.NewSectionReader(file, offset, count))
}
