package static

import (
	"io"
	"os"
)

// FileInfo carries the two facts the handler needs about a resolved
// path: how many bytes to frame and whether to look for an index file.
type FileInfo struct {
	Size int64
	Dir  bool
}

// FileSystem abstracts the storage the handler reads from. The osFS
// implementation is what production uses; tests substitute in-memory
// fakes to exercise resolution without touching disk.
type FileSystem interface {
	Stat(name string) (FileInfo, error)
	Open(name string) (io.ReadCloser, error)
}

// OSFileSystem returns a FileSystem backed by the host filesystem.
// Its Open returns *os.File, which lets the response writer take the
// sendfile path.
func OSFileSystem() FileSystem { return osFS{} }

type osFS struct{}

func (osFS) Stat(name string) (FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Size: info.Size(), Dir: info.IsDir()}, nil
}

func (osFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}
