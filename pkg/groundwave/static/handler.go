package static

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/klauspost/compress/gzip"

	"github.com/yourusername/groundwave/pkg/groundwave/http11"
)

var (
	headerContentType     = []byte("Content-Type")
	headerContentEncoding = []byte("Content-Encoding")
	headerAcceptEncoding  = []byte("Accept-Encoding")
	gzipBytes             = []byte("gzip")
)

// Config controls resolution and transmission behavior of a Handler.
type Config struct {
	// Root is the directory all targets resolve under. Required.
	Root string

	// Index is the file served for directory targets. Defaults to
	// "index.html".
	Index string

	// FS overrides the backing filesystem. Defaults to the host
	// filesystem.
	FS FileSystem

	// EnableGzip turns on gzip encoding for compressible types when
	// the client advertises support.
	EnableGzip bool

	// GzipMinSize is the smallest file worth compressing. Defaults
	// to 1KB; tiny files cost more in header overhead than they save.
	GzipMinSize int64

	// GzipMaxSize caps the file size compressed in memory. Larger
	// files are sent identity-encoded. Defaults to 8MB.
	GzipMaxSize int64

	// SendFileMinSize is the response size at which transmission
	// switches from buffered writes to sendfile. Defaults to 64KB.
	SendFileMinSize int64
}

const (
	defaultIndex           = "index.html"
	defaultGzipMinSize     = 1 << 10
	defaultGzipMaxSize     = 8 << 20
	defaultSendFileMinSize = 64 << 10
)

// Handler resolves request targets against a web root and writes the
// file responses. One Handler is shared by every connection; it holds
// no per-request state.
type Handler struct {
	root            string
	index           string
	fs              FileSystem
	enableGzip      bool
	gzipMinSize     int64
	gzipMaxSize     int64
	sendFileMinSize int64
}

// NewHandler builds a Handler from cfg, resolving Root to an absolute
// path so containment checks compare against a stable prefix.
func NewHandler(cfg Config) (*Handler, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		root:            root,
		index:           cfg.Index,
		fs:              cfg.FS,
		enableGzip:      cfg.EnableGzip,
		gzipMinSize:     cfg.GzipMinSize,
		gzipMaxSize:     cfg.GzipMaxSize,
		sendFileMinSize: cfg.SendFileMinSize,
	}
	if h.index == "" {
		h.index = defaultIndex
	}
	if h.fs == nil {
		h.fs = OSFileSystem()
	}
	if h.gzipMinSize <= 0 {
		h.gzipMinSize = defaultGzipMinSize
	}
	if h.gzipMaxSize <= 0 {
		h.gzipMaxSize = defaultGzipMaxSize
	}
	if h.sendFileMinSize <= 0 {
		h.sendFileMinSize = defaultSendFileMinSize
	}
	return h, nil
}

// Root returns the absolute web root the handler serves from.
func (h *Handler) Root() string { return h.root }

// Serve resolves the request target and writes the response. Every
// return path either set a status or propagates an I/O error the
// connection will treat as fatal.
func (h *Handler) Serve(req *http11.Request, rw *http11.ResponseWriter) error {
	full, info, status := h.resolve(req.Path())
	if status != 0 {
		return rw.WriteError(status)
	}

	contentType := TypeByExtension(full)
	if h.wantsGzip(req, contentType, info.Size) {
		return h.serveGzip(rw, full, info.Size, contentType)
	}
	return h.serveIdentity(req, rw, full, info.Size, contentType)
}

// resolve maps a request target to an absolute file path. A non-zero
// status means resolution failed and the caller should respond with it.
func (h *Handler) resolve(target string) (string, FileInfo, int) {
	clean, err := CleanPath(target)
	if err != nil {
		if err == ErrTraversal {
			return "", FileInfo{}, 403
		}
		return "", FileInfo{}, 400
	}

	full := filepath.Join(h.root, filepath.FromSlash(clean))
	// CleanPath already refused traversal; this guards the join itself.
	if full != h.root && !strings.HasPrefix(full, h.root+string(filepath.Separator)) {
		return "", FileInfo{}, 403
	}

	info, err := h.fs.Stat(full)
	if err != nil {
		return "", FileInfo{}, statStatus(err)
	}
	if info.Dir {
		full = filepath.Join(full, h.index)
		info, err = h.fs.Stat(full)
		if err != nil {
			return "", FileInfo{}, statStatus(err)
		}
		if info.Dir {
			return "", FileInfo{}, 404
		}
	}
	return full, info, 0
}

// statStatus classifies a filesystem error into a response status.
// ENOTDIR means a file was used as a directory component, which is an
// absent resource rather than a server fault.
func statStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return 404
	case errors.Is(err, fs.ErrPermission):
		return 403
	default:
		return 500
	}
}

func (h *Handler) serveIdentity(req *http11.Request, rw *http11.ResponseWriter, full string, size int64, contentType string) error {
	rw.WriteHeader(200)
	rw.Header().Set(headerContentType, []byte(contentType))
	rw.SetContentLength(size)

	// HEAD carries the same headers as GET but no body, so the file
	// is never opened.
	if req.IsHEAD() {
		return nil
	}

	rc, err := h.fs.Open(full)
	if err != nil {
		// Stat succeeded but Open failed: the file vanished or
		// became unreadable between the two calls. Headers are not
		// on the wire yet, so the status can still change.
		return rw.WriteError(statStatus(err))
	}
	defer rc.Close()

	if f, ok := rc.(*os.File); ok && size >= h.sendFileMinSize {
		return rw.SendFile(f, size)
	}
	_, err = rw.ReadFrom(io.LimitReader(rc, size))
	return err
}

func (h *Handler) serveGzip(rw *http11.ResponseWriter, full string, size int64, contentType string) error {
	rc, err := h.fs.Open(full)
	if err != nil {
		return rw.WriteError(statStatus(err))
	}
	defer rc.Close()

	// The compressed body is buffered in full before any header goes
	// out: Content-Length must be exact, and it is unknown until the
	// encoder finishes. wantsGzip bounds the input size.
	raw, err := io.ReadAll(io.LimitReader(rc, size))
	if err != nil {
		return rw.WriteError(500)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return rw.WriteError(500)
	}
	if err := zw.Close(); err != nil {
		return rw.WriteError(500)
	}

	rw.WriteHeader(200)
	rw.Header().Set(headerContentType, []byte(contentType))
	rw.Header().Set(headerContentEncoding, gzipBytes)
	rw.SetContentLength(int64(buf.Len()))
	// On HEAD the writer discards the body but still accounts for it,
	// keeping the headers identical to the GET response.
	_, err = rw.Write(buf.Bytes())
	return err
}

func (h *Handler) wantsGzip(req *http11.Request, contentType string, size int64) bool {
	if !h.enableGzip || size < h.gzipMinSize || size > h.gzipMaxSize {
		return false
	}
	if !compressible(contentType) {
		return false
	}
	return acceptsGzip(req.GetHeader(headerAcceptEncoding))
}

// acceptsGzip scans an Accept-Encoding value for a gzip token that is
// not disabled with q=0.
func acceptsGzip(value []byte) bool {
	for len(value) > 0 {
		var part []byte
		if i := bytes.IndexByte(value, ','); i >= 0 {
			part, value = value[:i], value[i+1:]
		} else {
			part, value = value, nil
		}
		part = bytes.TrimSpace(part)
		name := part
		var params []byte
		if i := bytes.IndexByte(part, ';'); i >= 0 {
			name, params = bytes.TrimSpace(part[:i]), part[i+1:]
		}
		if !bytes.EqualFold(name, gzipBytes) {
			continue
		}
		return !qvalueZero(params)
	}
	return false
}

// qvalueZero reports whether the parameter list carries an explicit
// zero qvalue in any decimal form (q=0, q=0.0, q=0.000).
func qvalueZero(params []byte) bool {
	for len(params) > 0 {
		var p []byte
		if i := bytes.IndexByte(params, ';'); i >= 0 {
			p, params = params[:i], params[i+1:]
		} else {
			p, params = params, nil
		}
		p = bytes.TrimSpace(p)
		if len(p) < 2 || (p[0] != 'q' && p[0] != 'Q') || p[1] != '=' {
			continue
		}
		v := bytes.TrimSpace(p[2:])
		if len(v) == 0 || v[0] != '0' {
			return false
		}
		for i := 1; i < len(v); i++ {
			if i == 1 && v[i] == '.' {
				continue
			}
			if v[i] != '0' {
				return false
			}
		}
		return true
	}
	return false
}
