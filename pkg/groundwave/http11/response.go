package http11

import (
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/yourusername/groundwave/pkg/groundwave/socket"
)

// ResponseWriter serializes one HTTP/1.1 response: status line,
// headers, blank line, body. Pooled and reused across the keep-alive
// loop.
//
// Content-Length is mandatory and enforced: SetContentLength declares
// the body size, Finish compares it against the bytes actually written
// and reports ErrContentLengthMismatch on disagreement. A mismatch is a
// responder bug, never a client-facing status — by the time it is
// detectable the headers are already on the wire.
//
// In head mode (HEAD requests) the status line and headers are written
// exactly as for the equivalent GET, and body bytes are suppressed.
type ResponseWriter struct {
	w io.Writer

	// conn, when set, exposes the raw socket for sendfile.
	conn net.Conn

	status        int
	header        Header
	headerWritten bool

	head      bool
	keepAlive bool

	contentLength int64 // declared; -1 until set
	bytesWritten  int64
}

// NewResponseWriter creates a ResponseWriter over w.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{w: w, status: 200, contentLength: -1}
}

// Reset re-targets the writer for pooled reuse.
func (rw *ResponseWriter) Reset(w io.Writer) {
	rw.w = w
	rw.conn = nil
	rw.status = 200
	rw.header.Reset()
	rw.headerWritten = false
	rw.head = false
	rw.keepAlive = false
	rw.contentLength = -1
	rw.bytesWritten = 0
}

// Header returns the response headers.
// Mutations after the headers hit the wire are lost.
func (rw *ResponseWriter) Header() *Header {
	return &rw.header
}

// WriteHeader sets the response status. The status line is written
// lazily with the header block, so the status stays mutable until the
// first body write flushes the headers.
func (rw *ResponseWriter) WriteHeader(statusCode int) {
	if rw.headerWritten {
		return
	}
	rw.status = statusCode
}

// SetContentLength declares the exact body size and sets the
// Content-Length header.
func (rw *ResponseWriter) SetContentLength(n int64) {
	rw.contentLength = n
	rw.header.Set(headerContentLength, strconv.AppendInt(nil, n, 10))
}

// SetKeepAlive records the negotiated persistence decision; the
// Connection header is emitted from it unless one was set explicitly.
func (rw *ResponseWriter) SetKeepAlive(keep bool) {
	rw.keepAlive = keep
}

// SetHead switches the writer into head mode: headers only, body bytes
// discarded.
func (rw *ResponseWriter) SetHead(head bool) {
	rw.head = head
}

// Write sends body bytes, emitting the status line and headers first if
// they have not gone out yet. In head mode the bytes are dropped.
func (rw *ResponseWriter) Write(data []byte) (int, error) {
	if !rw.headerWritten {
		if err := rw.writeHeaders(); err != nil {
			return 0, err
		}
	}
	if rw.head {
		rw.bytesWritten += int64(len(data))
		return len(data), nil
	}
	n, err := rw.w.Write(data)
	rw.bytesWritten += int64(n)
	return n, err
}

// ReadFrom streams a body from r, using the buffered writer's own
// copy loop. Headers are flushed first like Write.
func (rw *ResponseWriter) ReadFrom(r io.Reader) (int64, error) {
	if !rw.headerWritten {
		if err := rw.writeHeaders(); err != nil {
			return 0, err
		}
	}
	if rw.head {
		return 0, nil
	}
	n, err := io.Copy(rw.w, r)
	rw.bytesWritten += n
	return n, err
}

// SendFile transmits count bytes of f as the response body, using
// sendfile(2) when the writer is bound to a real TCP connection.
// Buffered headers are flushed before the zero-copy transfer so the
// kernel sees them in order.
func (rw *ResponseWriter) SendFile(f *os.File, count int64) error {
	if !rw.headerWritten {
		if err := rw.writeHeaders(); err != nil {
			return err
		}
	}
	if rw.head {
		return nil
	}
	if rw.conn != nil {
		if err := rw.flushUnderlying(); err != nil {
			return err
		}
		n, err := socket.SendFile(rw.conn, f, 0, count)
		rw.bytesWritten += n
		return err
	}
	n, err := io.Copy(rw.w, io.LimitReader(f, count))
	rw.bytesWritten += n
	return err
}

// writeHeaders emits "HTTP/1.1 <code> <reason>\r\n", the header block,
// and the terminating blank line. Date, Server and Connection are
// filled in unless the responder set them explicitly.
func (rw *ResponseWriter) writeHeaders() error {
	rw.headerWritten = true

	if _, err := rw.w.Write(getStatusLine(rw.status)); err != nil {
		return err
	}

	if !rw.header.Has(headerDate) {
		if err := rw.writePair(headerDate, []byte(time.Now().UTC().Format(DateFormat))); err != nil {
			return err
		}
	}
	if !rw.header.Has(headerServer) {
		if err := rw.writePair(headerServer, serverNameBytes); err != nil {
			return err
		}
	}
	if !rw.header.Has(headerConnection) {
		v := headerClose
		if rw.keepAlive {
			v = headerKeepAlive
		}
		if err := rw.writePair(headerConnection, v); err != nil {
			return err
		}
	}

	var wireErr error
	rw.header.VisitAll(func(name, value []byte) bool {
		wireErr = rw.writePair(name, value)
		return wireErr == nil
	})
	if wireErr != nil {
		return wireErr
	}

	_, err := rw.w.Write(crlfBytes)
	return err
}

func (rw *ResponseWriter) writePair(name, value []byte) error {
	if _, err := rw.w.Write(name); err != nil {
		return err
	}
	if _, err := rw.w.Write(colonSpace); err != nil {
		return err
	}
	if _, err := rw.w.Write(value); err != nil {
		return err
	}
	_, err := rw.w.Write(crlfBytes)
	return err
}

// Finish completes the response: writes headers if nothing did yet and
// verifies the Content-Length invariant. In head mode the body was
// deliberately suppressed, so only a positive mismatch (accounted bytes
// disagreeing with the declaration) counts.
func (rw *ResponseWriter) Finish() error {
	if !rw.headerWritten {
		if rw.contentLength < 0 {
			rw.SetContentLength(0)
		}
		if err := rw.writeHeaders(); err != nil {
			return err
		}
	}
	if rw.contentLength >= 0 && rw.bytesWritten != rw.contentLength {
		if rw.head && rw.bytesWritten == 0 {
			return nil
		}
		return ErrContentLengthMismatch
	}
	return nil
}

// flushUnderlying flushes the buffered writer, if there is one.
func (rw *ResponseWriter) flushUnderlying() error {
	if f, ok := rw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Status returns the status code that was (or will be) written.
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// BytesWritten returns the number of body bytes accounted so far.
func (rw *ResponseWriter) BytesWritten() int64 {
	return rw.bytesWritten
}

// HeaderWritten reports whether the header block hit the wire.
func (rw *ResponseWriter) HeaderWritten() bool {
	return rw.headerWritten
}

// WriteText writes a complete plain-text response with an exact
// Content-Length.
func (rw *ResponseWriter) WriteText(statusCode int, body []byte) error {
	rw.WriteHeader(statusCode)
	rw.header.Set(headerContentType, contentTypePlain)
	rw.SetContentLength(int64(len(body)))
	_, err := rw.Write(body)
	return err
}

// WriteError writes the standard body for an error status: the status
// text itself, as plain text.
func (rw *ResponseWriter) WriteError(statusCode int) error {
	return rw.WriteText(statusCode, []byte(StatusText(statusCode)))
}

// getStatusLine returns a pre-compiled status line for the codes this
// server emits; uncommon codes are built on the fly (1 allocation).
func getStatusLine(code int) []byte {
	switch code {
	case 200:
		return status200Bytes
	case 204:
		return status204Bytes
	case 206:
		return status206Bytes
	case 301:
		return status301Bytes
	case 302:
		return status302Bytes
	case 304:
		return status304Bytes
	case 400:
		return status400Bytes
	case 403:
		return status403Bytes
	case 404:
		return status404Bytes
	case 405:
		return status405Bytes
	case 408:
		return status408Bytes
	case 413:
		return status413Bytes
	case 414:
		return status414Bytes
	case 431:
		return status431Bytes
	case 500:
		return status500Bytes
	case 501:
		return status501Bytes
	case 503:
		return status503Bytes
	case 505:
		return status505Bytes
	default:
		return []byte("HTTP/1.1 " + strconv.Itoa(code) + " " + StatusText(code) + "\r\n")
	}
}

// StatusText returns the RFC 7231 reason phrase for a status code.
func StatusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 204:
		return "No Content"
	case 206:
		return "Partial Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 408:
		return "Request Timeout"
	case 413:
		return "Payload Too Large"
	case 414:
		return "URI Too Long"
	case 431:
		return "Request Header Fields Too Large"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	case 505:
		return "HTTP Version Not Supported"
	default:
		return "Unknown"
	}
}
