package http11

// Request represents one fully parsed HTTP request.
// Pooled and reused across the keep-alive loop.
//
// The byte-slice fields (method, path, query, body) are zero-copy
// references into the connection's StreamBuffer. They are valid until
// the connection releases the request and compacts the buffer for the
// next parse cycle; handlers must copy anything they keep.
type Request struct {
	// MethodID identifies the method; always GET or HEAD for a request
	// that survived parsing.
	MethodID uint8

	methodBytes []byte // e.g. "GET"
	pathBytes   []byte // e.g. "/static/app.css" (pre-decoding)
	queryBytes  []byte // e.g. "v=3" (without '?'), nil if absent

	// Header holds the ordered header sequence.
	Header Header

	// Body holds the request body when Content-Length was present.
	// nil otherwise. Bounded by the configured body limit.
	Body []byte

	// ContentLength is the declared body size; 0 when absent.
	ContentLength int64

	// Protocol version; only 1.0 and 1.1 survive parsing.
	Proto      string
	ProtoMajor int
	ProtoMinor int

	// Connection header intent, captured during header parsing.
	closeRequested     bool
	keepAliveRequested bool

	// RemoteAddr is the network address of the client.
	RemoteAddr string
}

// Method returns the HTTP method token.
func (r *Request) Method() string {
	return MethodString(r.MethodID)
}

// Path returns the request target path as a string (1 allocation).
// Use PathBytes on hot paths.
func (r *Request) Path() string {
	return string(r.pathBytes)
}

// PathBytes returns the raw target path, zero-copy.
// Valid only during the request lifetime.
func (r *Request) PathBytes() []byte {
	return r.pathBytes
}

// Query returns the query string without the '?'.
func (r *Request) Query() string {
	return string(r.queryBytes)
}

// QueryBytes returns the raw query string, zero-copy.
func (r *Request) QueryBytes() []byte {
	return r.queryBytes
}

// IsGET reports whether the method is GET.
func (r *Request) IsGET() bool { return r.MethodID == MethodGET }

// IsHEAD reports whether the method is HEAD.
func (r *Request) IsHEAD() bool { return r.MethodID == MethodHEAD }

// GetHeader retrieves a header value (case-insensitive, last wins).
func (r *Request) GetHeader(name []byte) []byte {
	return r.Header.Get(name)
}

// GetHeaderString retrieves a header value as a string.
func (r *Request) GetHeaderString(name string) string {
	return r.Header.GetString([]byte(name))
}

// WantsKeepAlive applies the persistence rules: HTTP/1.1 persists
// unless the client sent Connection: close; HTTP/1.0 closes unless the
// client sent Connection: keep-alive.
func (r *Request) WantsKeepAlive() bool {
	if r.closeRequested {
		return false
	}
	if r.ProtoMajor == 1 && r.ProtoMinor == 0 {
		return r.keepAliveRequested
	}
	return true
}

// Reset clears the request for pooled reuse.
func (r *Request) Reset() {
	r.MethodID = 0
	r.methodBytes = nil
	r.pathBytes = nil
	r.queryBytes = nil
	r.Header.Reset()
	r.Body = nil
	r.ContentLength = 0
	r.Proto = ""
	r.ProtoMajor = 0
	r.ProtoMinor = 0
	r.closeRequested = false
	r.keepAliveRequested = false
	r.RemoteAddr = ""
}
