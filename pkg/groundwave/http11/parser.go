package http11

import "bytes"

// Limits bounds how much of a single request the parser will buffer.
// Zero values fall back to the defaults. Hard ceilings, not hints: a
// client that exceeds one gets a terminal error, never unbounded growth.
type Limits struct {
	// MaxRequestLine bounds the request line in bytes (431 on excess).
	MaxRequestLine int

	// MaxHeaderLine bounds a single header line in bytes (431).
	MaxHeaderLine int

	// MaxHeaderCount bounds the number of headers (431).
	MaxHeaderCount int

	// MaxHeaderBytes bounds the total header block in bytes (431).
	MaxHeaderBytes int

	// MaxBodyBytes bounds a Content-Length body (413).
	MaxBodyBytes int64
}

// DefaultLimits returns the RFC 7230 recommended bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxRequestLine: 8192,
		MaxHeaderLine:  8192,
		MaxHeaderCount: 100,
		MaxHeaderBytes: 16384,
		MaxBodyBytes:   1 << 20,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxRequestLine <= 0 {
		l.MaxRequestLine = d.MaxRequestLine
	}
	if l.MaxHeaderLine <= 0 {
		l.MaxHeaderLine = d.MaxHeaderLine
	}
	if l.MaxHeaderCount <= 0 {
		l.MaxHeaderCount = d.MaxHeaderCount
	}
	if l.MaxHeaderBytes <= 0 {
		l.MaxHeaderBytes = d.MaxHeaderBytes
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = d.MaxBodyBytes
	}
	return l
}

// parsePhase tracks where the parser stopped on the last ErrIncomplete.
type parsePhase uint8

const (
	phaseRequestLine parsePhase = iota
	phaseHeaders
	phaseBody
)

// Parser converts buffered connection bytes into Requests, one call at
// a time. It is an explicit resumable state machine: when the
// StreamBuffer holds only part of a request, Next returns ErrIncomplete
// and retains everything confirmed so far — the request line is never
// re-split, consumed header lines are never re-scanned. The caller
// reads more bytes into the buffer and calls Next again.
//
// Each Parser belongs to exactly one connection and is not safe for
// concurrent use.
type Parser struct {
	limits Limits

	phase parsePhase
	req   *Request // in-progress request, from the pool

	headerCount int
	headerBytes int
}

// NewParser creates a Parser with the given limits.
func NewParser(limits Limits) *Parser {
	return &Parser{limits: limits.withDefaults()}
}

// Started reports whether the parser is mid-request. The connection
// uses this to pick the read timeout: idle wait between requests versus
// bounded read of a request already underway.
func (p *Parser) Started() bool {
	return p.phase != phaseRequestLine || p.req != nil
}

// Reset discards any partial request, returning it to the pool.
func (p *Parser) Reset() {
	if p.req != nil {
		PutRequest(p.req)
		p.req = nil
	}
	p.phase = phaseRequestLine
	p.headerCount = 0
	p.headerBytes = 0
}

// Next consumes bytes from sb and returns the next complete request.
//
// On ErrIncomplete the caller should Fill the buffer and retry. Any
// other error is terminal for the request: the connection should write
// the mapped error response (StatusForError) and close.
//
// The returned Request comes from a pool; the caller must release it
// with PutRequest once the response is written.
func (p *Parser) Next(sb *StreamBuffer) (*Request, error) {
	if p.phase == phaseRequestLine {
		if err := p.parseRequestLine(sb); err != nil {
			return nil, p.fail(err)
		}
	}

	if p.phase == phaseHeaders {
		if err := p.parseHeaders(sb); err != nil {
			return nil, p.fail(err)
		}
	}

	if p.phase == phaseBody {
		body, ok := sb.TakeExact(int(p.req.ContentLength))
		if !ok {
			return nil, ErrIncomplete
		}
		p.req.Body = body
	}

	req := p.req
	p.req = nil
	p.phase = phaseRequestLine
	p.headerCount = 0
	p.headerBytes = 0
	return req, nil
}

// fail resets parser state on terminal errors; ErrIncomplete passes
// through untouched so the partial request survives for the next call.
func (p *Parser) fail(err error) error {
	if err != ErrIncomplete {
		p.Reset()
	}
	return err
}

// parseRequestLine consumes "METHOD SP target SP HTTP/x.y" exactly.
func (p *Parser) parseRequestLine(sb *StreamBuffer) error {
	line, ok, tooLong := sb.TakeLine(p.limits.MaxRequestLine)
	if tooLong {
		return ErrRequestLineTooLarge
	}
	if !ok {
		return ErrIncomplete
	}

	if p.req == nil {
		p.req = GetRequest()
	}
	req := p.req

	// Exactly three space-separated tokens; anything else is malformed.
	if bytes.Count(line, []byte{' '}) != 2 {
		return ErrInvalidRequestLine
	}
	sp1 := bytes.IndexByte(line, ' ')
	sp2 := bytes.IndexByte(line[sp1+1:], ' ')
	methodBytes := line[:sp1]
	target := line[sp1+1 : sp1+1+sp2]
	version := line[sp1+sp2+2:]

	req.MethodID = ParseMethodID(methodBytes)
	if !IsServableMethod(req.MethodID) {
		// Unknown tokens and recognized-but-unimplemented methods both
		// answer 501.
		return ErrUnsupportedMethod
	}
	req.methodBytes = methodBytes

	if len(target) == 0 {
		return ErrInvalidPath
	}
	if target[0] != '/' && target[0] != '*' {
		return ErrInvalidPath
	}
	if q := bytes.IndexByte(target, '?'); q != -1 {
		req.pathBytes = target[:q]
		req.queryBytes = target[q+1:]
	} else {
		req.pathBytes = target
		req.queryBytes = nil
	}

	switch {
	case bytes.Equal(version, http11Bytes):
		req.Proto = http11Proto
		req.ProtoMajor, req.ProtoMinor = 1, 1
	case bytes.Equal(version, http10Bytes):
		req.Proto = http10Proto
		req.ProtoMajor, req.ProtoMinor = 1, 0
	default:
		return ErrUnsupportedVersion
	}

	p.phase = phaseHeaders
	return nil
}

// parseHeaders consumes "Name: Value" lines until the blank line.
// Each complete line is committed to the request as soon as it is
// extracted, so an ErrIncomplete return mid-block resumes at the first
// unread line.
func (p *Parser) parseHeaders(sb *StreamBuffer) error {
	req := p.req
	for {
		line, ok, tooLong := sb.TakeLine(p.limits.MaxHeaderLine)
		if tooLong {
			return ErrHeaderTooLarge
		}
		if !ok {
			return ErrIncomplete
		}

		// Blank line terminates the header block.
		if len(line) == 0 {
			return p.finishHeaders()
		}

		p.headerCount++
		p.headerBytes += len(line) + 2
		if p.headerCount > p.limits.MaxHeaderCount {
			return ErrTooManyHeaders
		}
		if p.headerBytes > p.limits.MaxHeaderBytes {
			return ErrHeadersTooLarge
		}

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return ErrInvalidHeader
		}
		name := line[:colon]
		value := line[colon+1:]

		// RFC 7230 §3.2.4: no whitespace between field name and colon.
		if name[len(name)-1] == ' ' || name[len(name)-1] == '\t' {
			return ErrInvalidHeader
		}
		if bytes.IndexByte(name, ' ') != -1 || bytes.IndexByte(name, '\t') != -1 {
			return ErrInvalidHeader
		}

		value = trimOWS(value)

		if err := req.Header.Add(name, value); err != nil {
			return err
		}
		if err := p.noteSpecialHeader(name, value); err != nil {
			return err
		}
	}
}

// noteSpecialHeader captures headers the connection machinery consumes.
// Duplicates follow last-wins singleton semantics.
func (p *Parser) noteSpecialHeader(name, value []byte) error {
	switch {
	case bytesEqualFold(name, headerContentLength):
		n, err := parseContentLength(value)
		if err != nil {
			return err
		}
		p.req.ContentLength = n

	case bytesEqualFold(name, headerTransferEncoding):
		// No transfer codings for static serving; chunked or otherwise,
		// the request is malformed.
		return ErrChunkedNotSupported

	case bytesEqualFold(name, headerConnection):
		p.req.closeRequested = bytesEqualFold(value, headerClose)
		p.req.keepAliveRequested = bytesEqualFold(value, headerKeepAlive)
	}
	return nil
}

// finishHeaders decides whether a body phase follows.
func (p *Parser) finishHeaders() error {
	req := p.req
	if req.ContentLength == 0 {
		p.phase = phaseRequestLine
		return nil
	}
	if req.ContentLength > p.limits.MaxBodyBytes {
		return ErrBodyTooLarge
	}
	p.phase = phaseBody
	return nil
}

// parseContentLength parses a plain decimal byte count.
func parseContentLength(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrInvalidContentLength
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, ErrInvalidContentLength
		}
		n = n*10 + int64(c-'0')
		if n < 0 { // overflow
			return 0, ErrInvalidContentLength
		}
	}
	return n, nil
}

// trimOWS trims optional whitespace (space, tab) per RFC 7230.
func trimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
