package http11

import (
	"bytes"
	"io"
)

// StreamBuffer accumulates raw bytes from a connection and hands them
// out as complete protocol tokens. Extraction only happens when the
// full token is buffered; partial tokens stay put until more bytes
// arrive. Unconsumed bytes always carry over to the next extraction,
// which is what makes pipelined requests work: two requests read in one
// TCP segment are consumed one at a time without losing the second.
//
// Returned slices reference the internal buffer. They stay valid until
// Compact or Reset is called; callers that keep data across a request
// boundary must copy it first.
type StreamBuffer struct {
	buf []byte
	off int // start of unconsumed bytes
	// scan marks how far TakeLine has already searched for CRLF, so
	// resumed scans never revisit confirmed byte ranges.
	scan int
}

// NewStreamBuffer creates a StreamBuffer with the given initial capacity.
func NewStreamBuffer(size int) *StreamBuffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &StreamBuffer{buf: make([]byte, 0, size)}
}

// Fill performs one read from r and appends the received bytes.
// A read that returns data alongside io.EOF reports the data first;
// the EOF surfaces on the next Fill call with an empty read.
func (b *StreamBuffer) Fill(r io.Reader) (int, error) {
	// Grow tail room without disturbing unconsumed bytes: returned
	// slices may still reference the current array, and append keeps
	// the old array alive if it has to reallocate.
	if cap(b.buf)-len(b.buf) < minReadChunk {
		grown := make([]byte, len(b.buf), cap(b.buf)*2+minReadChunk)
		copy(grown, b.buf)
		b.buf = grown
	}

	n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
	b.buf = b.buf[:len(b.buf)+n]
	if n > 0 {
		return n, nil
	}
	return 0, err
}

// minReadChunk is the minimum free space guaranteed before a Fill read.
const minReadChunk = 512

// TakeLine extracts the next CRLF-terminated line, without the CRLF.
// Returns ok=false when no complete line is buffered yet.
//
// limit bounds how many bytes may accumulate without a CRLF; once the
// unconsumed region exceeds it, TakeLine reports tooLong=true so the
// caller can fail the request instead of buffering a hostile client's
// endless line.
func (b *StreamBuffer) TakeLine(limit int) (line []byte, ok bool, tooLong bool) {
	if b.scan < b.off {
		b.scan = b.off
	}
	// Resume the CRLF search one byte early in case the previous chunk
	// ended exactly on the '\r'.
	start := b.scan
	if start > b.off {
		start--
	}
	idx := bytes.Index(b.buf[start:], crlfBytes)
	if idx == -1 {
		b.scan = len(b.buf)
		if limit > 0 && len(b.buf)-b.off > limit {
			return nil, false, true
		}
		return nil, false, false
	}

	end := start + idx
	if limit > 0 && end-b.off > limit {
		return nil, false, true
	}
	line = b.buf[b.off:end]
	b.off = end + 2
	b.scan = b.off
	return line, true, false
}

// TakeExact extracts exactly n bytes, or reports ok=false if fewer are
// buffered.
func (b *StreamBuffer) TakeExact(n int) ([]byte, bool) {
	if len(b.buf)-b.off < n {
		return nil, false
	}
	out := b.buf[b.off : b.off+n]
	b.off += n
	if b.scan < b.off {
		b.scan = b.off
	}
	return out, true
}

// Buffered reports how many unconsumed bytes are pending. A non-zero
// value after a response means the client pipelined another request.
func (b *StreamBuffer) Buffered() int {
	return len(b.buf) - b.off
}

// Compact discards consumed bytes and slides any pending pipelined data
// to the front of the buffer. Invalidates slices returned earlier; only
// call between requests, after the previous request is released.
func (b *StreamBuffer) Compact() {
	if b.off == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.off:])
	b.buf = b.buf[:n]
	b.scan -= b.off
	if b.scan < 0 {
		b.scan = 0
	}
	b.off = 0
}

// Reset drops all buffered bytes for pooled reuse.
func (b *StreamBuffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
	b.scan = 0
}
