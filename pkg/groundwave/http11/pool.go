package http11

import (
	"bufio"
	"io"
	"sync"
)

// DefaultBufferSize is the default size for stream and write buffers.
const DefaultBufferSize = 4096

// Object pools for the per-request hot path. Requests, response
// writers, stream buffers and bufio writers are all recycled so a
// keep-alive connection serves its second and later requests without
// fresh allocations.
var (
	requestPool = sync.Pool{
		New: func() interface{} {
			return &Request{}
		},
	}

	responseWriterPool = sync.Pool{
		New: func() interface{} {
			return &ResponseWriter{status: 200, contentLength: -1}
		},
	}

	streamBufferPool = sync.Pool{
		New: func() interface{} {
			return NewStreamBuffer(DefaultBufferSize)
		},
	}

	bufioWriterPool = sync.Pool{
		New: func() interface{} {
			return bufio.NewWriterSize(io.Discard, DefaultBufferSize)
		},
	}
)

// GetRequest retrieves a clean Request from the pool.
func GetRequest() *Request {
	return requestPool.Get().(*Request)
}

// PutRequest resets and recycles a Request. The caller must not touch
// the request (or any zero-copy slice obtained from it) afterwards.
func PutRequest(req *Request) {
	if req == nil {
		return
	}
	req.Reset()
	requestPool.Put(req)
}

// GetResponseWriter retrieves a ResponseWriter bound to w.
func GetResponseWriter(w io.Writer) *ResponseWriter {
	rw := responseWriterPool.Get().(*ResponseWriter)
	rw.Reset(w)
	return rw
}

// PutResponseWriter recycles a ResponseWriter.
func PutResponseWriter(rw *ResponseWriter) {
	if rw == nil {
		return
	}
	rw.Reset(io.Discard)
	responseWriterPool.Put(rw)
}

// GetStreamBuffer retrieves an empty StreamBuffer.
func GetStreamBuffer() *StreamBuffer {
	return streamBufferPool.Get().(*StreamBuffer)
}

// PutStreamBuffer recycles a StreamBuffer.
func PutStreamBuffer(sb *StreamBuffer) {
	if sb == nil {
		return
	}
	sb.Reset()
	streamBufferPool.Put(sb)
}

// GetBufioWriter retrieves a write buffer re-targeted at w.
func GetBufioWriter(w io.Writer) *bufio.Writer {
	bw := bufioWriterPool.Get().(*bufio.Writer)
	bw.Reset(w)
	return bw
}

// PutBufioWriter recycles a bufio.Writer.
func PutBufioWriter(bw *bufio.Writer) {
	if bw == nil {
		return
	}
	bw.Reset(io.Discard)
	bufioWriterPool.Put(bw)
}
