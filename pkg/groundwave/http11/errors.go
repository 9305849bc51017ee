package http11

import "errors"

// ErrIncomplete signals that the buffered bytes do not yet contain a
// complete token (request line, header line, or body). It is not a
// failure: the caller should read more bytes from the connection and
// resume parsing. The parser never loses confirmed state across an
// ErrIncomplete return.
var ErrIncomplete = errors.New("http11: incomplete request, need more data")

// Malformed-input errors (terminal, map to 400)
var (
	// ErrInvalidRequestLine indicates the request line is not exactly
	// METHOD SP TARGET SP VERSION
	ErrInvalidRequestLine = errors.New("http11: invalid request line")

	// ErrInvalidPath indicates the request target is empty or does not
	// begin with '/' or '*'
	ErrInvalidPath = errors.New("http11: invalid request target")

	// ErrInvalidHeader indicates a malformed header line
	// Headers must be in format: Name: Value\r\n
	ErrInvalidHeader = errors.New("http11: invalid HTTP header")

	// ErrInvalidContentLength indicates Content-Length is not a plain
	// decimal byte count
	ErrInvalidContentLength = errors.New("http11: invalid Content-Length")

	// ErrChunkedNotSupported indicates the request declared a transfer
	// coding. Static serving has no use for chunked request bodies, so
	// any Transfer-Encoding is treated as malformed input.
	ErrChunkedNotSupported = errors.New("http11: Transfer-Encoding not supported")
)

// Unsupported-feature errors (terminal)
var (
	// ErrUnsupportedMethod indicates a method this server does not
	// implement, including unknown tokens (maps to 501)
	ErrUnsupportedMethod = errors.New("http11: unsupported HTTP method")

	// ErrUnsupportedVersion indicates a version other than HTTP/1.0 or
	// HTTP/1.1 (maps to 505)
	ErrUnsupportedVersion = errors.New("http11: unsupported HTTP version")
)

// Size-limit errors (terminal, map to 431 except the body limit)
var (
	// ErrRequestLineTooLarge indicates the request line exceeds the
	// configured limit before a CRLF was seen
	ErrRequestLineTooLarge = errors.New("http11: request line too large")

	// ErrHeaderTooLarge indicates a single header line exceeds the
	// configured limit
	ErrHeaderTooLarge = errors.New("http11: header line too large")

	// ErrHeadersTooLarge indicates the header block exceeds the
	// configured total size
	ErrHeadersTooLarge = errors.New("http11: header block too large")

	// ErrTooManyHeaders indicates the header block exceeds the
	// configured header count
	ErrTooManyHeaders = errors.New("http11: too many headers")

	// ErrBodyTooLarge indicates Content-Length exceeds the configured
	// body limit (maps to 413)
	ErrBodyTooLarge = errors.New("http11: request body too large")
)

// Connection errors
var (
	// ErrUnexpectedEOF indicates the client disconnected in the middle
	// of a request
	ErrUnexpectedEOF = errors.New("http11: unexpected EOF")

	// ErrContentLengthMismatch indicates the response body byte count
	// did not match the declared Content-Length. This is a bug in the
	// responder, never a client-facing error.
	ErrContentLengthMismatch = errors.New("http11: response body does not match Content-Length")
)

// StatusForError maps a terminal parse error to the HTTP status code of
// the best-effort error response. Unrecognized errors map to 400 since
// every terminal parser failure is by definition a client protocol error.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedMethod):
		return 501
	case errors.Is(err, ErrUnsupportedVersion):
		return 505
	case errors.Is(err, ErrRequestLineTooLarge),
		errors.Is(err, ErrHeaderTooLarge),
		errors.Is(err, ErrHeadersTooLarge),
		errors.Is(err, ErrTooManyHeaders):
		return 431
	case errors.Is(err, ErrBodyTooLarge):
		return 413
	default:
		return 400
	}
}
