// Package http11 implements the HTTP/1.1 wire protocol over raw TCP
// connections: an incremental byte-stream buffer, a resumable request
// parser, a response serializer, and the per-connection state machine
// that ties them together with keep-alive and pipelining support.
package http11

// HTTP Method IDs for O(1) switching
// These numeric IDs enable fast method identification without string comparisons
const (
	MethodUnknown uint8 = 0
	MethodGET     uint8 = 1
	MethodPOST    uint8 = 2
	MethodPUT     uint8 = 3
	MethodDELETE  uint8 = 4
	MethodPATCH   uint8 = 5
	MethodHEAD    uint8 = 6
	MethodOPTIONS uint8 = 7
	MethodCONNECT uint8 = 8
	MethodTRACE   uint8 = 9
)

// HTTP Methods - Byte slices for parsing (zero allocations)
var (
	methodGETBytes     = []byte("GET")
	methodPOSTBytes    = []byte("POST")
	methodPUTBytes     = []byte("PUT")
	methodDELETEBytes  = []byte("DELETE")
	methodPATCHBytes   = []byte("PATCH")
	methodHEADBytes    = []byte("HEAD")
	methodOPTIONSBytes = []byte("OPTIONS")
	methodCONNECTBytes = []byte("CONNECT")
	methodTRACEBytes   = []byte("TRACE")
)

// HTTP Methods - Strings for comparison (zero allocations)
const (
	methodGETString     = "GET"
	methodPOSTString    = "POST"
	methodPUTString     = "PUT"
	methodDELETEString  = "DELETE"
	methodPATCHString   = "PATCH"
	methodHEADString    = "HEAD"
	methodOPTIONSString = "OPTIONS"
	methodCONNECTString = "CONNECT"
	methodTRACEString   = "TRACE"
)

// HTTP Status Lines - Pre-compiled with CRLF for zero-allocation writes
// Covers every status this server emits plus the common remainder
var (
	// 2xx Success
	status200Bytes = []byte("HTTP/1.1 200 OK\r\n")
	status204Bytes = []byte("HTTP/1.1 204 No Content\r\n")
	status206Bytes = []byte("HTTP/1.1 206 Partial Content\r\n")

	// 3xx Redirection
	status301Bytes = []byte("HTTP/1.1 301 Moved Permanently\r\n")
	status302Bytes = []byte("HTTP/1.1 302 Found\r\n")
	status304Bytes = []byte("HTTP/1.1 304 Not Modified\r\n")

	// 4xx Client Error
	status400Bytes = []byte("HTTP/1.1 400 Bad Request\r\n")
	status403Bytes = []byte("HTTP/1.1 403 Forbidden\r\n")
	status404Bytes = []byte("HTTP/1.1 404 Not Found\r\n")
	status405Bytes = []byte("HTTP/1.1 405 Method Not Allowed\r\n")
	status408Bytes = []byte("HTTP/1.1 408 Request Timeout\r\n")
	status413Bytes = []byte("HTTP/1.1 413 Payload Too Large\r\n")
	status414Bytes = []byte("HTTP/1.1 414 URI Too Long\r\n")
	status431Bytes = []byte("HTTP/1.1 431 Request Header Fields Too Large\r\n")

	// 5xx Server Error
	status500Bytes = []byte("HTTP/1.1 500 Internal Server Error\r\n")
	status501Bytes = []byte("HTTP/1.1 501 Not Implemented\r\n")
	status503Bytes = []byte("HTTP/1.1 503 Service Unavailable\r\n")
	status505Bytes = []byte("HTTP/1.1 505 HTTP Version Not Supported\r\n")
)

// Common HTTP Headers - Byte slices for zero-allocation parsing
var (
	headerContentLength    = []byte("Content-Length")
	headerContentType      = []byte("Content-Type")
	headerContentEncoding  = []byte("Content-Encoding")
	headerConnection       = []byte("Connection")
	headerKeepAlive        = []byte("keep-alive")
	headerClose            = []byte("close")
	headerTransferEncoding = []byte("Transfer-Encoding")
	headerHost             = []byte("Host")
	headerAcceptEncoding   = []byte("Accept-Encoding")
	headerServer           = []byte("Server")
	headerDate             = []byte("Date")
)

// Common Content-Type values - Pre-compiled for zero allocations
var (
	contentTypeHTML        = []byte("text/html; charset=utf-8")
	contentTypePlain       = []byte("text/plain; charset=utf-8")
	contentTypeJSON        = []byte("application/json; charset=utf-8")
	contentTypeOctetStream = []byte("application/octet-stream")
)

// Protocol constants
var (
	http11Bytes     = []byte("HTTP/1.1")
	http10Bytes     = []byte("HTTP/1.0")
	crlfBytes       = []byte("\r\n")
	colonSpace      = []byte(": ")
	serverNameBytes = []byte("groundwave")
)

const (
	http11Proto = "HTTP/1.1"
	http10Proto = "HTTP/1.0"
)

// Header storage sizing
const (
	// MaxInlineHeaders is the number of headers stored inline without heap allocation
	MaxInlineHeaders = 32

	// MaxHeaderName is the maximum length of a header name
	MaxHeaderName = 64

	// MaxInlineHeaderValue is the maximum value length for inline storage.
	// Longer values spill to the ordered overflow slice (heap, rare case).
	MaxInlineHeaderValue = 128
)

// DateFormat is the RFC 7231 HTTP-date layout used for the Date header.
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
