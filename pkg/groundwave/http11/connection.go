package http11

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// ConnState tracks where a connection is in its request cycle.
type ConnState int

const (
	// StateReadingRequest: pulling bytes and driving the parser
	StateReadingRequest ConnState = iota

	// StateDispatching: invoking the handler for a parsed request
	StateDispatching

	// StateWritingResponse: serializing the response onto the wire
	StateWritingResponse

	// StateIdle: between requests on a persistent connection
	StateIdle

	// StateClosing: terminal; socket and pooled resources released
	StateClosing
)

// String returns the state name.
func (s ConnState) String() string {
	switch s {
	case StateReadingRequest:
		return "reading"
	case StateDispatching:
		return "dispatching"
	case StateWritingResponse:
		return "writing"
	case StateIdle:
		return "idle"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Handler processes one parsed request. It must write a complete
// response through rw (the connection calls Finish afterwards).
// A returned error closes the connection after the response.
//
// The static file responder is the one handler this server ships; the
// type exists so a routing layer can be slotted in without touching the
// parsing or response machinery.
type Handler func(req *Request, rw *ResponseWriter) error

// ConnConfig bounds one connection's behavior.
type ConnConfig struct {
	// ReadTimeout bounds reads while a request is in flight.
	// Exceeding it closes the connection silently.
	ReadTimeout time.Duration

	// WriteTimeout bounds each response write.
	WriteTimeout time.Duration

	// IdleTimeout bounds the wait for the next request on a persistent
	// connection.
	IdleTimeout time.Duration

	// MaxRequests caps requests per connection; 0 means unlimited.
	MaxRequests int

	// ReadBufferSize sizes the stream buffer and write buffer.
	ReadBufferSize int

	// DisableKeepAlive forces Connection: close on every response.
	DisableKeepAlive bool

	// Limits bounds request parsing.
	Limits Limits
}

// DefaultConnConfig returns the default connection configuration.
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxRequests:    0,
		ReadBufferSize: DefaultBufferSize,
		Limits:         DefaultLimits(),
	}
}

// Conn owns one accepted TCP connection end to end: it reads bytes,
// drives the resumable parser, dispatches parsed requests to the
// handler, writes responses, and applies the persistence rules until
// the connection closes. Each Conn runs on its own goroutine and shares
// no mutable state with other connections.
type Conn struct {
	conn    net.Conn
	sb      *StreamBuffer
	parser  *Parser
	writer  *bufio.Writer
	handler Handler
	cfg     ConnConfig

	state    atomic.Int32
	requests atomic.Int32
	closed   atomic.Bool
}

// NewConn wraps an accepted net.Conn.
func NewConn(nc net.Conn, cfg ConnConfig, handler Handler) *Conn {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultBufferSize
	}
	c := &Conn{
		conn:    nc,
		sb:      GetStreamBuffer(),
		parser:  NewParser(cfg.Limits),
		writer:  GetBufioWriter(nc),
		handler: handler,
		cfg:     cfg,
	}
	c.state.Store(int32(StateReadingRequest))
	return c
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Conn) setState(s ConnState) {
	c.state.Store(int32(s))
}

// RequestCount returns the number of requests served on this connection.
func (c *Conn) RequestCount() int {
	return int(c.requests.Load())
}

// Serve runs the connection state machine until the connection closes.
//
// Returns nil on a clean close (client EOF between requests, timeout,
// negotiated close). Terminal parse errors are answered with a
// best-effort error response and returned so the owner can count them;
// socket-level errors are returned as-is and never written about.
func (c *Conn) Serve() error {
	defer c.cleanup()

	for {
		c.setState(StateReadingRequest)
		req, err := c.readRequest()
		if err != nil {
			switch {
			case err == io.EOF:
				// Clean close between requests.
				return nil
			case isTimeout(err):
				// Slow or silent client; close without writing.
				return nil
			case errors.Is(err, ErrUnexpectedEOF):
				// Client vanished mid-request; nothing to say to it.
				return nil
			case isIOError(err):
				return err
			default:
				// Terminal parse error: best-effort error response,
				// then close. Malformed input forfeits persistence.
				c.setState(StateWritingResponse)
				c.writeErrorResponse(StatusForError(err))
				return err
			}
		}

		c.setState(StateDispatching)
		n := c.requests.Add(1)
		lastRequest := c.cfg.MaxRequests > 0 && int(n) >= c.cfg.MaxRequests

		keep := req.WantsKeepAlive() && !lastRequest && !c.cfg.DisableKeepAlive

		rw := GetResponseWriter(c.writer)
		rw.conn = c.conn
		rw.SetKeepAlive(keep)
		rw.SetHead(req.IsHEAD())
		req.RemoteAddr = c.conn.RemoteAddr().String()

		// Body bytes reach the socket during dispatch: the buffered
		// writer flushes once a large body fills it, and SendFile writes
		// directly. The write deadline must already be armed.
		if err := c.armWriteDeadline(); err != nil {
			PutResponseWriter(rw)
			PutRequest(req)
			return err
		}

		handlerErr := c.handler(req, rw)

		c.setState(StateWritingResponse)
		writeErr := c.finishResponse(rw)

		PutResponseWriter(rw)
		PutRequest(req)
		// Previous request released; safe to reclaim consumed bytes.
		// Pipelined data, if any, slides to the front for the next loop.
		c.sb.Compact()

		if writeErr != nil {
			return writeErr
		}
		if handlerErr != nil {
			return handlerErr
		}
		if !keep {
			return nil
		}

		c.setState(StateIdle)
	}
}

// readRequest drives the parser, filling the stream buffer as needed.
// Buffered bytes are always tried first, so a pipelined request that
// arrived with the previous one is parsed without touching the socket.
func (c *Conn) readRequest() (*Request, error) {
	for {
		req, err := c.parser.Next(c.sb)
		if err == nil {
			return req, nil
		}
		if err != ErrIncomplete {
			return nil, err
		}

		timeout := c.cfg.IdleTimeout
		if c.parser.Started() || c.sb.Buffered() > 0 {
			timeout = c.cfg.ReadTimeout
		}
		if timeout > 0 {
			if derr := c.conn.SetReadDeadline(time.Now().Add(timeout)); derr != nil {
				return nil, derr
			}
		}

		_, ferr := c.sb.Fill(c.conn)
		if ferr != nil {
			if ferr == io.EOF {
				if c.sb.Buffered() == 0 && !c.parser.Started() {
					return nil, io.EOF
				}
				return nil, ErrUnexpectedEOF
			}
			return nil, ferr
		}
	}
}

// armWriteDeadline starts the write budget for the response about to
// be written. A client that stops reading cannot hold the goroutine
// past WriteTimeout.
func (c *Conn) armWriteDeadline() error {
	if c.cfg.WriteTimeout <= 0 {
		return nil
	}
	return c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
}

// finishResponse completes the invariant check and flushes to the wire.
// The deadline is refreshed so the final flush is not charged for time
// spent in the handler.
func (c *Conn) finishResponse(rw *ResponseWriter) error {
	if err := c.armWriteDeadline(); err != nil {
		return err
	}
	if err := rw.Finish(); err != nil {
		// ErrContentLengthMismatch lands here: a responder bug. The
		// headers are already out, so the only safe move is to close.
		return err
	}
	return c.writer.Flush()
}

// writeErrorResponse sends the best-effort response for a terminal
// parse error. Always Connection: close.
func (c *Conn) writeErrorResponse(status int) {
	rw := GetResponseWriter(c.writer)
	rw.SetKeepAlive(false)
	c.armWriteDeadline()
	rw.WriteError(status)
	rw.Finish()
	c.writer.Flush()
	PutResponseWriter(rw)
}

// Close shuts the socket. Safe to call concurrently with Serve: the
// blocked read fails and the state machine unwinds.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.setState(StateClosing)
	return c.conn.Close()
}

// cleanup releases pooled resources.
func (c *Conn) cleanup() {
	c.setState(StateClosing)
	c.parser.Reset()
	if c.sb != nil {
		PutStreamBuffer(c.sb)
		c.sb = nil
	}
	if c.writer != nil {
		PutBufioWriter(c.writer)
		c.writer = nil
	}
}

// isTimeout reports whether err is a read/write deadline expiry.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isIOError distinguishes socket failures from parse failures: the
// former must never be answered with a write attempt.
func isIOError(err error) bool {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}
