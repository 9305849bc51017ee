// Package server owns the listener: it accepts TCP connections,
// applies socket tuning, and hands each connection to its own
// goroutine running the http11 connection state machine with the
// static file handler behind it.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/groundwave/pkg/groundwave/http11"
	"github.com/yourusername/groundwave/pkg/groundwave/socket"
	"github.com/yourusername/groundwave/pkg/groundwave/static"
)

// Config holds everything the server needs at construction time.
type Config struct {
	// Addr is the TCP listen address, e.g. ":8080".
	Addr string

	// WebRoot is the directory static files are served from.
	WebRoot string

	// IndexFile is served for directory targets. Defaults to
	// "index.html".
	IndexFile string

	// ReadTimeout bounds reads while a request is in flight.
	ReadTimeout time.Duration

	// WriteTimeout bounds each response write.
	WriteTimeout time.Duration

	// IdleTimeout bounds the wait for the next request on a
	// persistent connection.
	IdleTimeout time.Duration

	// Limits bounds request parsing. Zero fields take defaults.
	Limits http11.Limits

	// ReadBufferSize sizes each connection's read and write buffers.
	ReadBufferSize int

	// MaxKeepAliveRequests caps requests per connection; 0 means
	// unlimited.
	MaxKeepAliveRequests int

	// MaxConcurrentConnections caps simultaneously served
	// connections; 0 means unlimited. The accept loop blocks when
	// the cap is reached rather than accepting and queueing.
	MaxConcurrentConnections int

	// DisableKeepalive forces Connection: close on every response.
	DisableKeepalive bool

	// EnableGzip turns on gzip encoding in the static handler.
	EnableGzip bool

	// MetricsAddr, when set, exposes Prometheus metrics on a
	// separate listener at /metrics.
	MetricsAddr string

	// SocketTuning configures per-connection TCP options. Nil takes
	// the defaults.
	SocketTuning *socket.Config

	// Logger receives structured server logs. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns a production-leaning configuration serving the
// current directory on :8080.
func DefaultConfig() Config {
	return Config{
		Addr:                 ":8080",
		WebRoot:              ".",
		IndexFile:            "index.html",
		ReadTimeout:          30 * time.Second,
		WriteTimeout:         30 * time.Second,
		IdleTimeout:          60 * time.Second,
		Limits:               http11.DefaultLimits(),
		ReadBufferSize:       http11.DefaultBufferSize,
		MaxKeepAliveRequests: 0,
		SocketTuning:         socket.DefaultConfig(),
	}
}

// Stats counts server activity with atomics so readers never block the
// accept loop or a connection.
type Stats struct {
	TotalConnections  atomic.Int64
	ActiveConnections atomic.Int64
	TotalRequests     atomic.Int64
	ConnectionErrors  atomic.Int64
	AcceptErrors      atomic.Int64
}

// Server accepts connections and serves static files over HTTP/1.1.
type Server struct {
	cfg     Config
	log     *zap.Logger
	handler *static.Handler

	listener   net.Listener
	metricsSrv *http.Server
	connSem    chan struct{}

	mu    sync.Mutex
	conns map[net.Conn]struct{}

	wg       sync.WaitGroup
	done     chan struct{}
	shutdown atomic.Bool
	stats    Stats
}

// New validates cfg and builds a Server. The web root is resolved and
// checked here so a bad path fails at startup, not on the first
// request.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("server: listen address required")
	}
	handler, err := static.NewHandler(static.Config{
		Root:       cfg.WebRoot,
		Index:      cfg.IndexFile,
		EnableGzip: cfg.EnableGzip,
	})
	if err != nil {
		return nil, fmt.Errorf("server: web root: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		log:     cfg.Logger,
		handler: handler,
		conns:   make(map[net.Conn]struct{}),
		done:    make(chan struct{}),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if cfg.MaxConcurrentConnections > 0 {
		s.connSem = make(chan struct{}, cfg.MaxConcurrentConnections)
	}
	return s, nil
}

// Stats returns the server's counters.
func (s *Server) Stats() *Stats { return &s.stats }

// Addr returns the bound listener address, or empty before Serve.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe binds the configured address and serves until
// Shutdown or a fatal listener error.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln. Transient accept failures back
// off and retry; the loop exits only on shutdown or a permanent
// listener error.
func (s *Server) Serve(ln net.Listener) error {
	s.listener = ln
	defer ln.Close()

	if err := socket.ApplyListener(ln, s.cfg.SocketTuning); err != nil {
		s.log.Debug("listener tuning failed", zap.Error(err))
	}

	if s.cfg.MetricsAddr != "" {
		s.metricsSrv = serveMetrics(s.cfg.MetricsAddr)
	}

	s.log.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("web_root", s.handler.Root()))

	var backoff time.Duration
	for {
		if s.shutdown.Load() {
			return nil
		}
		if s.connSem != nil {
			select {
			case s.connSem <- struct{}{}:
			case <-s.done:
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.connSem != nil {
				<-s.connSem
			}
			if s.shutdown.Load() {
				return nil
			}
			s.stats.AcceptErrors.Add(1)
			metricAcceptErrorsTotal.Inc()
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if backoff == 0 {
					backoff = 5 * time.Millisecond
				} else if backoff *= 2; backoff > time.Second {
					backoff = time.Second
				}
				s.log.Warn("accept failed, retrying",
					zap.Error(err), zap.Duration("backoff", backoff))
				time.Sleep(backoff)
				continue
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		backoff = 0

		s.stats.TotalConnections.Add(1)
		s.stats.ActiveConnections.Add(1)
		metricConnectionsTotal.Inc()
		metricConnectionsActive.Inc()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(nc net.Conn) {
	defer s.wg.Done()
	defer nc.Close()
	defer func() {
		s.stats.ActiveConnections.Add(-1)
		metricConnectionsActive.Dec()
		if s.connSem != nil {
			<-s.connSem
		}
	}()

	s.trackConn(nc)
	defer s.untrackConn(nc)

	if err := socket.Apply(nc, s.cfg.SocketTuning); err != nil {
		// Tuning is advisory; the connection still works untuned.
		s.log.Debug("socket tuning failed",
			zap.String("remote", nc.RemoteAddr().String()), zap.Error(err))
	}

	cfg := http11.ConnConfig{
		ReadTimeout:      s.cfg.ReadTimeout,
		WriteTimeout:     s.cfg.WriteTimeout,
		IdleTimeout:      s.cfg.IdleTimeout,
		MaxRequests:      s.cfg.MaxKeepAliveRequests,
		ReadBufferSize:   s.cfg.ReadBufferSize,
		DisableKeepAlive: s.cfg.DisableKeepalive,
		Limits:           s.cfg.Limits,
	}

	conn := http11.NewConn(nc, cfg, s.serveRequest)
	defer conn.Close()

	if err := conn.Serve(); err != nil {
		s.stats.ConnectionErrors.Add(1)
		metricConnectionErrorsTotal.Inc()
		s.log.Debug("connection terminated",
			zap.String("remote", nc.RemoteAddr().String()),
			zap.Int("requests", conn.RequestCount()),
			zap.Error(err))
	}
}

// serveRequest is the single handler shared by every connection.
func (s *Server) serveRequest(req *http11.Request, rw *http11.ResponseWriter) error {
	s.stats.TotalRequests.Add(1)
	err := s.handler.Serve(req, rw)
	metricRequestsTotal.WithLabelValues(statusClass(rw.Status())).Inc()
	metricBytesWrittenTotal.Add(float64(rw.BytesWritten()))
	return err
}

func (s *Server) trackConn(c net.Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConn(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) closeAllConns() {
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
}

// Shutdown stops accepting, then waits for in-flight connections to
// drain. When ctx expires first, remaining connections are closed
// forcibly and ctx's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopAccepting()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s.log.Info("shutdown complete")
		return nil
	case <-ctx.Done():
		s.closeAllConns()
		<-drained
		s.log.Warn("shutdown forced", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// Close stops the server immediately, closing every open connection.
func (s *Server) Close() error {
	s.stopAccepting()
	s.closeAllConns()
	s.wg.Wait()
	return nil
}

func (s *Server) stopAccepting() {
	if s.shutdown.CompareAndSwap(false, true) {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.metricsSrv != nil {
			s.metricsSrv.Close()
		}
	}
}
