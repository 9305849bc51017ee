// Command groundwave serves a directory of static files over HTTP/1.1
// on a raw TCP listener.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/groundwave/pkg/groundwave/http11"
	"github.com/yourusername/groundwave/pkg/groundwave/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := server.DefaultConfig()
	var (
		debug           bool
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "groundwave",
		Short:        "HTTP/1.1 static file server on raw TCP sockets",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(debug)
			if err != nil {
				return err
			}
			defer logger.Sync()
			cfg.Logger = logger

			return run(cmd.Context(), cfg, shutdownTimeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "TCP listen address")
	flags.StringVar(&cfg.WebRoot, "web-root", cfg.WebRoot, "directory to serve files from")
	flags.StringVar(&cfg.IndexFile, "index", cfg.IndexFile, "file served for directory requests")
	flags.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-request read timeout")
	flags.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "response write timeout")
	flags.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "keep-alive idle timeout")
	flags.IntVar(&cfg.MaxKeepAliveRequests, "max-requests", cfg.MaxKeepAliveRequests, "max requests per connection, 0 for unlimited")
	flags.IntVar(&cfg.MaxConcurrentConnections, "max-connections", cfg.MaxConcurrentConnections, "max concurrent connections, 0 for unlimited")
	flags.BoolVar(&cfg.DisableKeepalive, "disable-keepalive", cfg.DisableKeepalive, "close every connection after one response")
	flags.BoolVar(&cfg.EnableGzip, "gzip", cfg.EnableGzip, "gzip-encode compressible responses")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address, empty to disable")
	flags.IntVar(&cfg.Limits.MaxHeaderCount, "max-header-count", http11.DefaultLimits().MaxHeaderCount, "max headers per request")
	flags.Int64Var(&cfg.Limits.MaxBodyBytes, "max-body-bytes", http11.DefaultLimits().MaxBodyBytes, "max request body size")
	flags.BoolVar(&debug, "debug", false, "verbose development logging")
	flags.DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for draining connections on exit")

	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(parent context.Context, cfg server.Config, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	cfg.Logger.Info("signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
