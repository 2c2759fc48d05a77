package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/germanamz/aix/pkg/compose"
	"github.com/germanamz/aix/pkg/mcpserver"
	"github.com/germanamz/aix/pkg/metrics"
	"github.com/spf13/cobra"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the compose tool over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, root, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func runMCP(cmd *cobra.Command, root *rootOptions, metricsAddr string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	client, err := cfg.NewClient()
	if err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr.
	logger := root.logger(cmd.ErrOrStderr())
	reg, m := metrics.NewRegistry()

	mws := []compose.Middleware{compose.Recovery(), compose.Logger(logger), m.Middleware()}
	if cfg.Timeout > 0 {
		mws = append(mws, compose.Timeout(cfg.Timeout))
	}

	ctx := cmd.Context()

	if metricsAddr != "" {
		_, stop, err := serveMetrics(ctx, metricsAddr, metrics.Handler(reg), logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	s := mcpserver.New("aix", version, compose.Wrap(client, mws...))

	err = s.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveMetrics starts an HTTP server exposing h at /metrics. It returns the
// bound address and a function that shuts the server down.
func serveMetrics(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
