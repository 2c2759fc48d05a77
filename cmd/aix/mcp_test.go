package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/germanamz/aix/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMetrics(t *testing.T) {
	reg, m := metrics.NewRegistry()
	m.Requests.WithLabelValues(metrics.ResultRaw).Inc()

	addr, stop, err := serveMetrics(context.Background(), "127.0.0.1:0", metrics.Handler(reg), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(stop)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `aix_compose_requests_total{result="raw"} 1`)
}

func TestServeMetrics_BadAddress(t *testing.T) {
	_, _, err := serveMetrics(context.Background(), "not-an-address", http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestMCP_MissingAPIKey(t *testing.T) {
	t.Setenv("AIX_API_KEY", "")

	_, _, err := execute(t, "", "mcp", "--config", writeConfig(t, "variant: current\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}
