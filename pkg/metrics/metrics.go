// Package metrics provides Prometheus instrumentation for compose calls.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/germanamz/aix/pkg/compose"
	"github.com/germanamz/aix/pkg/modeladapter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultParsed = "parsed"
	ResultRaw    = "raw"
	ResultError  = "error"
)

// Metrics holds the compose collectors.
type Metrics struct {
	Requests     *prometheus.CounterVec // aix_compose_requests_total{result}
	Duration     prometheus.Histogram   // aix_compose_duration_seconds
	Status       *prometheus.CounterVec // aix_compose_responses_total{code}
	PromptTokens prometheus.Histogram   // aix_compose_prompt_tokens
	InFlight     prometheus.Gauge       // aix_compose_in_flight
}

// New registers the compose metrics with reg.
// If reg is nil, the default Prometheus registerer is used.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aix_compose_requests_total",
			Help: "Compose calls by result (parsed, raw, error)",
		}, []string{"result"}),

		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "aix_compose_duration_seconds",
			Help:    "Compose call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		Status: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aix_compose_responses_total",
			Help: "Compose responses by HTTP status code",
		}, []string{"code"}),

		PromptTokens: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "aix_compose_prompt_tokens",
			Help:    "Estimated prompt size in tokens",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		}),

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "aix_compose_in_flight",
			Help: "Compose calls currently in progress",
		}),
	}
}

// NewRegistry returns a registry with the Go and process collectors plus the
// compose metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return reg, New(reg)
}

// Handler returns an HTTP handler exposing the metrics in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Middleware records every call that passes through it.
func (m *Metrics) Middleware() compose.Middleware {
	return func(next compose.Composer) compose.Composer {
		return compose.ComposerFunc(func(ctx context.Context, prompt string, opts ...compose.Option) (*modeladapter.Response, error) {
			m.InFlight.Inc()
			defer m.InFlight.Dec()

			m.PromptTokens.Observe(float64(modeladapter.EstimateTokens(prompt)))

			start := time.Now()
			resp, err := next.Compose(ctx, prompt, opts...)
			m.Duration.Observe(time.Since(start).Seconds())

			switch {
			case err != nil, resp == nil:
				m.Requests.WithLabelValues(ResultError).Inc()
				return resp, err
			case resp.Parsed():
				m.Requests.WithLabelValues(ResultParsed).Inc()
			default:
				m.Requests.WithLabelValues(ResultRaw).Inc()
			}

			m.Status.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

			return resp, nil
		})
	}
}
