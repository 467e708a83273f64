package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	genai "google.golang.org/genai"
)

// Metrics holds the Prometheus collectors for model calls.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors. A nil registerer skips
// registration (useful in tests).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgdiag",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Model requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orgdiag",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Model request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"op"}),
	}
	if reg == nil {
		return m, nil
	}
	if err := reg.Register(m.requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.requests = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.latency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.latency = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	default:
		outcome = "error"
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Instrument records request counts and latency per operation.
func Instrument(m *Metrics) Middleware {
	if m == nil {
		return nil
	}
	return func(next Model) Model {
		return &funcModel{
			next: next,
			turn: func(ctx context.Context, sys string, history []Turn) (string, error) {
				start := time.Now()
				out, err := next.GenerateTurn(ctx, sys, history)
				m.observe(OpTurn, start, err)
				return out, err
			},
			structured: func(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
				start := time.Now()
				raw, err := next.GenerateStructured(ctx, prompt, schema)
				m.observe(OpStructured, start, err)
				return raw, err
			},
		}
	}
}
