package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM requests by model and status.",
		},
		[]string{"role", "model", "status"},
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM request latency by model.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role", "model"},
	)
	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total tokens consumed by direction (in/out).",
		},
		[]string{"role", "model", "direction"},
	)
)

// meteredLLM records request counts, latency, and token consumption.
type meteredLLM struct {
	next CoreLLM
	role string
}

// MetricsMiddleware creates middleware that exports Prometheus metrics for
// each request. The role label distinguishes the verdict model from the
// keyword model when both share a provider.
func MetricsMiddleware(role string) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &meteredLLM{next: next, role: role}
	}
}

func (m *meteredLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	model := m.next.GetModel()
	start := time.Now()

	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)

	llmRequestDuration.WithLabelValues(m.role, model).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmRequestsTotal.WithLabelValues(m.role, model, status).Inc()
	llmTokensTotal.WithLabelValues(m.role, model, "in").Add(float64(tokensIn))
	llmTokensTotal.WithLabelValues(m.role, model, "out").Add(float64(tokensOut))

	return response, tokensIn, tokensOut, err
}

func (m *meteredLLM) GetModel() string { return m.next.GetModel() }
