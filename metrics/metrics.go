// Package metrics exposes Prometheus collectors for LLM dispatch, MCP tool
// calls and the HTTP boundary.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mlapp/folio/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

// Metrics holds every collector the daemon records into.
type Metrics struct {
	gatherer prometheus.Gatherer

	llmRequests *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec
	llmErrors   *prometheus.CounterVec

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		llmRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of prompts dispatched to LLM providers",
		}, []string{"provider", "status"}),

		llmDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of successful LLM requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		}, []string{"provider", "model"}),

		llmTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Completion tokens reported by LLM providers",
		}, []string{"provider", "model"}),

		llmErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Total number of failed LLM requests",
		}, []string{"provider", "error_type"}),

		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mcp_tool_calls_total",
			Help:      "Total number of MCP tool invocations",
		}, []string{"tool", "status"}),

		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mcp_tool_call_duration_seconds",
			Help:      "Duration of MCP tool invocations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "route", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// LLMMiddleware returns router middleware that counts requests, tokens and
// errors per provider.
func (m *Metrics) LLMMiddleware() llm.Middleware {
	return llm.MiddlewareFunc{
		AfterResponseFunc: func(ctx context.Context, req *llm.Request, resp *llm.Response) (*llm.Response, error) {
			provider := resp.Provider.String()
			m.llmRequests.WithLabelValues(provider, "success").Inc()
			m.llmDuration.WithLabelValues(provider, resp.Model).
				Observe((time.Duration(resp.ElapsedMillis) * time.Millisecond).Seconds())
			m.llmTokens.WithLabelValues(provider, resp.Model).Add(float64(resp.TokensUsed))
			return resp, nil
		},
		OnErrorFunc: func(ctx context.Context, req *llm.Request, err error) error {
			errorType := string(llm.ErrorTypeUnknown)
			var pcErr *llm.ProviderCallError
			if errors.As(err, &pcErr) {
				errorType = string(pcErr.Type)
			}
			m.llmRequests.WithLabelValues(req.Provider, "error").Inc()
			m.llmErrors.WithLabelValues(req.Provider, errorType).Inc()
			return nil
		},
	}
}

// ObserveToolCall records one MCP tool invocation. Pass it to mcp.WithCallObserver.
func (m *Metrics) ObserveToolCall(tool string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// HTTPMiddleware records request counts and latency labelled by the matched
// chi route pattern.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
