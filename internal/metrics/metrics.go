package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamRequests counts Tushare API calls by api_name and outcome
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tushare_requests_total",
		Help: "Total Tushare API requests by api and outcome",
	}, []string{"api", "outcome"})

	// upstreamDuration tracks Tushare API latency
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tushare_request_duration_seconds",
		Help:    "Tushare API request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	}, []string{"api"})

	// toolCalls counts MCP tool invocations
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_tool_calls_total",
		Help: "Total MCP tool calls by tool and outcome",
	}, []string{"tool", "outcome"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mcp_tool_call_duration_seconds",
		Help:    "MCP tool call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"tool"})
)

// Outcome labels
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// ObserveUpstream records one Tushare call
func ObserveUpstream(api, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(api, outcome).Inc()
	upstreamDuration.WithLabelValues(api).Observe(elapsed.Seconds())
}

// ObserveTool records one MCP tool call
func ObserveTool(tool, outcome string, elapsed time.Duration) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
	toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}
