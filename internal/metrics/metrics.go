// Package metrics provides Prometheus metrics for the tool server
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool dispatch metrics
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsmcp_tool_calls_total",
			Help: "Total number of tool calls by outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partsmcp_tool_call_duration_seconds",
			Help:    "Time spent handling a tool call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Row decoding metrics
	DecodeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsmcp_decode_failures_total",
			Help: "Stored JSON fields replaced by the no-information placeholder",
		},
		[]string{"field"},
	)

	// Media metrics
	MediaFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partsmcp_media_fetches_total",
			Help: "Image resolutions by outcome",
		},
		[]string{"outcome"},
	)

	MediaBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partsmcp_media_bytes_total",
			Help: "Bytes of image data fetched",
		},
	)
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeUnknown  = "unknown_tool"
)

// RecordToolCall records a tool call outcome and duration
func RecordToolCall(tool, outcome string, duration time.Duration) {
	ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordDecodeFailure counts a placeholder substitution
func RecordDecodeFailure(field string) {
	DecodeFailuresTotal.WithLabelValues(field).Inc()
}

// RecordMediaFetch records an image resolution
func RecordMediaFetch(outcome string, bytes int) {
	MediaFetchesTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		MediaBytesTotal.Add(float64(bytes))
	}
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
