package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedAssemblyDuration records how long each feed variant takes to assemble.
	FeedAssemblyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reverie_feed_assembly_duration_seconds",
		Help:    "Feed assembly latency in seconds by feed variant",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	// FeedAssemblyErrors counts aborted feed assemblies by variant.
	FeedAssemblyErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reverie_feed_assembly_errors_total",
		Help: "Total aborted feed assemblies by feed variant",
	}, []string{"feed"})

	// LikeToggles counts like-toggle mutations by outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reverie_like_toggles_total",
		Help: "Total like toggles by outcome (committed, failed)",
	}, []string{"outcome"})

	// MediaUploadRetries counts image upload retry attempts.
	MediaUploadRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reverie_media_upload_retries_total",
		Help: "Total image upload retry attempts",
	})

	// WebSocketConnections is the gauge of active notification hub connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reverie_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// FunctionInvocations counts remote function calls by name and outcome.
	FunctionInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reverie_function_invocations_total",
		Help: "Total remote function invocations by function and outcome",
	}, []string{"function", "outcome"})
)

// ObserveFeedAssembly records the latency of a feed assembly.
func ObserveFeedAssembly(feed string, start time.Time) {
	FeedAssemblyDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}
