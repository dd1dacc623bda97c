package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cube_requests_total",
			Help: "Analyze requests by response status code",
		},
		[]string{"code"},
	)

	RequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cube_request_duration_seconds",
			Help:    "End-to-end duration of analyze requests",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cube_upstream_calls_total",
			Help: "Model calls by call type and outcome",
		},
		[]string{"call", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cube_upstream_call_duration_seconds",
			Help:    "Duration of a single model call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)
)

func ObserveRequest(code int, started time.Time) {
	RequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
	RequestDuration.Observe(time.Since(started).Seconds())
}

func ObserveUpstream(call, outcome string, started time.Time) {
	UpstreamCalls.WithLabelValues(call, outcome).Inc()
	UpstreamDuration.WithLabelValues(call).Observe(time.Since(started).Seconds())
}
