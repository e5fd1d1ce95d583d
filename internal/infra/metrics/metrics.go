package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts webhook deliveries by provider, event type and HTTP status.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "threadcraft",
		Subsystem: "webhook",
		Name:      "requests_total",
		Help:      "Total webhook requests by provider, event type and HTTP status.",
	}, []string{"provider", "event_type", "status"})

	// WebhookDuration tracks webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "threadcraft",
		Subsystem: "webhook",
		Name:      "duration_seconds",
		Help:      "Webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "threadcraft",
		Subsystem: "generation",
		Name:      "requests_total",
		Help:      "Generation requests by content type and outcome.",
	}, []string{"content_type", "outcome"})

	// ModelLatency tracks the external model call only.
	ModelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "threadcraft",
		Subsystem: "generation",
		Name:      "model_duration_seconds",
		Help:      "Generative model call duration in seconds.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	PointsMovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "threadcraft",
		Subsystem: "ledger",
		Name:      "points_total",
		Help:      "Points credited or debited, by direction.",
	}, []string{"direction"})

	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "threadcraft",
		Subsystem: "email",
		Name:      "sent_total",
		Help:      "Outbound emails by template and outcome.",
	}, []string{"template", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "threadcraft",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
