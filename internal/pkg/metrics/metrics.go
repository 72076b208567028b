package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kala_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kala_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kala_wizard_transitions_total",
			Help: "Wizard actions by outcome",
		},
		[]string{"action", "outcome"},
	)

	ProfilesCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kala_profiles_committed_total",
			Help: "Artisan profiles committed after the goals step",
		},
	)

	ChatReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kala_chat_replies_total",
			Help: "Assistant replies by selector rule",
		},
		[]string{"rule"},
	)

	ChatRepliesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kala_chat_replies_dropped_total",
			Help: "Delayed replies cancelled before delivery",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kala_sessions_active",
			Help: "Sessions held by the in-memory store",
		},
	)

	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kala_ws_clients",
			Help: "Connected websocket clients",
		},
	)
)
