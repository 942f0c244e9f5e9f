package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hustlr_chat_turns_total",
			Help: "Inbound chat messages by the branch that answered them",
		},
		[]string{"branch"},
	)

	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hustlr_chat_turn_duration_seconds",
			Help:    "Time spent handling one inbound chat message",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"branch"},
	)

	LLMAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hustlr_llm_attempts_total",
			Help: "Remote text-generation attempts by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hustlr_llm_latency_seconds",
			Help:    "Latency of remote text-generation calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"model"},
	)

	Bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hustlr_bookings_total",
			Help: "Booking commit attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	GeocodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hustlr_geocode_failures_total",
			Help: "Reverse-geocoding lookups that fell back to raw coordinates",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hustlr_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
