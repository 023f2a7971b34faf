package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReminderNotifications counts materialized reminder notifications by
	// trigger source (poll|manual|edit).
	ReminderNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventra_reminder_notifications_total",
			Help: "Total number of reminder notifications materialized",
		},
		[]string{"source"},
	)

	// PollCycles counts completed poll cycles by result (ok|error).
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventra_poll_cycles_total",
			Help: "Total number of reminder poll cycles",
		},
		[]string{"result"},
	)

	// PollDuration measures how long a poll cycle takes.
	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventra_poll_duration_seconds",
			Help:    "Reminder poll cycle duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SweptNotifications counts notifications removed by the retention sweeper.
	SweptNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventra_notifications_swept_total",
			Help: "Total number of notifications removed by retention sweeps",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventra_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
