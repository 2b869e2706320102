package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestead_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// InviteEvents counts invite lifecycle transitions
	// (created|resent|accepted|expired|revoked).
	InviteEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestead_invite_events_total",
			Help: "Total number of home invite lifecycle events",
		},
		[]string{"event"},
	)

	// TasksCompleted counts completed maintenance tasks, split by whether a
	// recurring follow-up was spawned.
	TasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homestead_tasks_completed_total",
			Help: "Total number of completed maintenance tasks",
		},
		[]string{"recurring"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homestead_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
