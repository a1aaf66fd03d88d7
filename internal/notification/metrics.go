// internal/notification/metrics.go

package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_total",
			Help: "Notification events accepted by the bridge",
		},
		[]string{"event"},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_dropped_total",
			Help: "Notification events dropped before delivery",
		},
		[]string{"event", "reason"},
	)

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Dispatcher outcomes per channel and event",
		},
		[]string{"dispatcher", "event", "result"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Time spent in a single dispatcher call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dispatcher"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_breaker_state",
			Help: "Circuit breaker state per dispatcher (0 closed, 1 half-open, 2 open)",
		},
		[]string{"dispatcher"},
	)

	wsConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_ws_connections",
			Help: "Open realtime websocket connections",
		},
	)
)
