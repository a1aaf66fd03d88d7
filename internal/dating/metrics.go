// internal/dating/metrics.go

package dating

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	likesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dating_likes_total",
			Help: "Total number of likes by outcome",
		},
		[]string{"outcome"},
	)

	likeRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_like_retries_total",
			Help: "Likes that lost a race on the pair and retried",
		},
	)

	passesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_passes_total",
			Help: "Total number of passes",
		},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_matches_total",
			Help: "Total number of mutual matches created",
		},
	)

	unmatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_unmatches_total",
			Help: "Total number of unmatches",
		},
	)

	blocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_blocks_total",
			Help: "Total number of blocks",
		},
	)

	dateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dating_date_requests_total",
			Help: "Total number of date requests by status reached",
		},
		[]string{"status"},
	)

	datesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_dates_completed_total",
			Help: "Dates confirmed by both participants",
		},
	)

	reputationAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_reputation_awarded_total",
			Help: "Reputation points awarded",
		},
	)

	responseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dating_response_time_seconds",
			Help:    "Time between a date request and its answer",
			Buckets: []float64{60, 600, 3600, 6 * 3600, 24 * 3600, 3 * 24 * 3600, 7 * 24 * 3600},
		},
		[]string{"decision"},
	)
)
