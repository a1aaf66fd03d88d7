// internal/discovery/metrics.go

package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	profileImpressions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_profile_impressions_total",
			Help: "Profiles returned in discovery feed pages",
		},
	)

	feedLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_feed_duration_seconds",
			Help:    "Time taken to build a discovery feed page",
			Buckets: prometheus.DefBuckets,
		},
	)

	candidateScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_candidate_score",
			Help:    "Distribution of compatibility scores for eligible candidates",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	digestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_admirer_digests_total",
			Help: "Admirer digest notifications sent",
		},
	)
)
