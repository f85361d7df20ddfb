package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClicksTotal counts committed click transactions.
	ClicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clickwall",
		Name:      "clicks_total",
		Help:      "Committed click ledger transactions.",
	})

	// ClickFailures counts ledger transactions that did not commit.
	ClickFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clickwall",
		Name:      "click_failures_total",
		Help:      "Click ledger transactions that failed to commit.",
	})

	// RateLimited counts requests rejected by the admission gate.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clickwall",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	// ActivityBuildSeconds observes dashboard series rebuild latency.
	ActivityBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "clickwall",
		Name:      "activity_build_seconds",
		Help:      "Time spent rebuilding the activity series from the click log.",
		Buckets:   prometheus.DefBuckets,
	})

	// FeedSubscriptions tracks live counter feed subscriptions.
	FeedSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "clickwall",
		Name:      "feed_subscriptions",
		Help:      "Currently active counter feed subscriptions.",
	})
)
