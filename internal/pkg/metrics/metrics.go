package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coursereview"

var (
	// ReviewSubmissions counts SubmitReview outcomes.
	// Labels: outcome (success, rejected, failure), reason (rejection reason or "none")
	ReviewSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reviews",
		Name:      "submissions_total",
		Help:      "Review submissions by outcome",
	}, []string{"outcome", "reason"})

	// ReviewDeletions counts DeleteReview outcomes.
	// Labels: outcome (success; rejected for unknown ids or invalid input; failure for store errors)
	ReviewDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reviews",
		Name:      "deletions_total",
		Help:      "Review deletions by outcome",
	}, []string{"outcome"})

	// Searches counts search resolutions.
	// Labels: outcome (no_results, resolved, ambiguous, invalid, failure)
	Searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "requests_total",
		Help:      "Professor searches by outcome",
	}, []string{"outcome"})

	// RecomputeDuration measures a single average recomputation inside its transaction.
	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregate",
		Name:      "recompute_duration_seconds",
		Help:      "Latency of course average recomputation",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})

	// HTTPRequests counts handled requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status_code"})

	// HTTPRequestDuration measures handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status_code"})
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
	ReasonNone      = "none"
)
