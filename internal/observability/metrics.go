package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuddyRequestsCreated counts buddy requests accepted into the PENDING state.
	BuddyRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbuddy_buddy_requests_created_total",
		Help: "Total number of buddy requests sent",
	})

	// BuddyRequestTransitions counts owner responses by resulting status.
	BuddyRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelbuddy_buddy_request_transitions_total",
		Help: "Total number of buddy request status transitions by target status",
	}, []string{"status"})

	// BuddyRequestAutoRejections counts sibling requests rejected by an acceptance.
	BuddyRequestAutoRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbuddy_buddy_request_auto_rejections_total",
		Help: "Total number of pending requests rejected because another request was accepted",
	})

	// TravelPlansCompleted counts completed plans.
	TravelPlansCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelbuddy_travel_plans_completed_total",
		Help: "Total number of travel plans marked as completed",
	})

	// ReviewsCreated counts reviews by the reviewer's role in the trip.
	ReviewsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelbuddy_reviews_created_total",
		Help: "Total number of reviews by reviewer role",
	}, []string{"role"})

	// SubscriptionEvents counts subscription lifecycle events.
	SubscriptionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelbuddy_subscription_events_total",
		Help: "Total number of subscription lifecycle events",
	}, []string{"event"})

	// CascadeLatency records how long each transactional cascade takes.
	CascadeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelbuddy_cascade_latency_seconds",
		Help:    "Latency of transactional cascades in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"cascade", "outcome"})
)

// TrackCascade returns a func that records the cascade latency when called
// with the cascade's final error (e.g. in a defer).
func TrackCascade(cascade string) func(err error) {
	start := time.Now()
	return func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		CascadeLatency.WithLabelValues(cascade, outcome).Observe(time.Since(start).Seconds())
	}
}
