package models

// TravelerDashboard is the signed-in traveler's overview.
type TravelerDashboard struct {
	TotalPlans            int64                        `json:"total_plans"`
	ReceivedRequests      int64                        `json:"received_requests"`
	PendingReceived       int64                        `json:"pending_received_requests"`
	JoinedTrips           int64                        `json:"joined_trips"`
	PendingReviewsAsHost  int                          `json:"pending_reviews_as_host"`
	PendingReviewsAsBuddy int                          `json:"pending_reviews_as_buddy"`
	SentRequestsByStatus  map[BuddyRequestStatus]int64 `json:"sent_requests_by_status"`
	AverageRating         float64                      `json:"average_rating"`
	TotalReviewsReceived  int                          `json:"total_reviews_received"`
}

// AdminDashboard aggregates platform-wide statistics.
type AdminDashboard struct {
	Travelers           int64                       `json:"travelers"`
	Admins              int64                       `json:"admins"`
	Subscribers         int64                       `json:"subscribers"`
	TravelPlans         int64                       `json:"travel_plans"`
	Trips               int64                       `json:"trips"`
	BuddyRequests       int64                       `json:"buddy_requests"`
	Revenue             float64                     `json:"revenue"`
	SubscriptionsByPlan []PlanSubscriptionCount     `json:"subscriptions_by_plan"`
	PlansPerMonth       []MonthlyCount              `json:"plans_per_month"`
	TripsByStatus       map[TravelBuddyStatus]int64 `json:"trips_by_status"`
}

// PlanSubscriptionCount is the number of ACTIVE subscriptions on one plan.
type PlanSubscriptionCount struct {
	PlanID uint   `json:"plan_id"`
	Name   string `json:"name"`
	Count  int64  `json:"count"`
}

// MonthlyCount is a count bucketed by calendar month, formatted YYYY-MM.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// TravelerCounts are the raw counters behind a TravelerDashboard.
type TravelerCounts struct {
	Plans           int64
	Received        int64
	PendingReceived int64
	JoinedTrips     int64
}
