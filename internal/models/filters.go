package models

import "time"

// TravelPlanFilter narrows travel plan listings.
type TravelPlanFilter struct {
	SearchTerm  string
	Destination string
	TravelType  TravelType
	BudgetMin   *float64
	BudgetMax   *float64
	StartAfter  *time.Time
	EndBefore   *time.Time
	TravelerID  uint
	IsCompleted *bool
}

// TravelerFilter narrows traveler listings.
type TravelerFilter struct {
	SearchTerm   string
	IsSubscribed *bool
}
