package models

import "time"

// BuddyRequestStatus defines lifecycle states for a request to join a plan.
type BuddyRequestStatus string

const (
	// BuddyRequestStatusPending indicates the request is awaiting the owner's decision.
	BuddyRequestStatusPending BuddyRequestStatus = "PENDING"
	// BuddyRequestStatusAccepted indicates the requester became a buddy.
	BuddyRequestStatusAccepted BuddyRequestStatus = "ACCEPTED"
	// BuddyRequestStatusRejected indicates the owner declined, or another request was accepted.
	BuddyRequestStatusRejected BuddyRequestStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s BuddyRequestStatus) Valid() bool {
	switch s {
	case BuddyRequestStatusPending, BuddyRequestStatusAccepted, BuddyRequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s BuddyRequestStatus) IsTerminal() bool {
	return s == BuddyRequestStatusAccepted || s == BuddyRequestStatusRejected
}

// BuddyRequest is a traveler's request to join a travel plan.
// There is at most one request per (plan, requester).
type BuddyRequest struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	TravelPlanID uint               `gorm:"not null;uniqueIndex:idx_buddy_requests_plan_requester;index" json:"travel_plan_id"`
	TravelPlan   *TravelPlan        `gorm:"foreignKey:TravelPlanID;constraint:OnDelete:CASCADE" json:"travel_plan,omitempty"`
	RequesterID  uint               `gorm:"not null;uniqueIndex:idx_buddy_requests_plan_requester;index" json:"requester_id"`
	Requester    *Traveler          `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Status       BuddyRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Message      string             `gorm:"type:text" json:"message"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// RejectedRequest describes a sibling request rejected by an acceptance.
type RejectedRequest struct {
	ID        uint             `json:"id"`
	Requester *TravelerSummary `json:"requester,omitempty"`
	Message   string           `json:"message"`
}
