package models

import "time"

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is one side's rating of the other after a completed trip.
// Each (travel buddy, reviewer) pair may review once.
type Review struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	TravelBuddyID uint         `gorm:"not null;uniqueIndex:idx_reviews_buddy_reviewer;index" json:"travel_buddy_id"`
	TravelBuddy   *TravelBuddy `gorm:"foreignKey:TravelBuddyID" json:"travel_buddy,omitempty"`
	ReviewerID    uint         `gorm:"not null;uniqueIndex:idx_reviews_buddy_reviewer;index" json:"reviewer_id"`
	Reviewer      *Traveler    `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	RevieweeID    uint         `gorm:"not null;index" json:"reviewee_id"`
	Reviewee      *Traveler    `gorm:"foreignKey:RevieweeID" json:"reviewee,omitempty"`
	Rating        int          `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment       string       `gorm:"type:text" json:"comment"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// ReviewRole is the caller's position in a travel buddy relationship.
type ReviewRole string

const (
	// ReviewRoleHost is the plan owner reviewing the buddy.
	ReviewRoleHost ReviewRole = "HOST"
	// ReviewRoleBuddy is the buddy reviewing the plan owner.
	ReviewRoleBuddy ReviewRole = "BUDDY"
)

// PendingReview is a completed relationship the caller has not reviewed yet.
// It is computed on demand and never stored.
type PendingReview struct {
	TravelBuddyID uint             `json:"travel_buddy_id"`
	TravelPlanID  uint             `json:"travel_plan_id"`
	Destination   string           `json:"destination"`
	Role          ReviewRole       `json:"role"`
	Reviewee      *TravelerSummary `json:"reviewee,omitempty"`
	CompletedAt   *time.Time       `json:"completed_at"`
}

// RatingSummary is the aggregate over all reviews a traveler received.
type RatingSummary struct {
	Average float64
	Count   int
}
