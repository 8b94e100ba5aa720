package models

import (
	"time"

	"gorm.io/datatypes"
)

// Traveler is the public profile attached to a TRAVELER account.
// Travelers are soft-deleted only; plans, requests and reviews keep
// pointing at them.
type Traveler struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	UserID           uint                        `gorm:"not null;uniqueIndex" json:"user_id"`
	Name             string                      `gorm:"size:120;not null" json:"name"`
	Email            string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ProfilePhoto     string                      `gorm:"size:512" json:"profile_photo,omitempty"`
	Bio              string                      `gorm:"type:text" json:"bio,omitempty"`
	ContactNumber    string                      `gorm:"size:40" json:"contact_number,omitempty"`
	CurrentLocation  string                      `gorm:"size:120" json:"current_location,omitempty"`
	Interests        datatypes.JSONSlice[string] `json:"interests"`
	VisitedCountries datatypes.JSONSlice[string] `json:"visited_countries"`
	IsSubscribed     bool                        `gorm:"not null;default:false;index" json:"is_subscribed"`
	IsDeleted        bool                        `gorm:"not null;default:false;index" json:"is_deleted"`
	AverageRating    float64                     `gorm:"not null;default:0" json:"average_rating"`
	TotalReviews     int                         `gorm:"not null;default:0" json:"total_reviews"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// CanParticipate reports whether the traveler passes the subscription gate.
func (t *Traveler) CanParticipate() bool {
	return t.IsSubscribed && !t.IsDeleted
}

// TravelerSummary is the compact traveler projection embedded in list responses.
type TravelerSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	ProfilePhoto  string  `json:"profile_photo,omitempty"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Summary projects t into a TravelerSummary.
func (t *Traveler) Summary() TravelerSummary {
	return TravelerSummary{
		ID:            t.ID,
		Name:          t.Name,
		Email:         t.Email,
		ProfilePhoto:  t.ProfilePhoto,
		AverageRating: t.AverageRating,
		TotalReviews:  t.TotalReviews,
	}
}
