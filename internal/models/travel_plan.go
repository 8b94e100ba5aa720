package models

import "time"

// TravelType classifies who a plan is meant for.
type TravelType string

const (
	// TravelTypeSolo plans are for individual travelers.
	TravelTypeSolo TravelType = "SOLO"
	// TravelTypeFamily plans are for family groups.
	TravelTypeFamily TravelType = "FAMILY"
	// TravelTypeFriends plans are for groups of friends.
	TravelTypeFriends TravelType = "FRIENDS"
)

// Valid reports whether t is a known travel type.
func (t TravelType) Valid() bool {
	switch t {
	case TravelTypeSolo, TravelTypeFamily, TravelTypeFriends:
		return true
	}
	return false
}

// TravelPlan is a trip published by its owner that other travelers can ask to join.
type TravelPlan struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TravelerID  uint       `gorm:"not null;index" json:"traveler_id"`
	Traveler    *Traveler  `gorm:"foreignKey:TravelerID" json:"traveler,omitempty"`
	Destination string     `gorm:"size:200;not null;index" json:"destination"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     time.Time  `gorm:"not null" json:"end_date"`
	BudgetMin   float64    `gorm:"not null;default:0" json:"budget_min"`
	BudgetMax   float64    `gorm:"not null;default:0" json:"budget_max"`
	TravelType  TravelType `gorm:"type:varchar(20);not null;index" json:"travel_type"`
	Description string     `gorm:"type:text" json:"description"`
	IsCompleted bool       `gorm:"not null;default:false;index" json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOwnedBy reports whether travelerID owns the plan.
func (p *TravelPlan) IsOwnedBy(travelerID uint) bool {
	return p.TravelerID == travelerID
}
