package models

import "time"

// TravelBuddyStatus is the state of an accepted buddy relationship.
type TravelBuddyStatus string

const (
	// TravelBuddyStatusActive relationships belong to plans that are not completed yet.
	TravelBuddyStatusActive TravelBuddyStatus = "ACTIVE"
	// TravelBuddyStatusCompleted relationships unlock reviews in both directions.
	TravelBuddyStatusCompleted TravelBuddyStatus = "COMPLETED"
)

// TravelBuddy links a plan to a traveler whose request was accepted.
type TravelBuddy struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	TravelPlanID uint              `gorm:"not null;uniqueIndex:idx_travel_buddies_plan_buddy;index" json:"travel_plan_id"`
	TravelPlan   *TravelPlan       `gorm:"foreignKey:TravelPlanID" json:"travel_plan,omitempty"`
	BuddyID      uint              `gorm:"not null;uniqueIndex:idx_travel_buddies_plan_buddy;index" json:"buddy_id"`
	Buddy        *Traveler         `gorm:"foreignKey:BuddyID" json:"buddy,omitempty"`
	Status       TravelBuddyStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	JoinedAt     time.Time         `gorm:"not null" json:"joined_at"`
	CompletedAt  *time.Time        `json:"completed_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
