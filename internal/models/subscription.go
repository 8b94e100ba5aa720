package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionPlan is a purchasable tier.
type SubscriptionPlan struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Name           string                      `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Price          float64                     `gorm:"not null" json:"price"`
	DurationInDays int                         `gorm:"not null" json:"duration_in_days"`
	Features       datatypes.JSONSlice[string] `json:"features"`
	Recommended    bool                        `gorm:"not null;default:false" json:"recommended"`
	Color          string                      `gorm:"size:32" json:"color,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	// SubscriptionStatusPending awaits payment confirmation.
	SubscriptionStatusPending SubscriptionStatus = "PENDING"
	// SubscriptionStatusActive was confirmed by the payment gateway.
	SubscriptionStatusActive SubscriptionStatus = "ACTIVE"
	// SubscriptionStatusExpired ran past its end date.
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
	// SubscriptionStatusCancelled was cancelled before activation.
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription is a traveler's purchase of a plan. A traveler holds at most
// one PENDING or ACTIVE subscription.
type Subscription struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	TravelerID         uint               `gorm:"not null;index" json:"traveler_id"`
	Traveler           *Traveler          `gorm:"foreignKey:TravelerID" json:"traveler,omitempty"`
	SubscriptionPlanID uint               `gorm:"not null;index" json:"subscription_plan_id"`
	SubscriptionPlan   *SubscriptionPlan  `gorm:"foreignKey:SubscriptionPlanID" json:"subscription_plan,omitempty"`
	Status             SubscriptionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Amount             float64            `gorm:"not null" json:"amount"`
	StartDate          time.Time          `gorm:"not null" json:"start_date"`
	EndDate            time.Time          `gorm:"not null" json:"end_date"`
	Payment            *Payment           `gorm:"foreignKey:SubscriptionID" json:"payment,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// PaymentStatus records whether the gateway confirmed the payment.
type PaymentStatus string

const (
	// PaymentStatusPaid was confirmed by the gateway.
	PaymentStatusPaid PaymentStatus = "PAID"
	// PaymentStatusUnpaid is the initial state and the result of a failed checkout.
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
)

// Payment tracks the gateway transaction behind a subscription.
type Payment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SubscriptionID uint           `gorm:"not null;uniqueIndex" json:"subscription_id"`
	TravelerID     uint           `gorm:"not null;index" json:"traveler_id"`
	Amount         float64        `gorm:"not null" json:"amount"`
	TransactionID  string         `gorm:"size:80;not null;uniqueIndex" json:"transaction_id"`
	Status         PaymentStatus  `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	GatewayData    datatypes.JSON `json:"gateway_data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
