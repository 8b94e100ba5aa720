package database

import "travelbuddy/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Traveler{},
		&models.TravelPlan{},
		&models.BuddyRequest{},
		&models.TravelBuddy{},
		&models.Review{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.Payment{},
	}
}
