// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"testing"
	"time"

	"travelbuddy/internal/database"
	"travelbuddy/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory sqlite database with the full schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// CreateTraveler inserts a TRAVELER account and its profile.
func CreateTraveler(t *testing.T, db *gorm.DB, name string, subscribed bool) *models.Traveler {
	t.Helper()

	email := name + "@example.com"
	user := models.User{Email: email, Password: "x", Role: models.RoleTraveler, Status: models.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	traveler := models.Traveler{UserID: user.ID, Name: name, Email: email, IsSubscribed: subscribed}
	if err := db.Create(&traveler).Error; err != nil {
		t.Fatalf("create traveler %s: %v", name, err)
	}
	return &traveler
}

// CreateAdmin inserts an ADMIN account with no traveler profile.
func CreateAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{Email: email, Password: "x", Role: models.RoleAdmin, Status: models.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return &user
}

// CreatePlan inserts a SOLO plan owned by owner starting a week from now.
func CreatePlan(t *testing.T, db *gorm.DB, owner *models.Traveler, destination string) *models.TravelPlan {
	t.Helper()

	start := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Second)
	plan := models.TravelPlan{
		TravelerID:  owner.ID,
		Destination: destination,
		StartDate:   start,
		EndDate:     start.Add(5 * 24 * time.Hour),
		BudgetMin:   500,
		BudgetMax:   1500,
		TravelType:  models.TravelTypeSolo,
	}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return &plan
}

// CreateRequest inserts a buddy request in the given status.
func CreateRequest(t *testing.T, db *gorm.DB, plan *models.TravelPlan, requester *models.Traveler, status models.BuddyRequestStatus) *models.BuddyRequest {
	t.Helper()

	req := models.BuddyRequest{TravelPlanID: plan.ID, RequesterID: requester.ID, Status: status, Message: "count me in"}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return &req
}

// CreateCompletedTrip marks plan completed and links buddy with a COMPLETED relationship.
func CreateCompletedTrip(t *testing.T, db *gorm.DB, plan *models.TravelPlan, buddy *models.Traveler) *models.TravelBuddy {
	t.Helper()

	now := time.Now().UTC()
	if err := db.Model(plan).Update("is_completed", true).Error; err != nil {
		t.Fatalf("complete plan: %v", err)
	}
	tb := models.TravelBuddy{
		TravelPlanID: plan.ID,
		BuddyID:      buddy.ID,
		Status:       models.TravelBuddyStatusCompleted,
		JoinedAt:     now.Add(-time.Hour),
		CompletedAt:  &now,
	}
	if err := db.Create(&tb).Error; err != nil {
		t.Fatalf("create travel buddy: %v", err)
	}
	return &tb
}

// Identity returns the identity a signed-in traveler carries.
func Identity(t *models.Traveler) models.Identity {
	return models.Identity{UserID: t.UserID, Email: t.Email, Role: models.RoleTraveler}
}
