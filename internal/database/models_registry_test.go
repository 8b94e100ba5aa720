package database

import (
	"testing"

	"travelbuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_IncludesBuddyGraph(t *testing.T) {
	var sawRequest, sawBuddy, sawReview bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.BuddyRequest:
			sawRequest = true
		case *models.TravelBuddy:
			sawBuddy = true
		case *models.Review:
			sawReview = true
		}
	}
	assert.True(t, sawRequest, "PersistentModels should include BuddyRequest")
	assert.True(t, sawBuddy, "PersistentModels should include TravelBuddy")
	assert.True(t, sawReview, "PersistentModels should include Review")
}

func TestPersistentModels_AutoMigrateDeclaresUniquePairs(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	require.NoError(t, runAutoMigrate(db))

	m := db.Migrator()
	assert.True(t, m.HasIndex(&models.BuddyRequest{}, "idx_buddy_requests_plan_requester"))
	assert.True(t, m.HasIndex(&models.TravelBuddy{}, "idx_travel_buddies_plan_buddy"))
	assert.True(t, m.HasIndex(&models.Review{}, "idx_reviews_buddy_reviewer"))
}
