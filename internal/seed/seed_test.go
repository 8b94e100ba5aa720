package seed

import (
	"context"
	"testing"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_DryRun(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, SkipBcrypt: true, MaxDays: 10})

	traveler, err := f.CreateTraveler()
	require.NoError(t, err)
	assert.NotZero(t, traveler.ID)
	assert.NotZero(t, traveler.UserID)
	assert.True(t, traveler.IsSubscribed)
	assert.NotEmpty(t, traveler.Interests)

	plan, err := f.CreateTravelPlan(traveler)
	require.NoError(t, err)
	assert.Equal(t, traveler.ID, plan.TravelerID)
	assert.True(t, plan.TravelType.Valid())
	assert.True(t, plan.EndDate.After(plan.StartDate))
	assert.GreaterOrEqual(t, plan.BudgetMax, plan.BudgetMin)
	assert.True(t, plan.StartDate.Before(time.Now().AddDate(0, 0, 12)))
}

func TestFactory_Overrides(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, SkipBcrypt: true})

	traveler, err := f.CreateTraveler(func(tr *models.Traveler) { tr.IsSubscribed = false })
	require.NoError(t, err)
	assert.False(t, traveler.IsSubscribed)

	plan := f.BuildTravelPlan(traveler, func(p *models.TravelPlan) { p.Destination = "Lisbon" })
	assert.Equal(t, "Lisbon", plan.Destination)
}

func TestFactory_RatingInRange(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true})
	for i := 0; i < 200; i++ {
		r := f.Rating()
		assert.GreaterOrEqual(t, r, models.MinRating)
		assert.LessOrEqual(t, r, models.MaxRating)
	}
}

func TestSeed_SQLite(t *testing.T) {
	db := testutil.NewTestDB(t)

	stats, err := Seed(context.Background(), db, Options{
		NumTravelers:     5,
		PlansPerTraveler: 2,
		CompleteRatio:    1,
		SkipBcrypt:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Travelers)
	assert.Equal(t, 10, stats.Plans)
	assert.Equal(t, 30, stats.Requests)
	assert.Equal(t, stats.Matches, stats.Completed)
	assert.Equal(t, stats.Completed*2, stats.Reviews)

	// every accepted request has a buddy and at most one per plan
	var accepted []models.BuddyRequest
	require.NoError(t, db.Where("status = ?", models.BuddyRequestStatusAccepted).Find(&accepted).Error)
	assert.Len(t, accepted, stats.Matches)
	perPlan := map[uint]int{}
	for _, r := range accepted {
		perPlan[r.TravelPlanID]++
		assert.Equal(t, 1, perPlan[r.TravelPlanID])
	}

	var buddies int64
	require.NoError(t, db.Model(&models.TravelBuddy{}).Count(&buddies).Error)
	assert.Equal(t, int64(stats.Matches), buddies)

	var plans int64
	require.NoError(t, db.Model(&models.SubscriptionPlan{}).Count(&plans).Error)
	assert.Equal(t, int64(3), plans)
}

func TestSeed_CleanRemovesPreviousRun(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := Seed(ctx, db, Options{NumTravelers: 3, PlansPerTraveler: 1, SkipBcrypt: true})
	require.NoError(t, err)
	_, err = Seed(ctx, db, Options{NumTravelers: 2, PlansPerTraveler: 1, SkipBcrypt: true, ShouldClean: true})
	require.NoError(t, err)

	var travelers int64
	require.NoError(t, db.Model(&models.Traveler{}).Count(&travelers).Error)
	assert.Equal(t, int64(2), travelers)
}
