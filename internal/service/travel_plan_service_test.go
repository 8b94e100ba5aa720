package service

import (
	"context"
	"testing"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"
	"travelbuddy/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planInput(dest string) validation.TravelPlanInput {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	return validation.TravelPlanInput{
		Destination: dest,
		StartDate:   start,
		EndDate:     start.Add(72 * time.Hour),
		BudgetMin:   300,
		BudgetMax:   900,
		TravelType:  models.TravelTypeFriends,
		Description: "long weekend",
	}
}

func TestTravelPlanCreate_SubscriptionGate(t *testing.T) {
	db, store := newTestStore(t)
	subscribed := testutil.CreateTraveler(t, db, "alice", true)
	free := testutil.CreateTraveler(t, db, "bob", false)

	svc := NewTravelPlanService(store)
	ctx := context.Background()

	plan, err := svc.Create(ctx, testutil.Identity(subscribed), planInput("  Tbilisi "))
	require.NoError(t, err)
	assert.Equal(t, "Tbilisi", plan.Destination)
	assert.Equal(t, subscribed.ID, plan.TravelerID)
	require.NotNil(t, plan.Traveler)

	_, err = svc.Create(ctx, testutil.Identity(free), planInput("Tbilisi"))
	requireCode(t, err, models.CodeUnauthorized)

	bad := planInput("Tbilisi")
	bad.EndDate = bad.StartDate.Add(-time.Hour)
	_, err = svc.Create(ctx, testutil.Identity(subscribed), bad)
	requireCode(t, err, models.CodeValidation)
}

func TestTravelPlanUpdate(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	other := testutil.CreateTraveler(t, db, "bob", true)
	plan := testutil.CreatePlan(t, db, owner, "Tbilisi")

	svc := NewTravelPlanService(store)
	ctx := context.Background()

	dest := "Batumi"
	budget := 2000.0
	updated, err := svc.Update(ctx, testutil.Identity(owner), plan.ID, TravelPlanUpdate{Destination: &dest, BudgetMax: &budget})
	require.NoError(t, err)
	assert.Equal(t, "Batumi", updated.Destination)
	assert.Equal(t, 2000.0, updated.BudgetMax)

	_, err = svc.Update(ctx, testutil.Identity(other), plan.ID, TravelPlanUpdate{Destination: &dest})
	requireCode(t, err, models.CodeForbidden)

	tooLow := 1.0
	_, err = svc.Update(ctx, testutil.Identity(owner), plan.ID, TravelPlanUpdate{BudgetMax: &tooLow})
	requireCode(t, err, models.CodeValidation)

	require.NoError(t, db.Model(plan).Update("is_completed", true).Error)
	_, err = svc.Update(ctx, testutil.Identity(owner), plan.ID, TravelPlanUpdate{Destination: &dest})
	requireCode(t, err, models.CodeConflict)
}

func TestTravelPlanDelete(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	b := testutil.CreateTraveler(t, db, "bob", true)
	c := testutil.CreateTraveler(t, db, "carol", true)
	open := testutil.CreatePlan(t, db, owner, "Tbilisi")
	joined := testutil.CreatePlan(t, db, owner, "Batumi")
	testutil.CreateRequest(t, db, open, b, models.BuddyRequestStatusPending)
	testutil.CreateRequest(t, db, open, c, models.BuddyRequestStatusRejected)
	testutil.CreateCompletedTrip(t, db, joined, b)

	svc := NewTravelPlanService(store)
	ctx := context.Background()

	err := svc.Delete(ctx, testutil.Identity(b), open.ID)
	requireCode(t, err, models.CodeForbidden)

	err = svc.Delete(ctx, testutil.Identity(owner), joined.ID)
	requireCode(t, err, models.CodeConflict)

	require.NoError(t, svc.Delete(ctx, testutil.Identity(owner), open.ID))

	var plans, requests int64
	require.NoError(t, db.Model(&models.TravelPlan{}).Where("id = ?", open.ID).Count(&plans).Error)
	require.NoError(t, db.Model(&models.BuddyRequest{}).Where("travel_plan_id = ?", open.ID).Count(&requests).Error)
	assert.Zero(t, plans)
	assert.Zero(t, requests)

	_, err = svc.Get(ctx, joined.ID)
	require.NoError(t, err)
}

func TestTravelPlanListMine(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	other := testutil.CreateTraveler(t, db, "bob", true)
	testutil.CreatePlan(t, db, owner, "Tbilisi")
	done := testutil.CreatePlan(t, db, owner, "Batumi")
	require.NoError(t, db.Model(done).Update("is_completed", true).Error)
	testutil.CreatePlan(t, db, other, "Yerevan")

	svc := NewTravelPlanService(store)
	ctx := context.Background()

	mine, total, err := svc.ListMine(ctx, testutil.Identity(owner), models.TravelPlanFilter{}, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	completed := true
	mine, total, err = svc.ListMine(ctx, testutil.Identity(owner), models.TravelPlanFilter{IsCompleted: &completed}, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, "Batumi", mine[0].Destination)

	all, total, err := svc.List(ctx, models.TravelPlanFilter{}, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}
