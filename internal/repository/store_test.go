package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AtomicRollsBackOnError(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	owner := testutil.CreateTraveler(t, db, "owner", true)
	plan := testutil.CreatePlan(t, db, owner, "Lisbon")
	requester := testutil.CreateTraveler(t, db, "requester", true)
	req := testutil.CreateRequest(t, db, plan, requester, models.BuddyRequestStatusPending)

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(tx Store) error {
		ok, err := tx.BuddyRequests().TransitionFromPending(ctx, req.ID, models.BuddyRequestStatusAccepted)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := store.BuddyRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BuddyRequestStatusPending, reloaded.Status)
}

func TestStore_AfterCommitRunsOnlyOnCommit(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	var calls []string
	err := store.Atomic(ctx, func(tx Store) error {
		tx.AfterCommit(ctx, func(context.Context) { calls = append(calls, "outer") })
		assert.Empty(t, calls)
		return tx.Atomic(ctx, func(inner Store) error {
			inner.AfterCommit(ctx, func(context.Context) { calls = append(calls, "inner") })
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)

	calls = nil
	err = store.Atomic(ctx, func(tx Store) error {
		tx.AfterCommit(ctx, func(context.Context) { calls = append(calls, "dropped") })
		return errors.New("rollback")
	})
	require.Error(t, err)
	assert.Empty(t, calls)

	store.AfterCommit(ctx, func(context.Context) { calls = append(calls, "immediate") })
	assert.Equal(t, []string{"immediate"}, calls)
}

func TestBuddyRequestRepository_StateTransitions(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	owner := testutil.CreateTraveler(t, db, "owner", true)
	plan := testutil.CreatePlan(t, db, owner, "Kyoto")
	a := testutil.CreateTraveler(t, db, "alice", true)
	b := testutil.CreateTraveler(t, db, "bob", true)
	c := testutil.CreateTraveler(t, db, "carol", true)

	reqA := testutil.CreateRequest(t, db, plan, a, models.BuddyRequestStatusPending)
	reqB := testutil.CreateRequest(t, db, plan, b, models.BuddyRequestStatusPending)
	reqC := testutil.CreateRequest(t, db, plan, c, models.BuddyRequestStatusRejected)
	repo := store.BuddyRequests()

	t.Run("duplicate pair is conflict", func(t *testing.T) {
		err := repo.Create(ctx, &models.BuddyRequest{TravelPlanID: plan.ID, RequesterID: a.ID, Status: models.BuddyRequestStatusPending})
		assert.Equal(t, 409, models.HTTPStatus(err))
	})

	t.Run("pending siblings exclude the accepted request and terminal rows", func(t *testing.T) {
		siblings, err := repo.ListPendingByPlan(ctx, plan.ID, reqA.ID)
		require.NoError(t, err)
		require.Len(t, siblings, 1)
		assert.Equal(t, reqB.ID, siblings[0].ID)
		require.NotNil(t, siblings[0].Requester)
		assert.Equal(t, "bob", siblings[0].Requester.Name)
	})

	t.Run("conditional transition only moves pending rows", func(t *testing.T) {
		ok, err := repo.TransitionFromPending(ctx, reqA.ID, models.BuddyRequestStatusAccepted)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.TransitionFromPending(ctx, reqA.ID, models.BuddyRequestStatusRejected)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.TransitionFromPending(ctx, reqC.ID, models.BuddyRequestStatusAccepted)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reject pending skips rows already terminal", func(t *testing.T) {
		n, err := repo.RejectPending(ctx, []uint{reqA.ID, reqB.ID, reqC.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.RejectPending(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("received requests are scoped to the owner's plans", func(t *testing.T) {
		received, err := repo.ListReceived(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, received, 3)

		none, err := repo.ListReceived(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("status distribution for requester", func(t *testing.T) {
		counts, err := repo.CountByStatusForRequester(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[models.BuddyRequestStatusAccepted])
	})
}

func TestTravelBuddyRepository_PendingReviewProjections(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	host := testutil.CreateTraveler(t, db, "host", true)
	buddy := testutil.CreateTraveler(t, db, "buddy", true)
	plan := testutil.CreatePlan(t, db, host, "Oslo")
	tb := testutil.CreateCompletedTrip(t, db, plan, buddy)

	active := testutil.CreatePlan(t, db, host, "Bergen")
	require.NoError(t, db.Create(&models.TravelBuddy{
		TravelPlanID: active.ID,
		BuddyID:      buddy.ID,
		Status:       models.TravelBuddyStatusActive,
		JoinedAt:     time.Now(),
	}).Error)

	repo := store.TravelBuddies()

	asHost, err := repo.PendingAsHost(ctx, host.ID)
	require.NoError(t, err)
	require.Len(t, asHost, 1)
	assert.Equal(t, tb.ID, asHost[0].ID)

	asBuddy, err := repo.PendingAsBuddy(ctx, buddy.ID)
	require.NoError(t, err)
	require.Len(t, asBuddy, 1)

	empty, err := repo.PendingAsHost(ctx, buddy.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Reviews().Create(ctx, &models.Review{
		TravelBuddyID: tb.ID, ReviewerID: host.ID, RevieweeID: buddy.ID, Rating: 5,
	}))

	asHost, err = repo.PendingAsHost(ctx, host.ID)
	require.NoError(t, err)
	assert.Empty(t, asHost)

	// the host's review does not satisfy the buddy's side
	asBuddy, err = repo.PendingAsBuddy(ctx, buddy.ID)
	require.NoError(t, err)
	assert.Len(t, asBuddy, 1)
}

func TestTravelBuddyRepository_CompleteActiveByPlan(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	host := testutil.CreateTraveler(t, db, "host", true)
	buddy := testutil.CreateTraveler(t, db, "buddy", true)
	plan := testutil.CreatePlan(t, db, host, "Quito")
	require.NoError(t, store.TravelBuddies().Create(ctx, &models.TravelBuddy{
		TravelPlanID: plan.ID, BuddyID: buddy.ID, Status: models.TravelBuddyStatusActive, JoinedAt: time.Now(),
	}))

	err := store.TravelBuddies().Create(ctx, &models.TravelBuddy{
		TravelPlanID: plan.ID, BuddyID: buddy.ID, Status: models.TravelBuddyStatusActive, JoinedAt: time.Now(),
	})
	assert.Equal(t, 409, models.HTTPStatus(err))

	n, err := store.TravelBuddies().CompleteActiveByPlan(ctx, plan.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	buddies, err := store.TravelBuddies().ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, buddies, 1)
	assert.Equal(t, models.TravelBuddyStatusCompleted, buddies[0].Status)
	assert.NotNil(t, buddies[0].CompletedAt)

	n, err = store.TravelBuddies().CompleteActiveByPlan(ctx, plan.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReviewRepository_RatingSummaryAndDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	reviewee := testutil.CreateTraveler(t, db, "reviewee", true)
	summary, err := store.Reviews().RatingSummary(ctx, reviewee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{}, summary)

	for i, rating := range []int{5, 4, 3} {
		reviewer := testutil.CreateTraveler(t, db, []string{"r1", "r2", "r3"}[i], true)
		plan := testutil.CreatePlan(t, db, reviewee, "Rome")
		tb := testutil.CreateCompletedTrip(t, db, plan, reviewer)
		require.NoError(t, store.Reviews().Create(ctx, &models.Review{
			TravelBuddyID: tb.ID, ReviewerID: reviewer.ID, RevieweeID: reviewee.ID, Rating: rating,
		}))
		if i == 0 {
			dup := store.Reviews().Create(ctx, &models.Review{
				TravelBuddyID: tb.ID, ReviewerID: reviewer.ID, RevieweeID: reviewee.ID, Rating: 1,
			})
			assert.Equal(t, 409, models.HTTPStatus(dup))
		}
	}

	summary, err = store.Reviews().RatingSummary(ctx, reviewee.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, summary.Average, 0.0001)
	assert.Equal(t, 3, summary.Count)

	received, total, err := store.Reviews().ListByReviewee(ctx, reviewee.ID, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, received, 3)
}

func TestTravelPlanRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	owner := testutil.CreateTraveler(t, db, "owner", true)
	testutil.CreatePlan(t, db, owner, "Lisbon")
	testutil.CreatePlan(t, db, owner, "Porto")
	done := testutil.CreatePlan(t, db, owner, "Lisbon coast")
	ok, err := store.TravelPlans().MarkCompleted(ctx, done.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.TravelPlans().MarkCompleted(ctx, done.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	plans, total, err := store.TravelPlans().List(ctx, models.TravelPlanFilter{SearchTerm: "lisbon"}, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, plans, 2)

	open := false
	plans, total, err = store.TravelPlans().List(ctx, models.TravelPlanFilter{SearchTerm: "lisbon", IsCompleted: &open}, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, plans, 1)
	require.NotNil(t, plans[0].Traveler)
	assert.Equal(t, "owner", plans[0].Traveler.Name)

	high := 2000.0
	_, total, err = store.TravelPlans().List(ctx, models.TravelPlanFilter{BudgetMin: &high}, models.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = store.TravelPlans().List(ctx, models.TravelPlanFilter{}, models.ListOptions{Limit: 1, SortBy: "destination", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestDashboardRepository_PlansPerMonth(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db, StoreOptions{})
	ctx := context.Background()

	owner := testutil.CreateTraveler(t, db, "owner", true)
	for _, created := range []time.Time{
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	} {
		plan := testutil.CreatePlan(t, db, owner, "Anywhere")
		require.NoError(t, db.Model(plan).UpdateColumn("created_at", created).Error)
	}

	months, err := store.Dashboard().PlansPerMonth(ctx, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []models.MonthlyCount{{Month: "2026-01", Count: 2}, {Month: "2026-03", Count: 1}}, months)
}
