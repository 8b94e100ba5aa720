package service

import (
	"context"
	"testing"

	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reloadTraveler(t *testing.T, db *gorm.DB, id uint) models.Traveler {
	t.Helper()
	var traveler models.Traveler
	require.NoError(t, db.First(&traveler, id).Error)
	return traveler
}

func TestCreateReview_ResolvesRevieweeByPosition(t *testing.T) {
	db, store := newTestStore(t)
	host := testutil.CreateTraveler(t, db, "alice", true)
	buddy := testutil.CreateTraveler(t, db, "bob", true)
	stranger := testutil.CreateTraveler(t, db, "carol", true)
	plan := testutil.CreatePlan(t, db, host, "Cusco")
	trip := testutil.CreateCompletedTrip(t, db, plan, buddy)

	svc := NewReviewService(store)
	ctx := context.Background()

	hostReview, err := svc.CreateReview(ctx, testutil.Identity(host), trip.ID, ReviewInput{Rating: 5, Comment: "great company"})
	require.NoError(t, err)
	assert.Equal(t, buddy.ID, hostReview.RevieweeID)

	buddyReview, err := svc.CreateReview(ctx, testutil.Identity(buddy), trip.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, host.ID, buddyReview.RevieweeID)

	_, err = svc.CreateReview(ctx, testutil.Identity(stranger), trip.ID, ReviewInput{Rating: 3})
	requireCode(t, err, models.CodeForbidden)

	assert.Equal(t, 5.0, reloadTraveler(t, db, buddy.ID).AverageRating)
	assert.Equal(t, 4.0, reloadTraveler(t, db, host.ID).AverageRating)
	assert.Zero(t, reloadTraveler(t, db, stranger.ID).TotalReviews)
}

func TestCreateReview_SecondReviewConflicts(t *testing.T) {
	db, store := newTestStore(t)
	host := testutil.CreateTraveler(t, db, "alice", true)
	buddy := testutil.CreateTraveler(t, db, "bob", true)
	plan := testutil.CreatePlan(t, db, host, "Cusco")
	trip := testutil.CreateCompletedTrip(t, db, plan, buddy)

	svc := NewReviewService(store)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, testutil.Identity(host), trip.ID, ReviewInput{Rating: 2})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, testutil.Identity(host), trip.ID, ReviewInput{Rating: 5})
	requireCode(t, err, models.CodeConflict)

	reviewee := reloadTraveler(t, db, buddy.ID)
	assert.Equal(t, 1, reviewee.TotalReviews)
	assert.Equal(t, 2.0, reviewee.AverageRating)
}

func TestCreateReview_AverageOverAllReviews(t *testing.T) {
	db, store := newTestStore(t)
	host := testutil.CreateTraveler(t, db, "alice", true)
	svc := NewReviewService(store)

	// inserted in a different order than sorted to show order does not matter
	for i, rating := range []int{4, 3, 5} {
		buddy := testutil.CreateTraveler(t, db, []string{"bob", "carol", "dave"}[i], true)
		plan := testutil.CreatePlan(t, db, host, "Trip")
		trip := testutil.CreateCompletedTrip(t, db, plan, buddy)
		_, err := svc.CreateReview(context.Background(), testutil.Identity(buddy), trip.ID, ReviewInput{Rating: rating})
		require.NoError(t, err)
	}

	reloaded := reloadTraveler(t, db, host.ID)
	assert.Equal(t, 4.0, reloaded.AverageRating)
	assert.Equal(t, 3, reloaded.TotalReviews)
}

func TestCreateReview_RatingValidatedBeforeStoreAccess(t *testing.T) {
	// a nil store panics on any access
	svc := NewReviewService(nil)
	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(context.Background(), models.Identity{Email: "x@example.com"}, 1, ReviewInput{Rating: rating})
		requireCode(t, err, models.CodeValidation)
		assert.Contains(t, err.Error(), "Rating must be between 1 and 5")
	}
}

func TestCreateReview_RequiresCompletedTrip(t *testing.T) {
	db, store := newTestStore(t)
	host := testutil.CreateTraveler(t, db, "alice", true)
	buddy := testutil.CreateTraveler(t, db, "bob", true)
	plan := testutil.CreatePlan(t, db, host, "Cusco")
	active := models.TravelBuddy{TravelPlanID: plan.ID, BuddyID: buddy.ID, Status: models.TravelBuddyStatusActive, JoinedAt: plan.CreatedAt}
	require.NoError(t, db.Create(&active).Error)

	svc := NewReviewService(store)
	_, err := svc.CreateReview(context.Background(), testutil.Identity(host), active.ID, ReviewInput{Rating: 5})
	requireCode(t, err, models.CodeConflict)

	_, err = svc.CreateReview(context.Background(), testutil.Identity(host), 9999, ReviewInput{Rating: 5})
	requireCode(t, err, models.CodeNotFound)
}

func TestCreateReview_RecomputeFailureRollsBackReview(t *testing.T) {
	db, store := newTestStore(t)
	host := testutil.CreateTraveler(t, db, "alice", true)
	buddy := testutil.CreateTraveler(t, db, "bob", true)
	plan := testutil.CreatePlan(t, db, host, "Cusco")
	trip := testutil.CreateCompletedTrip(t, db, plan, buddy)

	_, err := NewReviewService(ratingFailingStore{store}).CreateReview(context.Background(), testutil.Identity(host), trip.ID, ReviewInput{Rating: 5})
	require.ErrorIs(t, err, errInjected)

	var n int64
	require.NoError(t, db.Model(&models.Review{}).Count(&n).Error)
	assert.Zero(t, n)

	// nothing is left behind to block a retry
	_, err = NewReviewService(store).CreateReview(context.Background(), testutil.Identity(host), trip.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)
}

func TestPendingReviews_ExcludeOnlyTheRecordedDirection(t *testing.T) {
	db, store := newTestStore(t)
	host := testutil.CreateTraveler(t, db, "alice", true)
	buddy := testutil.CreateTraveler(t, db, "bob", true)
	plan := testutil.CreatePlan(t, db, host, "Cusco")
	trip := testutil.CreateCompletedTrip(t, db, plan, buddy)

	svc := NewReviewService(store)
	ctx := context.Background()

	asHost, err := svc.PendingAsHost(ctx, testutil.Identity(host))
	require.NoError(t, err)
	require.Len(t, asHost, 1)
	assert.Equal(t, trip.ID, asHost[0].TravelBuddyID)
	assert.Equal(t, models.ReviewRoleHost, asHost[0].Role)
	require.NotNil(t, asHost[0].Reviewee)
	assert.Equal(t, buddy.ID, asHost[0].Reviewee.ID)
	assert.Equal(t, "Cusco", asHost[0].Destination)

	asBuddy, err := svc.PendingAsBuddy(ctx, testutil.Identity(buddy))
	require.NoError(t, err)
	require.Len(t, asBuddy, 1)
	require.NotNil(t, asBuddy[0].Reviewee)
	assert.Equal(t, host.ID, asBuddy[0].Reviewee.ID)

	_, err = svc.CreateReview(ctx, testutil.Identity(host), trip.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)

	asHost, err = svc.PendingAsHost(ctx, testutil.Identity(host))
	require.NoError(t, err)
	assert.Empty(t, asHost)

	both, err := svc.Pending(ctx, testutil.Identity(buddy))
	require.NoError(t, err)
	assert.Empty(t, both.AsHost)
	assert.Len(t, both.AsBuddy, 1)

	received, total, err := svc.ListReceived(ctx, testutil.Identity(buddy), models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, received, 1)
	assert.Equal(t, 4, received[0].Rating)

	given, total, err := svc.ListGiven(ctx, testutil.Identity(host), models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, given, 1)

	public, _, err := svc.ListForTraveler(ctx, buddy.ID, models.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, public, 1)
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, roundRating(13.0/3.0))
	assert.Equal(t, 3.7, roundRating(11.0/3.0))
	assert.Equal(t, 0.0, roundRating(0))
}
