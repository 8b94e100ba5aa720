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

func requestStatus(t *testing.T, db *gorm.DB, id uint) models.BuddyRequestStatus {
	t.Helper()
	var req models.BuddyRequest
	require.NoError(t, db.First(&req, id).Error)
	return req.Status
}

func countBuddies(t *testing.T, db *gorm.DB, planID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.TravelBuddy{}).Where("travel_plan_id = ?", planID).Count(&n).Error)
	return n
}

func TestSendRequest_CreatesPendingRequest(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	requester := testutil.CreateTraveler(t, db, "bob", true)
	plan := testutil.CreatePlan(t, db, owner, "Lisbon")

	svc := NewBuddyRequestService(store)
	req, err := svc.SendRequest(context.Background(), testutil.Identity(requester), plan.ID, "  I know the city  ")
	require.NoError(t, err)

	assert.Equal(t, models.BuddyRequestStatusPending, req.Status)
	assert.Equal(t, requester.ID, req.RequesterID)
	assert.Equal(t, "I know the city", req.Message)
	assert.Equal(t, int64(0), countBuddies(t, db, plan.ID))
}

func TestSendRequest_Preconditions(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	subscribed := testutil.CreateTraveler(t, db, "bob", true)
	unsubscribed := testutil.CreateTraveler(t, db, "carol", false)
	deleted := testutil.CreateTraveler(t, db, "dave", true)
	require.NoError(t, db.Model(deleted).Update("is_deleted", true).Error)
	rejected := testutil.CreateTraveler(t, db, "erin", true)
	joined := testutil.CreateTraveler(t, db, "frank", true)

	plan := testutil.CreatePlan(t, db, owner, "Lisbon")
	completed := testutil.CreatePlan(t, db, owner, "Porto")
	require.NoError(t, db.Model(completed).Update("is_completed", true).Error)

	testutil.CreateRequest(t, db, plan, subscribed, models.BuddyRequestStatusPending)
	testutil.CreateRequest(t, db, plan, rejected, models.BuddyRequestStatusRejected)
	require.NoError(t, db.Create(&models.TravelBuddy{
		TravelPlanID: plan.ID,
		BuddyID:      joined.ID,
		Status:       models.TravelBuddyStatusActive,
		JoinedAt:     plan.CreatedAt,
	}).Error)

	svc := NewBuddyRequestService(store)

	tests := []struct {
		name   string
		caller *models.Traveler
		planID uint
		code   string
	}{
		{"plan not found", subscribed, 9999, models.CodeNotFound},
		{"not subscribed", unsubscribed, plan.ID, models.CodeUnauthorized},
		{"deleted traveler", deleted, plan.ID, models.CodeUnauthorized},
		{"own plan", owner, plan.ID, models.CodeValidation},
		{"completed plan", subscribed, completed.ID, models.CodeConflict},
		{"duplicate pending request", subscribed, plan.ID, models.CodeConflict},
		{"re-request after rejection", rejected, plan.ID, models.CodeConflict},
		{"already a buddy", joined, plan.ID, models.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendRequest(context.Background(), testutil.Identity(tt.caller), tt.planID, "hi")
			requireCode(t, err, tt.code)
		})
	}

	var total int64
	require.NoError(t, db.Model(&models.BuddyRequest{}).Count(&total).Error)
	assert.Equal(t, int64(2), total)
}

func TestRespond_AcceptRejectsSiblings(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	b := testutil.CreateTraveler(t, db, "bob", true)
	c := testutil.CreateTraveler(t, db, "carol", true)
	d := testutil.CreateTraveler(t, db, "dave", true)
	e := testutil.CreateTraveler(t, db, "erin", true)
	plan := testutil.CreatePlan(t, db, owner, "Kyoto")
	other := testutil.CreatePlan(t, db, owner, "Osaka")

	target := testutil.CreateRequest(t, db, plan, b, models.BuddyRequestStatusPending)
	sib1 := testutil.CreateRequest(t, db, plan, c, models.BuddyRequestStatusPending)
	sib2 := testutil.CreateRequest(t, db, plan, d, models.BuddyRequestStatusPending)
	earlier := testutil.CreateRequest(t, db, plan, e, models.BuddyRequestStatusRejected)
	elsewhere := testutil.CreateRequest(t, db, other, c, models.BuddyRequestStatusPending)

	svc := NewBuddyRequestService(store)
	res, err := svc.Respond(context.Background(), testutil.Identity(owner), target.ID, models.BuddyRequestStatusAccepted)
	require.NoError(t, err)

	assert.Equal(t, models.BuddyRequestStatusAccepted, res.Request.Status)
	require.NotNil(t, res.TravelBuddy)
	assert.Equal(t, b.ID, res.TravelBuddy.BuddyID)
	assert.Equal(t, models.TravelBuddyStatusActive, res.TravelBuddy.Status)
	assert.False(t, res.TravelBuddy.JoinedAt.IsZero())
	assert.Equal(t, int64(2), res.RejectedCount)
	require.Len(t, res.RejectedRequests, 2)
	assert.Equal(t, sib1.ID, res.RejectedRequests[0].ID)
	require.NotNil(t, res.RejectedRequests[0].Requester)
	assert.Equal(t, "carol", res.RejectedRequests[0].Requester.Name)
	assert.Contains(t, res.Message, "Rejected 2 other pending request(s)")

	assert.Equal(t, models.BuddyRequestStatusRejected, requestStatus(t, db, sib1.ID))
	assert.Equal(t, models.BuddyRequestStatusRejected, requestStatus(t, db, sib2.ID))
	assert.Equal(t, models.BuddyRequestStatusRejected, requestStatus(t, db, earlier.ID))
	assert.Equal(t, models.BuddyRequestStatusPending, requestStatus(t, db, elsewhere.ID))
	assert.Equal(t, int64(1), countBuddies(t, db, plan.ID))
}

func TestRespond_AcceptIsAllOrNothing(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	b := testutil.CreateTraveler(t, db, "bob", true)
	c := testutil.CreateTraveler(t, db, "carol", true)
	plan := testutil.CreatePlan(t, db, owner, "Kyoto")
	target := testutil.CreateRequest(t, db, plan, b, models.BuddyRequestStatusPending)
	sibling := testutil.CreateRequest(t, db, plan, c, models.BuddyRequestStatusPending)

	svc := NewBuddyRequestService(rejectFailingStore{store})
	_, err := svc.Respond(context.Background(), testutil.Identity(owner), target.ID, models.BuddyRequestStatusAccepted)
	require.ErrorIs(t, err, errInjected)

	assert.Equal(t, models.BuddyRequestStatusPending, requestStatus(t, db, target.ID))
	assert.Equal(t, models.BuddyRequestStatusPending, requestStatus(t, db, sibling.ID))
	assert.Equal(t, int64(0), countBuddies(t, db, plan.ID))

	// a retry against a healthy store goes through
	res, err := NewBuddyRequestService(store).Respond(context.Background(), testutil.Identity(owner), target.ID, models.BuddyRequestStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RejectedCount)
}

func TestRespond_RejectHasNoCascade(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	b := testutil.CreateTraveler(t, db, "bob", true)
	c := testutil.CreateTraveler(t, db, "carol", true)
	plan := testutil.CreatePlan(t, db, owner, "Kyoto")
	target := testutil.CreateRequest(t, db, plan, b, models.BuddyRequestStatusPending)
	sibling := testutil.CreateRequest(t, db, plan, c, models.BuddyRequestStatusPending)

	svc := NewBuddyRequestService(store)
	res, err := svc.Respond(context.Background(), testutil.Identity(owner), target.ID, models.BuddyRequestStatusRejected)
	require.NoError(t, err)

	assert.Equal(t, models.BuddyRequestStatusRejected, res.Request.Status)
	assert.Nil(t, res.TravelBuddy)
	assert.Zero(t, res.RejectedCount)
	assert.Equal(t, models.BuddyRequestStatusPending, requestStatus(t, db, sibling.ID))
	assert.Equal(t, int64(0), countBuddies(t, db, plan.ID))
}

func TestRespond_Guards(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	b := testutil.CreateTraveler(t, db, "bob", true)
	c := testutil.CreateTraveler(t, db, "carol", true)
	plan := testutil.CreatePlan(t, db, owner, "Kyoto")
	completed := testutil.CreatePlan(t, db, owner, "Nara")
	require.NoError(t, db.Model(completed).Update("is_completed", true).Error)

	pending := testutil.CreateRequest(t, db, plan, b, models.BuddyRequestStatusPending)
	done := testutil.CreateRequest(t, db, plan, c, models.BuddyRequestStatusRejected)
	onCompleted := testutil.CreateRequest(t, db, completed, b, models.BuddyRequestStatusPending)

	svc := NewBuddyRequestService(store)
	ctx := context.Background()

	_, err := svc.Respond(ctx, testutil.Identity(b), pending.ID, models.BuddyRequestStatusAccepted)
	requireCode(t, err, models.CodeForbidden)

	_, err = svc.Respond(ctx, testutil.Identity(owner), done.ID, models.BuddyRequestStatusAccepted)
	requireCode(t, err, models.CodeConflict)
	assert.Contains(t, err.Error(), "Request is already REJECTED")

	_, err = svc.Respond(ctx, testutil.Identity(owner), onCompleted.ID, models.BuddyRequestStatusAccepted)
	requireCode(t, err, models.CodeConflict)

	_, err = svc.Respond(ctx, testutil.Identity(owner), pending.ID, models.BuddyRequestStatusPending)
	requireCode(t, err, models.CodeValidation)

	_, err = svc.Respond(ctx, testutil.Identity(owner), 9999, models.BuddyRequestStatusAccepted)
	requireCode(t, err, models.CodeNotFound)

	// accepted requests are terminal too
	_, err = svc.Respond(ctx, testutil.Identity(owner), pending.ID, models.BuddyRequestStatusAccepted)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, testutil.Identity(owner), pending.ID, models.BuddyRequestStatusRejected)
	requireCode(t, err, models.CodeConflict)
	assert.Contains(t, err.Error(), "Request is already ACCEPTED")
}

func TestBuddyRequestQueries_Authorization(t *testing.T) {
	db, store := newTestStore(t)
	owner := testutil.CreateTraveler(t, db, "alice", true)
	requester := testutil.CreateTraveler(t, db, "bob", true)
	stranger := testutil.CreateTraveler(t, db, "carol", true)
	plan := testutil.CreatePlan(t, db, owner, "Kyoto")
	req := testutil.CreateRequest(t, db, plan, requester, models.BuddyRequestStatusPending)

	svc := NewBuddyRequestService(store)
	ctx := context.Background()

	got, err := svc.GetByID(ctx, testutil.Identity(requester), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)

	_, err = svc.GetByID(ctx, testutil.Identity(owner), req.ID)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, testutil.Identity(stranger), req.ID)
	requireCode(t, err, models.CodeForbidden)

	list, err := svc.ListByPlan(ctx, testutil.Identity(owner), plan.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByPlan(ctx, testutil.Identity(requester), plan.ID)
	requireCode(t, err, models.CodeForbidden)

	sent, err := svc.ListSent(ctx, testutil.Identity(requester))
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := svc.ListReceived(ctx, testutil.Identity(owner))
	require.NoError(t, err)
	assert.Len(t, received, 1)

	received, err = svc.ListReceived(ctx, testutil.Identity(stranger))
	require.NoError(t, err)
	assert.Empty(t, received)
}
