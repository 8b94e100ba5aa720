package service

import (
	"context"
	"errors"
	"testing"

	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*gorm.DB, repository.Store) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return db, repository.NewStore(db, repository.StoreOptions{})
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
}

var errInjected = errors.New("injected failure")

// rejectFailingStore fails the sibling rejection step of an acceptance, in
// and out of transactions.
type rejectFailingStore struct {
	repository.Store
}

func (s rejectFailingStore) BuddyRequests() repository.BuddyRequestRepository {
	return rejectFailingRepo{s.Store.BuddyRequests()}
}

func (s rejectFailingStore) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Atomic(ctx, func(tx repository.Store) error {
		return fn(rejectFailingStore{tx})
	})
}

type rejectFailingRepo struct {
	repository.BuddyRequestRepository
}

func (rejectFailingRepo) RejectPending(context.Context, []uint) (int64, error) {
	return 0, errInjected
}

// ratingFailingStore fails the rating recompute after the review insert.
type ratingFailingStore struct {
	repository.Store
}

func (s ratingFailingStore) Travelers() repository.TravelerRepository {
	return ratingFailingRepo{s.Store.Travelers()}
}

func (s ratingFailingStore) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Atomic(ctx, func(tx repository.Store) error {
		return fn(ratingFailingStore{tx})
	})
}

type ratingFailingRepo struct {
	repository.TravelerRepository
}

func (ratingFailingRepo) SetRating(context.Context, uint, models.RatingSummary) error {
	return errInjected
}
