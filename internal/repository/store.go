// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories and runs work atomically. Repositories
// obtained from the Store passed to an Atomic callback share its transaction.
type Store interface {
	Users() UserRepository
	Travelers() TravelerRepository
	TravelPlans() TravelPlanRepository
	BuddyRequests() BuddyRequestRepository
	TravelBuddies() TravelBuddyRepository
	Reviews() ReviewRepository
	SubscriptionPlans() SubscriptionPlanRepository
	Subscriptions() SubscriptionRepository
	Payments() PaymentRepository
	Dashboard() DashboardRepository

	// Atomic runs fn in a single transaction. Any error returned by fn rolls
	// everything back and is returned unchanged.
	Atomic(ctx context.Context, fn func(tx Store) error) error
	// AfterCommit defers fn until the surrounding transaction commits. Outside
	// a transaction fn runs immediately.
	AfterCommit(ctx context.Context, fn func(ctx context.Context))
}

// StoreOptions toggles optional behaviour of the gorm store.
type StoreOptions struct {
	// CacheTravelers serves traveler lookups by id through Redis.
	CacheTravelers bool
}

type gormStore struct {
	db     *gorm.DB
	reader *gorm.DB
	opts   StoreOptions
	inTx   bool
	hooks  *[]func(context.Context)
}

// NewStore returns a Store backed by db, reading from the replica when one is configured.
func NewStore(db *gorm.DB, opts StoreOptions) Store {
	return &gormStore{db: db, reader: readDB(db), opts: opts}
}

func (s *gormStore) Users() UserRepository {
	return &userRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) Travelers() TravelerRepository {
	return &travelerRepository{db: s.db, reader: s.reader, cached: s.opts.CacheTravelers && !s.inTx, store: s}
}

func (s *gormStore) TravelPlans() TravelPlanRepository {
	return &travelPlanRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) BuddyRequests() BuddyRequestRepository {
	return &buddyRequestRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) TravelBuddies() TravelBuddyRepository {
	return &travelBuddyRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) Reviews() ReviewRepository {
	return &reviewRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) SubscriptionPlans() SubscriptionPlanRepository {
	return &subscriptionPlanRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) Subscriptions() SubscriptionRepository {
	return &subscriptionRepository{db: s.db, reader: s.reader}
}

func (s *gormStore) Payments() PaymentRepository {
	return &paymentRepository{db: s.db}
}

func (s *gormStore) Dashboard() DashboardRepository {
	return &dashboardRepository{db: s.reader}
}

func (s *gormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		// nested calls join the outer transaction via a savepoint
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormStore{db: tx, reader: tx, opts: s.opts, inTx: true, hooks: s.hooks})
		})
	}

	var hooks []func(context.Context)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, reader: tx, opts: s.opts, inTx: true, hooks: &hooks})
	})
	if err != nil {
		return err
	}
	for _, h := range hooks {
		h(ctx)
	}
	return nil
}

func (s *gormStore) AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if s.inTx && s.hooks != nil {
		*s.hooks = append(*s.hooks, fn)
		return
	}
	fn(ctx)
}
