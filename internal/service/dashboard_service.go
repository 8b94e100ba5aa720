package service

import (
	"context"
	"time"

	"travelbuddy/internal/cache"
	"travelbuddy/internal/featureflags"
	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"

	"golang.org/x/sync/errgroup"
)

// plansPerMonthWindow is how far back the admin plan histogram reaches.
const plansPerMonthWindow = 12

// DashboardService computes read-only rollups for travelers and admins.
type DashboardService struct {
	store repository.Store
	flags *featureflags.Manager
	now   func() time.Time
}

// NewDashboardService returns a new DashboardService. A nil flag manager disables caching.
func NewDashboardService(store repository.Store, flags *featureflags.Manager) *DashboardService {
	return &DashboardService{
		store: store,
		flags: flags,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardService) cached(userID uint) bool {
	return s.flags != nil && s.flags.Enabled(featureflags.CachedDashboards, userID)
}

// Traveler returns the caller's dashboard.
func (s *DashboardService) Traveler(ctx context.Context, identity models.Identity) (*models.TravelerDashboard, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}

	var out models.TravelerDashboard
	load := func() error {
		d, err := s.travelerDashboard(ctx, caller)
		if err != nil {
			return err
		}
		out = *d
		return nil
	}
	if s.cached(identity.UserID) {
		err = cache.Aside(ctx, cache.TravelerDashboardKey(caller.ID), &out, cache.DashboardTTL, load)
	} else {
		err = load()
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) travelerDashboard(ctx context.Context, caller *models.Traveler) (*models.TravelerDashboard, error) {
	counts, err := s.store.Dashboard().TravelerCounts(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	asHost, err := s.store.TravelBuddies().PendingAsHost(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	asBuddy, err := s.store.TravelBuddies().PendingAsBuddy(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	sent, err := s.store.BuddyRequests().CountByStatusForRequester(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	return &models.TravelerDashboard{
		TotalPlans:            counts.Plans,
		ReceivedRequests:      counts.Received,
		PendingReceived:       counts.PendingReceived,
		JoinedTrips:           counts.JoinedTrips,
		PendingReviewsAsHost:  len(asHost),
		PendingReviewsAsBuddy: len(asBuddy),
		SentRequestsByStatus:  sent,
		AverageRating:         caller.AverageRating,
		TotalReviewsReceived:  caller.TotalReviews,
	}, nil
}

// Admin returns platform-wide statistics.
func (s *DashboardService) Admin(ctx context.Context, identity models.Identity) (*models.AdminDashboard, error) {
	var out models.AdminDashboard
	load := func() error {
		d, err := s.adminDashboard(ctx)
		if err != nil {
			return err
		}
		out = *d
		return nil
	}

	var err error
	if s.cached(identity.UserID) {
		err = cache.Aside(ctx, cache.AdminDashboardKey, &out, cache.DashboardTTL, load)
	} else {
		err = load()
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) adminDashboard(ctx context.Context) (*models.AdminDashboard, error) {
	repo := s.store.Dashboard()
	var d models.AdminDashboard

	since := s.now().AddDate(0, -(plansPerMonthWindow - 1), 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Travelers, err = repo.CountTravelers(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		d.Subscribers, err = repo.CountTravelers(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		d.Admins, err = repo.CountUsersByRole(gctx, models.RoleAdmin, models.RoleSuperAdmin)
		return err
	})
	g.Go(func() (err error) {
		d.TravelPlans, err = repo.CountTable(gctx, &models.TravelPlan{})
		return err
	})
	g.Go(func() (err error) {
		d.Trips, err = repo.CountTable(gctx, &models.TravelBuddy{})
		return err
	})
	g.Go(func() (err error) {
		d.BuddyRequests, err = repo.CountTable(gctx, &models.BuddyRequest{})
		return err
	})
	g.Go(func() (err error) {
		d.Revenue, err = s.store.Payments().TotalPaid(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.SubscriptionsByPlan, err = repo.SubscriptionsByPlan(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.PlansPerMonth, err = repo.PlansPerMonth(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		d.TripsByStatus, err = repo.TripsByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
