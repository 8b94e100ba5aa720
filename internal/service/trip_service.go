package service

import (
	"context"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// CompletionResult is a completed plan together with its now COMPLETED buddies.
type CompletionResult struct {
	Plan    *models.TravelPlan   `json:"plan"`
	Buddies []models.TravelBuddy `json:"buddies"`
}

// TripService closes trips and exposes the accepted buddy relationships.
type TripService struct {
	store repository.Store
	log   *observability.DomainLogger
	now   func() time.Time
}

// NewTripService returns a new TripService.
func NewTripService(store repository.Store) *TripService {
	return &TripService{
		store: store,
		log:   observability.NewDomainLogger("trip"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CompleteTravelPlan marks the caller's plan completed and moves every ACTIVE
// buddy to COMPLETED in the same transaction. Pending requests are left as is.
func (s *TripService) CompleteTravelPlan(ctx context.Context, identity models.Identity, planID uint) (result *CompletionResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TripService", "CompleteTravelPlan",
		attribute.Int64("travel_plan.id", int64(planID)),
	)
	defer func() { span.End(err) }()
	track := observability.TrackCascade("travel_plan_complete")
	defer func() { track(err) }()

	owner, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}

	var completed int64
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		plan, err := tx.TravelPlans().LockByID(ctx, planID)
		if err != nil {
			return notOwnedPlan(err)
		}
		if !plan.IsOwnedBy(owner.ID) {
			return models.NewNotFoundMessage("Travel plan not found or you are not the owner")
		}
		if plan.IsCompleted {
			return models.NewConflictError("This travel plan is already marked as completed")
		}

		ok, err := tx.TravelPlans().MarkCompleted(ctx, plan.ID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewConflictError("This travel plan is already marked as completed")
		}
		if completed, err = tx.TravelBuddies().CompleteActiveByPlan(ctx, plan.ID, s.now()); err != nil {
			return err
		}

		refreshed, err := tx.TravelPlans().GetByID(ctx, plan.ID)
		if err != nil {
			return err
		}
		buddies, err := tx.TravelBuddies().ListByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		result = &CompletionResult{Plan: refreshed, Buddies: buddies}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.TravelPlansCompleted.Inc()
	s.log.LogTransition(ctx, "travel_plan", planID, "OPEN", "COMPLETED", map[string]any{
		"buddies_completed": completed,
	})
	return result, nil
}

func notOwnedPlan(err error) error {
	if models.HasCode(err, models.CodeNotFound) {
		return models.NewNotFoundMessage("Travel plan not found or you are not the owner")
	}
	return err
}

// ListPlanBuddies returns the accepted buddies of a plan to its owner.
func (s *TripService) ListPlanBuddies(ctx context.Context, identity models.Identity, planID uint) ([]models.TravelBuddy, error) {
	plan, err := s.store.TravelPlans().GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	if !plan.IsOwnedBy(caller.ID) {
		return nil, models.NewForbiddenError("Only plan owner can view its travel buddies")
	}
	return s.store.TravelBuddies().ListByPlan(ctx, planID)
}

// ListJoinedTrips returns the relationships in which the caller is the buddy.
func (s *TripService) ListJoinedTrips(ctx context.Context, identity models.Identity) ([]models.TravelBuddy, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	return s.store.TravelBuddies().ListByBuddy(ctx, caller.ID)
}
