package service

import (
	"context"
	"strings"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"
)

// TravelPlanUpdate holds the plan fields an owner may change. Nil fields are left alone.
type TravelPlanUpdate struct {
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	BudgetMin   *float64
	BudgetMax   *float64
	TravelType  *models.TravelType
	Description *string
}

// TravelPlanService provides travel plan business logic.
type TravelPlanService struct {
	store repository.Store
	log   *observability.DomainLogger
}

// NewTravelPlanService returns a new TravelPlanService.
func NewTravelPlanService(store repository.Store) *TravelPlanService {
	return &TravelPlanService{
		store: store,
		log:   observability.NewDomainLogger("travel_plan"),
	}
}

// Create publishes a plan for a subscribed traveler.
func (s *TravelPlanService) Create(ctx context.Context, identity models.Identity, in validation.TravelPlanInput) (*models.TravelPlan, error) {
	in.Destination = strings.TrimSpace(in.Destination)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.ValidateTravelPlan(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	owner, err := subscribedTraveler(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}

	plan := &models.TravelPlan{
		TravelerID:  owner.ID,
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
		TravelType:  in.TravelType,
		Description: in.Description,
	}
	if err := s.store.TravelPlans().Create(ctx, plan); err != nil {
		return nil, err
	}

	s.log.LogEvent(ctx, "travel plan created", map[string]any{
		"travel_plan_id": plan.ID,
		"traveler_id":    owner.ID,
	})
	return s.store.TravelPlans().GetByID(ctx, plan.ID)
}

// Get returns a plan with its owner.
func (s *TravelPlanService) Get(ctx context.Context, id uint) (*models.TravelPlan, error) {
	return s.store.TravelPlans().GetByID(ctx, id)
}

// List searches all plans.
func (s *TravelPlanService) List(ctx context.Context, filter models.TravelPlanFilter, opts models.ListOptions) ([]models.TravelPlan, int64, error) {
	return s.store.TravelPlans().List(ctx, filter, opts)
}

// ListMine searches the caller's own plans.
func (s *TravelPlanService) ListMine(ctx context.Context, identity models.Identity, filter models.TravelPlanFilter, opts models.ListOptions) ([]models.TravelPlan, int64, error) {
	owner, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, 0, err
	}
	filter.TravelerID = owner.ID
	return s.store.TravelPlans().List(ctx, filter, opts)
}

func (s *TravelPlanService) ownedPlan(ctx context.Context, identity models.Identity, id uint) (*models.TravelPlan, error) {
	plan, err := s.store.TravelPlans().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	if !plan.IsOwnedBy(owner.ID) {
		return nil, models.NewForbiddenError("You can only modify your own travel plans")
	}
	return plan, nil
}

// Update changes an open plan owned by the caller.
func (s *TravelPlanService) Update(ctx context.Context, identity models.Identity, id uint, patch TravelPlanUpdate) (*models.TravelPlan, error) {
	plan, err := s.ownedPlan(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if plan.IsCompleted {
		return nil, models.NewConflictError("Completed travel plans cannot be changed")
	}

	merged := validation.TravelPlanInput{
		Destination: plan.Destination,
		StartDate:   plan.StartDate,
		EndDate:     plan.EndDate,
		BudgetMin:   plan.BudgetMin,
		BudgetMax:   plan.BudgetMax,
		TravelType:  plan.TravelType,
		Description: plan.Description,
	}
	fields := map[string]any{}
	if patch.Destination != nil {
		merged.Destination = strings.TrimSpace(*patch.Destination)
		fields["destination"] = merged.Destination
	}
	if patch.StartDate != nil {
		merged.StartDate = *patch.StartDate
		fields["start_date"] = merged.StartDate
	}
	if patch.EndDate != nil {
		merged.EndDate = *patch.EndDate
		fields["end_date"] = merged.EndDate
	}
	if patch.BudgetMin != nil {
		merged.BudgetMin = *patch.BudgetMin
		fields["budget_min"] = merged.BudgetMin
	}
	if patch.BudgetMax != nil {
		merged.BudgetMax = *patch.BudgetMax
		fields["budget_max"] = merged.BudgetMax
	}
	if patch.TravelType != nil {
		merged.TravelType = *patch.TravelType
		fields["travel_type"] = merged.TravelType
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
		fields["description"] = merged.Description
	}
	if err := validation.ValidateTravelPlan(merged); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.store.TravelPlans().Update(ctx, plan.ID, fields); err != nil {
		return nil, err
	}
	return s.store.TravelPlans().GetByID(ctx, plan.ID)
}

// Delete removes a plan nobody has joined, together with its requests.
func (s *TravelPlanService) Delete(ctx context.Context, identity models.Identity, id uint) error {
	plan, err := s.ownedPlan(ctx, identity, id)
	if err != nil {
		return err
	}

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if _, err := tx.TravelPlans().LockByID(ctx, plan.ID); err != nil {
			return err
		}
		buddies, err := tx.TravelBuddies().CountByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		if buddies > 0 {
			return models.NewConflictError("Travel plans with joined buddies cannot be deleted")
		}
		if err := tx.BuddyRequests().DeleteByPlan(ctx, plan.ID); err != nil {
			return err
		}
		return tx.TravelPlans().Delete(ctx, plan.ID)
	})
	if err != nil {
		return err
	}

	s.log.LogEvent(ctx, "travel plan deleted", map[string]any{"travel_plan_id": plan.ID})
	return nil
}
