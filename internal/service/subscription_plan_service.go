package service

import (
	"context"
	"strings"

	"travelbuddy/internal/cache"
	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"

	"gorm.io/datatypes"
)

// SubscriptionPlanInput is the writable part of a subscription plan.
type SubscriptionPlanInput struct {
	Name           string
	Price          float64
	DurationInDays int
	Features       []string
	Recommended    bool
	Color          string
}

// SubscriptionPlanUpdate holds optional plan changes.
type SubscriptionPlanUpdate struct {
	Name           *string
	Price          *float64
	DurationInDays *int
	Features       *[]string
	Recommended    *bool
	Color          *string
}

// SubscriptionPlanService manages the purchasable tiers.
type SubscriptionPlanService struct {
	planRepo repository.SubscriptionPlanRepository
}

// NewSubscriptionPlanService returns a new SubscriptionPlanService.
func NewSubscriptionPlanService(planRepo repository.SubscriptionPlanRepository) *SubscriptionPlanService {
	return &SubscriptionPlanService{planRepo: planRepo}
}

// List returns every plan, cheapest first, served from Redis when available.
func (s *SubscriptionPlanService) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := cache.Aside(ctx, cache.SubscriptionPlansKey, &plans, cache.SubscriptionPlansTTL, func() error {
		loaded, err := s.planRepo.List(ctx)
		if err != nil {
			return err
		}
		plans = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Get returns one plan.
func (s *SubscriptionPlanService) Get(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	return s.planRepo.GetByID(ctx, id)
}

// Create adds a plan.
func (s *SubscriptionPlanService) Create(ctx context.Context, in SubscriptionPlanInput) (*models.SubscriptionPlan, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.ValidateSubscriptionPlan(in.Name, in.Price, in.DurationInDays); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	plan := &models.SubscriptionPlan{
		Name:           in.Name,
		Price:          in.Price,
		DurationInDays: in.DurationInDays,
		Features:       datatypes.JSONSlice[string](cleanList(in.Features)),
		Recommended:    in.Recommended,
		Color:          strings.TrimSpace(in.Color),
	}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	cache.InvalidateSubscriptionPlans(ctx)
	return plan, nil
}

// Update applies patch to a plan.
func (s *SubscriptionPlanService) Update(ctx context.Context, id uint, patch SubscriptionPlanUpdate) (*models.SubscriptionPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		plan.Name = strings.TrimSpace(*patch.Name)
		fields["name"] = plan.Name
	}
	if patch.Price != nil {
		plan.Price = *patch.Price
		fields["price"] = plan.Price
	}
	if patch.DurationInDays != nil {
		plan.DurationInDays = *patch.DurationInDays
		fields["duration_in_days"] = plan.DurationInDays
	}
	if patch.Features != nil {
		plan.Features = datatypes.JSONSlice[string](cleanList(*patch.Features))
		fields["features"] = plan.Features
	}
	if patch.Recommended != nil {
		plan.Recommended = *patch.Recommended
		fields["recommended"] = plan.Recommended
	}
	if patch.Color != nil {
		plan.Color = strings.TrimSpace(*patch.Color)
		fields["color"] = plan.Color
	}
	if err := validation.ValidateSubscriptionPlan(plan.Name, plan.Price, plan.DurationInDays); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.planRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	cache.InvalidateSubscriptionPlans(ctx)
	return s.planRepo.GetByID(ctx, id)
}

// Delete retires a plan. Existing subscriptions keep referencing it.
func (s *SubscriptionPlanService) Delete(ctx context.Context, id uint) error {
	if err := s.planRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateSubscriptionPlans(ctx)
	return nil
}
