package service

import (
	"context"
	"errors"
	"testing"

	"travelbuddy/internal/models"
)

type stubSubscriptionPlanRepo struct {
	createFn func(ctx context.Context, plan *models.SubscriptionPlan) error
	getFn    func(ctx context.Context, id uint) (*models.SubscriptionPlan, error)
	listFn   func(ctx context.Context) ([]models.SubscriptionPlan, error)
	updateFn func(ctx context.Context, id uint, fields map[string]any) error
	deleteFn func(ctx context.Context, id uint) error
}

func (s *stubSubscriptionPlanRepo) Create(ctx context.Context, plan *models.SubscriptionPlan) error {
	if s.createFn != nil {
		return s.createFn(ctx, plan)
	}
	return nil
}

func (s *stubSubscriptionPlanRepo) GetByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, models.NewNotFoundError("SubscriptionPlan", id)
}

func (s *stubSubscriptionPlanRepo) GetByName(context.Context, string) (*models.SubscriptionPlan, error) {
	return nil, nil
}

func (s *stubSubscriptionPlanRepo) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubSubscriptionPlanRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, fields)
	}
	return nil
}

func (s *stubSubscriptionPlanRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func TestSubscriptionPlanCreate(t *testing.T) {
	var created *models.SubscriptionPlan
	repo := &stubSubscriptionPlanRepo{
		createFn: func(_ context.Context, plan *models.SubscriptionPlan) error {
			plan.ID = 7
			created = plan
			return nil
		},
	}
	svc := NewSubscriptionPlanService(repo)

	plan, err := svc.Create(context.Background(), SubscriptionPlanInput{
		Name:           "  Monthly ",
		Price:          9.99,
		DurationInDays: 30,
		Features:       []string{"Unlimited requests", " ", "unlimited requests", "Verified badge"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created == nil || plan.ID != 7 {
		t.Fatalf("expected repository create to assign id, got %+v", plan)
	}
	if plan.Name != "Monthly" {
		t.Fatalf("expected trimmed name, got %q", plan.Name)
	}
	if len(plan.Features) != 2 {
		t.Fatalf("expected 2 cleaned features, got %v", plan.Features)
	}
}

func TestSubscriptionPlanCreate_Validation(t *testing.T) {
	repo := &stubSubscriptionPlanRepo{
		createFn: func(context.Context, *models.SubscriptionPlan) error {
			t.Fatal("create must not be called for invalid input")
			return nil
		},
	}
	svc := NewSubscriptionPlanService(repo)

	for _, in := range []SubscriptionPlanInput{
		{Name: "", Price: 10, DurationInDays: 30},
		{Name: "Free", Price: -1, DurationInDays: 30},
		{Name: "Zero", Price: 10, DurationInDays: 0},
	} {
		_, err := svc.Create(context.Background(), in)
		if !models.HasCode(err, models.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestSubscriptionPlanUpdate(t *testing.T) {
	stored := &models.SubscriptionPlan{ID: 3, Name: "Monthly", Price: 9.99, DurationInDays: 30}
	var gotFields map[string]any
	repo := &stubSubscriptionPlanRepo{
		getFn: func(_ context.Context, id uint) (*models.SubscriptionPlan, error) {
			copied := *stored
			return &copied, nil
		},
		updateFn: func(_ context.Context, id uint, fields map[string]any) error {
			gotFields = fields
			return nil
		},
	}
	svc := NewSubscriptionPlanService(repo)

	price := 12.5
	if _, err := svc.Update(context.Background(), 3, SubscriptionPlanUpdate{Price: &price}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(gotFields) != 1 || gotFields["price"] != 12.5 {
		t.Fatalf("expected only price to change, got %v", gotFields)
	}

	zero := 0
	gotFields = nil
	_, err := svc.Update(context.Background(), 3, SubscriptionPlanUpdate{DurationInDays: &zero})
	if !models.HasCode(err, models.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gotFields != nil {
		t.Fatalf("update must not run after failed validation")
	}
}

func TestSubscriptionPlanListAndDelete(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &stubSubscriptionPlanRepo{
		listFn: func(context.Context) ([]models.SubscriptionPlan, error) {
			return []models.SubscriptionPlan{{ID: 1, Name: "Monthly"}, {ID: 2, Name: "Yearly"}}, nil
		},
		deleteFn: func(context.Context, uint) error { return repoErr },
	}
	svc := NewSubscriptionPlanService(repo)

	plans, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}

	if err := svc.Delete(context.Background(), 1); !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}

	if _, err := svc.Get(context.Background(), 99); !models.HasCode(err, models.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
