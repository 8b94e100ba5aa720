package repository

import (
	"context"
	"strings"

	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// TravelPlanRepository defines persistence operations for travel plans.
type TravelPlanRepository interface {
	Create(ctx context.Context, plan *models.TravelPlan) error
	GetByID(ctx context.Context, id uint) (*models.TravelPlan, error)
	// LockByID loads the plan with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id uint) (*models.TravelPlan, error)
	List(ctx context.Context, filter models.TravelPlanFilter, opts models.ListOptions) ([]models.TravelPlan, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	// MarkCompleted flips is_completed only when it is still false and
	// reports whether a row changed.
	MarkCompleted(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type travelPlanRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

func (r *travelPlanRepository) Create(ctx context.Context, plan *models.TravelPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return createError(err, "Travel plan already exists")
	}
	return nil
}

func (r *travelPlanRepository) GetByID(ctx context.Context, id uint) (*models.TravelPlan, error) {
	var plan models.TravelPlan
	if err := r.db.WithContext(ctx).Preload("Traveler").First(&plan, id).Error; err != nil {
		return nil, notFoundOr(err, "Travel plan", id)
	}
	return &plan, nil
}

func (r *travelPlanRepository) LockByID(ctx context.Context, id uint) (*models.TravelPlan, error) {
	var plan models.TravelPlan
	if err := forUpdate(r.db.WithContext(ctx)).First(&plan, id).Error; err != nil {
		return nil, notFoundOr(err, "Travel plan", id)
	}
	return &plan, nil
}

func (r *travelPlanRepository) List(ctx context.Context, filter models.TravelPlanFilter, opts models.ListOptions) ([]models.TravelPlan, int64, error) {
	q := r.reader.WithContext(ctx).Model(&models.TravelPlan{})

	if filter.SearchTerm != "" {
		pattern := likePattern(filter.SearchTerm)
		q = q.Where("LOWER(travel_plans.destination) LIKE ? OR LOWER(travel_plans.description) LIKE ?", pattern, pattern)
	}
	if d := strings.TrimSpace(filter.Destination); d != "" {
		q = q.Where("LOWER(travel_plans.destination) LIKE ?", likePattern(d))
	}
	if filter.TravelType != "" {
		q = q.Where("travel_plans.travel_type = ?", filter.TravelType)
	}
	if filter.BudgetMin != nil {
		q = q.Where("travel_plans.budget_max >= ?", *filter.BudgetMin)
	}
	if filter.BudgetMax != nil {
		q = q.Where("travel_plans.budget_min <= ?", *filter.BudgetMax)
	}
	if filter.StartAfter != nil {
		q = q.Where("travel_plans.start_date >= ?", *filter.StartAfter)
	}
	if filter.EndBefore != nil {
		q = q.Where("travel_plans.end_date <= ?", *filter.EndBefore)
	}
	if filter.TravelerID != 0 {
		q = q.Where("travel_plans.traveler_id = ?", filter.TravelerID)
	}
	if filter.IsCompleted != nil {
		q = q.Where("travel_plans.is_completed = ?", *filter.IsCompleted)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var plans []models.TravelPlan
	if err := paginate(q.Preload("Traveler"), "travel_plans", opts, "created_at", "start_date", "budget_min", "destination").
		Find(&plans).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return plans, total, nil
}

func (r *travelPlanRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.TravelPlan{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Travel plan", id)
	}
	return nil
}

func (r *travelPlanRepository) MarkCompleted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.TravelPlan{}).
		Where("id = ? AND is_completed = ?", id, false).
		Update("is_completed", true)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *travelPlanRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.TravelPlan{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Travel plan", id)
	}
	return nil
}
