package repository

import (
	"context"
	"errors"
	"time"

	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// TravelBuddyRepository defines persistence operations for accepted buddy relationships.
type TravelBuddyRepository interface {
	Create(ctx context.Context, buddy *models.TravelBuddy) error
	GetByID(ctx context.Context, id uint) (*models.TravelBuddy, error)
	// FindByPlanAndBuddy returns (nil, nil) when the pair has no relationship.
	FindByPlanAndBuddy(ctx context.Context, planID, buddyID uint) (*models.TravelBuddy, error)
	ListByPlan(ctx context.Context, planID uint) ([]models.TravelBuddy, error)
	ListByBuddy(ctx context.Context, buddyID uint) ([]models.TravelBuddy, error)
	CountByPlan(ctx context.Context, planID uint) (int64, error)
	// CompleteActiveByPlan moves every ACTIVE relationship on the plan to
	// COMPLETED and returns the number of rows changed.
	CompleteActiveByPlan(ctx context.Context, planID uint, at time.Time) (int64, error)
	// PendingAsHost returns COMPLETED relationships on plans owned by
	// travelerID that travelerID has not reviewed.
	PendingAsHost(ctx context.Context, travelerID uint) ([]models.TravelBuddy, error)
	// PendingAsBuddy returns COMPLETED relationships where travelerID is the
	// buddy and has not reviewed the host.
	PendingAsBuddy(ctx context.Context, travelerID uint) ([]models.TravelBuddy, error)
}

type travelBuddyRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

const notReviewedBy = "NOT EXISTS (SELECT 1 FROM reviews WHERE reviews.travel_buddy_id = travel_buddies.id AND reviews.reviewer_id = ?)"

func (r *travelBuddyRepository) Create(ctx context.Context, buddy *models.TravelBuddy) error {
	if err := r.db.WithContext(ctx).Create(buddy).Error; err != nil {
		return createError(err, "You are already a buddy for this travel plan")
	}
	return nil
}

func (r *travelBuddyRepository) GetByID(ctx context.Context, id uint) (*models.TravelBuddy, error) {
	var buddy models.TravelBuddy
	if err := r.db.WithContext(ctx).Preload("TravelPlan").First(&buddy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Travel buddy relationship not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &buddy, nil
}

func (r *travelBuddyRepository) FindByPlanAndBuddy(ctx context.Context, planID, buddyID uint) (*models.TravelBuddy, error) {
	var buddy models.TravelBuddy
	err := r.db.WithContext(ctx).
		Where("travel_plan_id = ? AND buddy_id = ?", planID, buddyID).
		First(&buddy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &buddy, nil
}

func (r *travelBuddyRepository) ListByPlan(ctx context.Context, planID uint) ([]models.TravelBuddy, error) {
	var buddies []models.TravelBuddy
	if err := r.db.WithContext(ctx).
		Preload("Buddy").
		Where("travel_plan_id = ?", planID).
		Order("joined_at ASC").
		Find(&buddies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return buddies, nil
}

func (r *travelBuddyRepository) ListByBuddy(ctx context.Context, buddyID uint) ([]models.TravelBuddy, error) {
	var buddies []models.TravelBuddy
	if err := r.reader.WithContext(ctx).
		Preload("TravelPlan").
		Preload("TravelPlan.Traveler").
		Where("buddy_id = ?", buddyID).
		Order("joined_at DESC").
		Find(&buddies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return buddies, nil
}

func (r *travelBuddyRepository) CountByPlan(ctx context.Context, planID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TravelBuddy{}).
		Where("travel_plan_id = ?", planID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *travelBuddyRepository) CompleteActiveByPlan(ctx context.Context, planID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.TravelBuddy{}).
		Where("travel_plan_id = ? AND status = ?", planID, models.TravelBuddyStatusActive).
		Updates(map[string]any{
			"status":       models.TravelBuddyStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *travelBuddyRepository) PendingAsHost(ctx context.Context, travelerID uint) ([]models.TravelBuddy, error) {
	var buddies []models.TravelBuddy
	if err := r.reader.WithContext(ctx).
		Preload("TravelPlan").
		Preload("Buddy").
		Joins("JOIN travel_plans ON travel_plans.id = travel_buddies.travel_plan_id").
		Where("travel_plans.traveler_id = ?", travelerID).
		Where("travel_buddies.status = ?", models.TravelBuddyStatusCompleted).
		Where("travel_buddies.buddy_id <> ?", travelerID).
		Where(notReviewedBy, travelerID).
		Order("travel_buddies.completed_at DESC").
		Find(&buddies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return buddies, nil
}

func (r *travelBuddyRepository) PendingAsBuddy(ctx context.Context, travelerID uint) ([]models.TravelBuddy, error) {
	var buddies []models.TravelBuddy
	if err := r.reader.WithContext(ctx).
		Preload("TravelPlan").
		Preload("TravelPlan.Traveler").
		Joins("JOIN travel_plans ON travel_plans.id = travel_buddies.travel_plan_id").
		Where("travel_buddies.buddy_id = ?", travelerID).
		Where("travel_buddies.status = ?", models.TravelBuddyStatusCompleted).
		Where("travel_plans.traveler_id <> ?", travelerID).
		Where(notReviewedBy, travelerID).
		Order("travel_buddies.completed_at DESC").
		Find(&buddies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return buddies, nil
}
