package repository

import (
	"context"

	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByReviewee(ctx context.Context, revieweeID uint, opts models.ListOptions) ([]models.Review, int64, error)
	ListByReviewer(ctx context.Context, reviewerID uint, opts models.ListOptions) ([]models.Review, int64, error)
	// RatingSummary aggregates every review the traveler received.
	RatingSummary(ctx context.Context, revieweeID uint) (models.RatingSummary, error)
}

type reviewRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return createError(err, "You have already reviewed this person for this trip")
	}
	return nil
}

func (r *reviewRepository) list(ctx context.Context, column string, id uint, preload string, opts models.ListOptions) ([]models.Review, int64, error) {
	q := r.reader.WithContext(ctx).Model(&models.Review{}).Where(column+" = ?", id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var reviews []models.Review
	if err := paginate(q.Preload(preload).Preload("TravelBuddy.TravelPlan"), "reviews", opts, "created_at", "rating").
		Find(&reviews).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID uint, opts models.ListOptions) ([]models.Review, int64, error) {
	return r.list(ctx, "reviewee_id", revieweeID, "Reviewer", opts)
}

func (r *reviewRepository) ListByReviewer(ctx context.Context, reviewerID uint, opts models.ListOptions) ([]models.Review, int64, error) {
	return r.list(ctx, "reviewer_id", reviewerID, "Reviewee", opts)
}

func (r *reviewRepository) RatingSummary(ctx context.Context, revieweeID uint) (models.RatingSummary, error) {
	var row struct {
		Average float64
		Count   int
	}
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("reviewee_id = ?", revieweeID).
		Scan(&row).Error; err != nil {
		return models.RatingSummary{}, models.NewInternalError(err)
	}
	return models.RatingSummary{Average: row.Average, Count: row.Count}, nil
}
