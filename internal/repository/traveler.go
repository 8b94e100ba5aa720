package repository

import (
	"context"
	"errors"

	"travelbuddy/internal/cache"
	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// TravelerRepository defines persistence operations for traveler profiles.
type TravelerRepository interface {
	Create(ctx context.Context, traveler *models.Traveler) error
	GetByID(ctx context.Context, id uint) (*models.Traveler, error)
	// GetByEmail returns (nil, nil) when no traveler uses the email.
	GetByEmail(ctx context.Context, email string) (*models.Traveler, error)
	LockByID(ctx context.Context, id uint) (*models.Traveler, error)
	List(ctx context.Context, filter models.TravelerFilter, opts models.ListOptions) ([]models.Traveler, int64, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]any) error
	SetSubscribed(ctx context.Context, id uint, subscribed bool) error
	SetRating(ctx context.Context, id uint, summary models.RatingSummary) error
	SoftDelete(ctx context.Context, id uint) error
}

type travelerRepository struct {
	db     *gorm.DB
	reader *gorm.DB
	cached bool
	store  Store
}

func (r *travelerRepository) Create(ctx context.Context, traveler *models.Traveler) error {
	traveler.Email = normalizeEmail(traveler.Email)
	if err := r.db.WithContext(ctx).Create(traveler).Error; err != nil {
		return createError(err, "A traveler with this email already exists")
	}
	return nil
}

func (r *travelerRepository) load(ctx context.Context, id uint) (*models.Traveler, error) {
	var traveler models.Traveler
	if err := r.db.WithContext(ctx).First(&traveler, id).Error; err != nil {
		return nil, notFoundOr(err, "Traveler", id)
	}
	return &traveler, nil
}

func (r *travelerRepository) GetByID(ctx context.Context, id uint) (*models.Traveler, error) {
	if !r.cached {
		return r.load(ctx, id)
	}

	var traveler models.Traveler
	err := cache.Aside(ctx, cache.TravelerKey(id), &traveler, cache.TravelerTTL, func() error {
		loaded, err := r.load(ctx, id)
		if err != nil {
			return err
		}
		traveler = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &traveler, nil
}

func (r *travelerRepository) GetByEmail(ctx context.Context, email string) (*models.Traveler, error) {
	var traveler models.Traveler
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&traveler).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &traveler, nil
}

func (r *travelerRepository) LockByID(ctx context.Context, id uint) (*models.Traveler, error) {
	var traveler models.Traveler
	if err := forUpdate(r.db.WithContext(ctx)).First(&traveler, id).Error; err != nil {
		return nil, notFoundOr(err, "Traveler", id)
	}
	return &traveler, nil
}

func (r *travelerRepository) List(ctx context.Context, filter models.TravelerFilter, opts models.ListOptions) ([]models.Traveler, int64, error) {
	q := r.reader.WithContext(ctx).Model(&models.Traveler{}).Where("is_deleted = ?", false)
	if filter.SearchTerm != "" {
		pattern := likePattern(filter.SearchTerm)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(current_location) LIKE ?", pattern, pattern, pattern)
	}
	if filter.IsSubscribed != nil {
		q = q.Where("is_subscribed = ?", *filter.IsSubscribed)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var travelers []models.Traveler
	if err := paginate(q, "travelers", opts, "created_at", "name", "average_rating", "total_reviews").
		Find(&travelers).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return travelers, total, nil
}

func (r *travelerRepository) update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Traveler{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Traveler", id)
	}
	r.store.AfterCommit(ctx, func(ctx context.Context) {
		cache.InvalidateTraveler(ctx, id)
	})
	return nil
}

func (r *travelerRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.update(ctx, id, fields)
}

func (r *travelerRepository) SetSubscribed(ctx context.Context, id uint, subscribed bool) error {
	return r.update(ctx, id, map[string]any{"is_subscribed": subscribed})
}

func (r *travelerRepository) SetRating(ctx context.Context, id uint, summary models.RatingSummary) error {
	return r.update(ctx, id, map[string]any{
		"average_rating": summary.Average,
		"total_reviews":  summary.Count,
	})
}

func (r *travelerRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.update(ctx, id, map[string]any{"is_deleted": true})
}
