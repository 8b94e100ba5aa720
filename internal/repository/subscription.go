package repository

import (
	"context"
	"errors"
	"time"

	"travelbuddy/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionPlanRepository defines persistence operations for subscription plans.
type SubscriptionPlanRepository interface {
	Create(ctx context.Context, plan *models.SubscriptionPlan) error
	GetByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error)
	// GetByName returns (nil, nil) when no plan has the name.
	GetByName(ctx context.Context, name string) (*models.SubscriptionPlan, error)
	List(ctx context.Context) ([]models.SubscriptionPlan, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type subscriptionPlanRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

func (r *subscriptionPlanRepository) Create(ctx context.Context, plan *models.SubscriptionPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return createError(err, "A subscription plan with this name already exists")
	}
	return nil
}

func (r *subscriptionPlanRepository) GetByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, notFoundOr(err, "Subscription plan", id)
	}
	return &plan, nil
}

func (r *subscriptionPlanRepository) GetByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &plan, nil
}

func (r *subscriptionPlanRepository) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	if err := r.reader.WithContext(ctx).Order("price ASC, id ASC").Find(&plans).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

func (r *subscriptionPlanRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.SubscriptionPlan{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return createError(res.Error, "A subscription plan with this name already exists")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription plan", id)
	}
	return nil
}

func (r *subscriptionPlanRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.SubscriptionPlan{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription plan", id)
	}
	return nil
}

// SubscriptionRepository defines persistence operations for subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id uint) (*models.Subscription, error)
	LockByID(ctx context.Context, id uint) (*models.Subscription, error)
	// FindOpenByTraveler returns the traveler's PENDING or ACTIVE
	// subscription, or (nil, nil) when there is none.
	FindOpenByTraveler(ctx context.Context, travelerID uint) (*models.Subscription, error)
	// LatestByTraveler returns (nil, nil) when the traveler never subscribed.
	LatestByTraveler(ctx context.Context, travelerID uint) (*models.Subscription, error)
	ListByStatus(ctx context.Context, status models.SubscriptionStatus, opts models.ListOptions) ([]models.Subscription, int64, error)
	Activate(ctx context.Context, id uint, start, end time.Time) error
	// ExpireEnded marks ACTIVE subscriptions whose end date passed as EXPIRED
	// and returns the affected traveler ids.
	ExpireEnded(ctx context.Context, now time.Time) ([]uint, error)
}

const openSubscriptionConflict = "You already have an active or pending subscription"

type subscriptionRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Omit("Payment").Create(sub).Error; err != nil {
		return createError(err, openSubscriptionConflict)
	}
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("SubscriptionPlan").
		Preload("Payment").
		First(&sub, id).Error; err != nil {
		return nil, notFoundOr(err, "Subscription", id)
	}
	return &sub, nil
}

func (r *subscriptionRepository) LockByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := forUpdate(r.db.WithContext(ctx)).First(&sub, id).Error; err != nil {
		return nil, notFoundOr(err, "Subscription", id)
	}
	return &sub, nil
}

func (r *subscriptionRepository) first(q *gorm.DB) (*models.Subscription, error) {
	var sub models.Subscription
	err := q.Preload("SubscriptionPlan").Preload("Payment").Order("created_at DESC").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindOpenByTraveler(ctx context.Context, travelerID uint) (*models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).
		Where("traveler_id = ? AND status IN ?", travelerID,
			[]models.SubscriptionStatus{models.SubscriptionStatusPending, models.SubscriptionStatusActive}))
}

func (r *subscriptionRepository) LatestByTraveler(ctx context.Context, travelerID uint) (*models.Subscription, error) {
	return r.first(r.reader.WithContext(ctx).Where("traveler_id = ?", travelerID))
}

func (r *subscriptionRepository) ListByStatus(ctx context.Context, status models.SubscriptionStatus, opts models.ListOptions) ([]models.Subscription, int64, error) {
	q := r.reader.WithContext(ctx).Model(&models.Subscription{}).Where("status = ?", status)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var subs []models.Subscription
	if err := paginate(q.Preload("Traveler").Preload("SubscriptionPlan"), "subscriptions", opts, "created_at", "end_date", "amount").
		Find(&subs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return subs, total, nil
}

func (r *subscriptionRepository) Activate(ctx context.Context, id uint, start, end time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.SubscriptionStatusActive,
			"start_date": start,
			"end_date":   end,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription", id)
	}
	return nil
}

func (r *subscriptionRepository) ExpireEnded(ctx context.Context, now time.Time) ([]uint, error) {
	var travelerIDs []uint
	q := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, now)
	if err := q.Distinct().Pluck("traveler_id", &travelerIDs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(travelerIDs) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return travelerIDs, nil
}

// PaymentRepository defines persistence operations for subscription payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	MarkStatus(ctx context.Context, id uint, status models.PaymentStatus, gatewayData datatypes.JSON) error
	// TotalPaid sums every PAID payment.
	TotalPaid(ctx context.Context) (float64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return createError(err, "Payment already exists for this subscription")
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, notFoundOr(err, "Payment", id)
	}
	return &payment, nil
}

func (r *paymentRepository) MarkStatus(ctx context.Context, id uint, status models.PaymentStatus, gatewayData datatypes.JSON) error {
	fields := map[string]any{"status": status}
	if len(gatewayData) > 0 {
		fields["gateway_data"] = gatewayData
	}
	res := r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Payment", id)
	}
	return nil
}

func (r *paymentRepository) TotalPaid(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", models.PaymentStatusPaid).
		Scan(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}
