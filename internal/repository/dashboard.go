package repository

import (
	"context"
	"time"

	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository runs the read-only aggregate queries behind the dashboards.
type DashboardRepository interface {
	TravelerCounts(ctx context.Context, travelerID uint) (models.TravelerCounts, error)
	CountTravelers(ctx context.Context, subscribedOnly bool) (int64, error)
	CountUsersByRole(ctx context.Context, roles ...models.UserRole) (int64, error)
	CountTable(ctx context.Context, model any) (int64, error)
	SubscriptionsByPlan(ctx context.Context) ([]models.PlanSubscriptionCount, error)
	// PlansPerMonth counts plans created since the given time, bucketed by
	// creation month in UTC.
	PlansPerMonth(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
	TripsByStatus(ctx context.Context) (map[models.TravelBuddyStatus]int64, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func (r *dashboardRepository) TravelerCounts(ctx context.Context, travelerID uint) (models.TravelerCounts, error) {
	var counts models.TravelerCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.TravelPlan{}).Where("traveler_id = ?", travelerID).Count(&counts.Plans).Error; err != nil {
		return counts, models.NewInternalError(err)
	}

	received := func() *gorm.DB {
		return db.Model(&models.BuddyRequest{}).
			Joins("JOIN travel_plans ON travel_plans.id = buddy_requests.travel_plan_id").
			Where("travel_plans.traveler_id = ?", travelerID)
	}
	if err := received().Count(&counts.Received).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	if err := received().
		Where("buddy_requests.status = ?", models.BuddyRequestStatusPending).
		Count(&counts.PendingReceived).Error; err != nil {
		return counts, models.NewInternalError(err)
	}

	if err := db.Model(&models.TravelBuddy{}).Where("buddy_id = ?", travelerID).Count(&counts.JoinedTrips).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	return counts, nil
}

func (r *dashboardRepository) CountTravelers(ctx context.Context, subscribedOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Traveler{}).Where("is_deleted = ?", false)
	if subscribedOnly {
		q = q.Where("is_subscribed = ?", true)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *dashboardRepository) CountUsersByRole(ctx context.Context, roles ...models.UserRole) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role IN ? AND status <> ?", roles, models.UserStatusDeleted).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *dashboardRepository) CountTable(ctx context.Context, model any) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *dashboardRepository) SubscriptionsByPlan(ctx context.Context) ([]models.PlanSubscriptionCount, error) {
	var rows []models.PlanSubscriptionCount
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("subscription_plans.id AS plan_id, subscription_plans.name AS name, COUNT(subscriptions.id) AS count").
		Joins("JOIN subscription_plans ON subscription_plans.id = subscriptions.subscription_plan_id").
		Where("subscriptions.status = ?", models.SubscriptionStatusActive).
		Group("subscription_plans.id, subscription_plans.name").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *dashboardRepository) PlansPerMonth(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	var created []time.Time
	if err := r.db.WithContext(ctx).Model(&models.TravelPlan{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &created).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	// date_trunc is postgres-only
	var out []models.MonthlyCount
	for _, t := range created {
		month := t.UTC().Format("2006-01")
		if n := len(out); n > 0 && out[n-1].Month == month {
			out[n-1].Count++
			continue
		}
		out = append(out, models.MonthlyCount{Month: month, Count: 1})
	}
	return out, nil
}

func (r *dashboardRepository) TripsByStatus(ctx context.Context) (map[models.TravelBuddyStatus]int64, error) {
	var rows []struct {
		Status models.TravelBuddyStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.TravelBuddy{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.TravelBuddyStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
