package repository

import (
	"context"
	"errors"

	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// BuddyRequestRepository defines persistence operations for buddy requests.
type BuddyRequestRepository interface {
	Create(ctx context.Context, req *models.BuddyRequest) error
	GetByID(ctx context.Context, id uint) (*models.BuddyRequest, error)
	// FindByPlanAndRequester returns (nil, nil) when the pair has no request.
	FindByPlanAndRequester(ctx context.Context, planID, requesterID uint) (*models.BuddyRequest, error)
	ListByPlan(ctx context.Context, planID uint) ([]models.BuddyRequest, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.BuddyRequest, error)
	ListReceived(ctx context.Context, ownerID uint) ([]models.BuddyRequest, error)
	// TransitionFromPending moves a PENDING request to status and reports
	// whether the row was still PENDING.
	TransitionFromPending(ctx context.Context, id uint, status models.BuddyRequestStatus) (bool, error)
	// ListPendingByPlan returns PENDING requests on the plan except exceptID.
	ListPendingByPlan(ctx context.Context, planID, exceptID uint) ([]models.BuddyRequest, error)
	// RejectPending rejects the given requests that are still PENDING and
	// returns the number of rows changed.
	RejectPending(ctx context.Context, ids []uint) (int64, error)
	DeleteByPlan(ctx context.Context, planID uint) error
	CountByStatusForRequester(ctx context.Context, requesterID uint) (map[models.BuddyRequestStatus]int64, error)
}

type buddyRequestRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

func (r *buddyRequestRepository) Create(ctx context.Context, req *models.BuddyRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return createError(err, "You have already sent a request for this travel plan")
	}
	return nil
}

func (r *buddyRequestRepository) GetByID(ctx context.Context, id uint) (*models.BuddyRequest, error) {
	var req models.BuddyRequest
	if err := r.db.WithContext(ctx).
		Preload("TravelPlan").
		Preload("Requester").
		First(&req, id).Error; err != nil {
		return nil, notFoundOr(err, "Buddy request", id)
	}
	return &req, nil
}

func (r *buddyRequestRepository) FindByPlanAndRequester(ctx context.Context, planID, requesterID uint) (*models.BuddyRequest, error) {
	var req models.BuddyRequest
	err := r.db.WithContext(ctx).
		Where("travel_plan_id = ? AND requester_id = ?", planID, requesterID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *buddyRequestRepository) ListByPlan(ctx context.Context, planID uint) ([]models.BuddyRequest, error) {
	var reqs []models.BuddyRequest
	if err := r.reader.WithContext(ctx).
		Preload("Requester").
		Where("travel_plan_id = ?", planID).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *buddyRequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.BuddyRequest, error) {
	var reqs []models.BuddyRequest
	if err := r.reader.WithContext(ctx).
		Preload("TravelPlan").
		Preload("TravelPlan.Traveler").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *buddyRequestRepository) ListReceived(ctx context.Context, ownerID uint) ([]models.BuddyRequest, error) {
	var reqs []models.BuddyRequest
	if err := r.reader.WithContext(ctx).
		Preload("TravelPlan").
		Preload("Requester").
		Joins("JOIN travel_plans ON travel_plans.id = buddy_requests.travel_plan_id").
		Where("travel_plans.traveler_id = ?", ownerID).
		Order("buddy_requests.created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *buddyRequestRepository) TransitionFromPending(ctx context.Context, id uint, status models.BuddyRequestStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.BuddyRequest{}).
		Where("id = ? AND status = ?", id, models.BuddyRequestStatusPending).
		Update("status", status)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *buddyRequestRepository) ListPendingByPlan(ctx context.Context, planID, exceptID uint) ([]models.BuddyRequest, error) {
	var reqs []models.BuddyRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("travel_plan_id = ? AND status = ? AND id <> ?", planID, models.BuddyRequestStatusPending, exceptID).
		Order("id ASC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *buddyRequestRepository) RejectPending(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.BuddyRequest{}).
		Where("id IN ? AND status = ?", ids, models.BuddyRequestStatusPending).
		Update("status", models.BuddyRequestStatusRejected)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *buddyRequestRepository) DeleteByPlan(ctx context.Context, planID uint) error {
	if err := r.db.WithContext(ctx).
		Where("travel_plan_id = ?", planID).
		Delete(&models.BuddyRequest{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *buddyRequestRepository) CountByStatusForRequester(ctx context.Context, requesterID uint) (map[models.BuddyRequestStatus]int64, error) {
	var rows []struct {
		Status models.BuddyRequestStatus
		Count  int64
	}
	if err := r.reader.WithContext(ctx).Model(&models.BuddyRequest{}).
		Select("status, COUNT(*) AS count").
		Where("requester_id = ?", requesterID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.BuddyRequestStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
