package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// RespondResult is the outcome of an owner's decision on a buddy request.
type RespondResult struct {
	Request          *models.BuddyRequest     `json:"request"`
	TravelBuddy      *models.TravelBuddy      `json:"travel_buddy,omitempty"`
	RejectedCount    int64                    `json:"rejected_count"`
	RejectedRequests []models.RejectedRequest `json:"rejected_requests"`
	Message          string                   `json:"message"`
}

// BuddyRequestService runs the buddy request state machine.
type BuddyRequestService struct {
	store repository.Store
	log   *observability.DomainLogger
	now   func() time.Time
}

// NewBuddyRequestService returns a new BuddyRequestService.
func NewBuddyRequestService(store repository.Store) *BuddyRequestService {
	return &BuddyRequestService{
		store: store,
		log:   observability.NewDomainLogger("buddy_request"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest creates a PENDING request from the caller to join planID.
func (s *BuddyRequestService) SendRequest(ctx context.Context, identity models.Identity, planID uint, message string) (*models.BuddyRequest, error) {
	message = strings.TrimSpace(message)
	if err := validation.ValidateRequestMessage(message); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	plan, err := s.store.TravelPlans().GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	requester, err := subscribedTraveler(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	if plan.IsOwnedBy(requester.ID) {
		return nil, models.NewValidationError("You cannot send buddy request to your own travel plan")
	}
	if plan.IsCompleted {
		return nil, models.NewConflictError("Cannot join a completed travel plan")
	}

	existing, err := s.store.BuddyRequests().FindByPlanAndRequester(ctx, plan.ID, requester.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("You have already sent a request for this travel plan")
	}
	buddy, err := s.store.TravelBuddies().FindByPlanAndBuddy(ctx, plan.ID, requester.ID)
	if err != nil {
		return nil, err
	}
	if buddy != nil {
		return nil, models.NewConflictError("You are already a buddy for this travel plan")
	}

	req := &models.BuddyRequest{
		TravelPlanID: plan.ID,
		RequesterID:  requester.ID,
		Status:       models.BuddyRequestStatusPending,
		Message:      message,
	}
	if err := s.store.BuddyRequests().Create(ctx, req); err != nil {
		return nil, err
	}

	observability.BuddyRequestsCreated.Inc()
	s.log.LogEvent(ctx, "buddy request sent", map[string]any{
		"buddy_request_id": req.ID,
		"travel_plan_id":   plan.ID,
		"requester_id":     requester.ID,
	})

	return s.store.BuddyRequests().GetByID(ctx, req.ID)
}

// Respond accepts or rejects a pending request on behalf of the plan owner.
// Accepting runs the exclusivity cascade: the request becomes ACCEPTED, a
// TravelBuddy is created and every other PENDING request on the plan is
// rejected, all in one transaction.
func (s *BuddyRequestService) Respond(ctx context.Context, identity models.Identity, requestID uint, status models.BuddyRequestStatus) (result *RespondResult, err error) {
	if status != models.BuddyRequestStatusAccepted && status != models.BuddyRequestStatusRejected {
		return nil, models.NewValidationError("Status must be ACCEPTED or REJECTED")
	}

	ctx, span := observability.StartServiceSpan(ctx, "BuddyRequestService", "Respond",
		attribute.Int64("buddy_request.id", int64(requestID)),
		attribute.String("buddy_request.target_status", string(status)),
	)
	defer func() { span.End(err) }()

	owner, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	req, err := s.store.BuddyRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.TravelPlan == nil || !req.TravelPlan.IsOwnedBy(owner.ID) {
		return nil, models.NewForbiddenError("Only plan owner can update request status")
	}
	if req.Status != models.BuddyRequestStatusPending {
		return nil, alreadyProcessed(req.Status)
	}

	if status == models.BuddyRequestStatusRejected {
		return s.reject(ctx, req)
	}
	if req.TravelPlan.IsCompleted {
		return nil, models.NewConflictError("Cannot accept requests for completed travel plans")
	}
	return s.accept(ctx, req)
}

func alreadyProcessed(status models.BuddyRequestStatus) error {
	return models.NewConflictError(fmt.Sprintf("Request is already %s", status))
}

func (s *BuddyRequestService) reject(ctx context.Context, req *models.BuddyRequest) (*RespondResult, error) {
	ok, err := s.store.BuddyRequests().TransitionFromPending(ctx, req.ID, models.BuddyRequestStatusRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.lostRace(ctx, s.store, req.ID)
	}

	observability.BuddyRequestTransitions.WithLabelValues(string(models.BuddyRequestStatusRejected)).Inc()
	s.log.LogTransition(ctx, "buddy_request", req.ID,
		string(models.BuddyRequestStatusPending), string(models.BuddyRequestStatusRejected), nil)

	updated, err := s.store.BuddyRequests().GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &RespondResult{
		Request:          updated,
		RejectedRequests: []models.RejectedRequest{},
		Message:          fmt.Sprintf("Request status updated to %s", models.BuddyRequestStatusRejected),
	}, nil
}

func (s *BuddyRequestService) accept(ctx context.Context, req *models.BuddyRequest) (result *RespondResult, err error) {
	track := observability.TrackCascade("buddy_request_accept")
	defer func() { track(err) }()

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		plan, err := tx.TravelPlans().LockByID(ctx, req.TravelPlanID)
		if err != nil {
			return err
		}
		if plan.IsCompleted {
			return models.NewConflictError("Cannot accept requests for completed travel plans")
		}

		ok, err := tx.BuddyRequests().TransitionFromPending(ctx, req.ID, models.BuddyRequestStatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return s.lostRace(ctx, tx, req.ID)
		}

		buddy := &models.TravelBuddy{
			TravelPlanID: plan.ID,
			BuddyID:      req.RequesterID,
			Status:       models.TravelBuddyStatusActive,
			JoinedAt:     s.now(),
		}
		if err := tx.TravelBuddies().Create(ctx, buddy); err != nil {
			return err
		}

		siblings, err := tx.BuddyRequests().ListPendingByPlan(ctx, plan.ID, req.ID)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(siblings))
		rejected := make([]models.RejectedRequest, 0, len(siblings))
		for i := range siblings {
			ids = append(ids, siblings[i].ID)
			entry := models.RejectedRequest{ID: siblings[i].ID, Message: siblings[i].Message}
			if siblings[i].Requester != nil {
				summary := siblings[i].Requester.Summary()
				entry.Requester = &summary
			}
			rejected = append(rejected, entry)
		}
		count, err := tx.BuddyRequests().RejectPending(ctx, ids)
		if err != nil {
			return err
		}

		accepted, err := tx.BuddyRequests().GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		requesterName := "requester"
		if accepted.Requester != nil {
			requesterName = accepted.Requester.Name
		}
		result = &RespondResult{
			Request:          accepted,
			TravelBuddy:      buddy,
			RejectedCount:    count,
			RejectedRequests: rejected,
			Message:          fmt.Sprintf("Accepted %s. Rejected %d other pending request(s).", requesterName, count),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.BuddyRequestTransitions.WithLabelValues(string(models.BuddyRequestStatusAccepted)).Inc()
	observability.BuddyRequestAutoRejections.Add(float64(result.RejectedCount))
	s.log.LogTransition(ctx, "buddy_request", req.ID,
		string(models.BuddyRequestStatusPending), string(models.BuddyRequestStatusAccepted),
		map[string]any{
			"travel_plan_id": req.TravelPlanID,
			"travel_buddy":   result.TravelBuddy.ID,
			"auto_rejected":  result.RejectedCount,
		})

	return result, nil
}

// lostRace reports the state a concurrent transition left the request in.
func (s *BuddyRequestService) lostRace(ctx context.Context, store repository.Store, id uint) error {
	current, err := store.BuddyRequests().GetByID(ctx, id)
	if err != nil {
		return err
	}
	return alreadyProcessed(current.Status)
}

// ListByPlan returns every request on planID. Only the plan owner may list them.
func (s *BuddyRequestService) ListByPlan(ctx context.Context, identity models.Identity, planID uint) ([]models.BuddyRequest, error) {
	plan, err := s.store.TravelPlans().GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	if !plan.IsOwnedBy(caller.ID) {
		return nil, models.NewForbiddenError("Only plan owner can view requests for this travel plan")
	}
	return s.store.BuddyRequests().ListByPlan(ctx, planID)
}

// GetByID returns one request to its requester or to the plan owner.
func (s *BuddyRequestService) GetByID(ctx context.Context, identity models.Identity, requestID uint) (*models.BuddyRequest, error) {
	req, err := s.store.BuddyRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != caller.ID && (req.TravelPlan == nil || !req.TravelPlan.IsOwnedBy(caller.ID)) {
		return nil, models.NewForbiddenError("Unauthorized to view this request")
	}
	return req, nil
}

// ListSent returns the requests the caller sent.
func (s *BuddyRequestService) ListSent(ctx context.Context, identity models.Identity) ([]models.BuddyRequest, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	return s.store.BuddyRequests().ListByRequester(ctx, caller.ID)
}

// ListReceived returns the requests on plans the caller owns.
func (s *BuddyRequestService) ListReceived(ctx context.Context, identity models.Identity) ([]models.BuddyRequest, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	return s.store.BuddyRequests().ListReceived(ctx, caller.ID)
}
