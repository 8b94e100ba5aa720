package service

import (
	"context"
	"math"
	"strings"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ReviewInput is the body of a review.
type ReviewInput struct {
	Rating  int
	Comment string
}

// PendingReviews groups the caller's unreviewed trips by role.
type PendingReviews struct {
	AsHost  []models.PendingReview `json:"as_host"`
	AsBuddy []models.PendingReview `json:"as_buddy"`
}

// ReviewService creates reviews and derives review eligibility.
type ReviewService struct {
	store repository.Store
	log   *observability.DomainLogger
}

// NewReviewService returns a new ReviewService.
func NewReviewService(store repository.Store) *ReviewService {
	return &ReviewService{
		store: store,
		log:   observability.NewDomainLogger("review"),
	}
}

// reviewDirection is the reviewer's position in a relationship and the
// traveler on the other side of it.
type reviewDirection struct {
	role       models.ReviewRole
	revieweeID uint
}

// resolveDirection places reviewerID in tb. The host reviews the buddy and the
// buddy reviews the host; anybody else has no direction.
func resolveDirection(tb *models.TravelBuddy, reviewerID uint) (reviewDirection, bool) {
	switch {
	case tb.TravelPlan != nil && tb.TravelPlan.IsOwnedBy(reviewerID):
		return reviewDirection{role: models.ReviewRoleHost, revieweeID: tb.BuddyID}, true
	case tb.BuddyID == reviewerID && tb.TravelPlan != nil:
		return reviewDirection{role: models.ReviewRoleBuddy, revieweeID: tb.TravelPlan.TravelerID}, true
	}
	return reviewDirection{}, false
}

// roundRating rounds an average to one decimal.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// CreateReview records the caller's review of the other side of a completed
// trip and recomputes the reviewee's aggregate from all their reviews.
func (s *ReviewService) CreateReview(ctx context.Context, identity models.Identity, travelBuddyID uint, in ReviewInput) (review *models.Review, err error) {
	if err := validation.ValidateRating(in.Rating); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	comment := strings.TrimSpace(in.Comment)
	if err := validation.ValidateComment(comment); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	ctx, span := observability.StartServiceSpan(ctx, "ReviewService", "CreateReview",
		attribute.Int64("travel_buddy.id", int64(travelBuddyID)),
	)
	defer func() { span.End(err) }()
	track := observability.TrackCascade("review_create")
	defer func() { track(err) }()

	reviewer, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	tb, err := s.store.TravelBuddies().GetByID(ctx, travelBuddyID)
	if err != nil {
		return nil, err
	}
	if tb.Status != models.TravelBuddyStatusCompleted {
		return nil, models.NewConflictError("Reviews can only be created for completed trips")
	}
	dir, ok := resolveDirection(tb, reviewer.ID)
	if !ok {
		return nil, models.NewForbiddenError("You are not part of this travel relationship")
	}

	var summary models.RatingSummary
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if _, err := tx.Travelers().LockByID(ctx, dir.revieweeID); err != nil {
			return err
		}

		review = &models.Review{
			TravelBuddyID: tb.ID,
			ReviewerID:    reviewer.ID,
			RevieweeID:    dir.revieweeID,
			Rating:        in.Rating,
			Comment:       comment,
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return err
		}

		agg, err := tx.Reviews().RatingSummary(ctx, dir.revieweeID)
		if err != nil {
			return err
		}
		summary = models.RatingSummary{Average: roundRating(agg.Average), Count: agg.Count}
		return tx.Travelers().SetRating(ctx, dir.revieweeID, summary)
	})
	if err != nil {
		return nil, err
	}

	observability.ReviewsCreated.WithLabelValues(string(dir.role)).Inc()
	s.log.LogEvent(ctx, "review created", map[string]any{
		"review_id":      review.ID,
		"travel_buddy":   tb.ID,
		"role":           dir.role,
		"reviewee_id":    dir.revieweeID,
		"average_rating": summary.Average,
		"total_reviews":  summary.Count,
	})
	return review, nil
}

// PendingAsHost lists completed trips on the caller's plans where the caller
// has not reviewed the buddy yet.
func (s *ReviewService) PendingAsHost(ctx context.Context, identity models.Identity) ([]models.PendingReview, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	return s.pendingAsHost(ctx, caller.ID)
}

// PendingAsBuddy lists completed trips the caller joined where the caller has
// not reviewed the host yet.
func (s *ReviewService) PendingAsBuddy(ctx context.Context, identity models.Identity) ([]models.PendingReview, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	return s.pendingAsBuddy(ctx, caller.ID)
}

// Pending returns both pending lists.
func (s *ReviewService) Pending(ctx context.Context, identity models.Identity) (*PendingReviews, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	asHost, err := s.pendingAsHost(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	asBuddy, err := s.pendingAsBuddy(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &PendingReviews{AsHost: asHost, AsBuddy: asBuddy}, nil
}

func (s *ReviewService) pendingAsHost(ctx context.Context, travelerID uint) ([]models.PendingReview, error) {
	rows, err := s.store.TravelBuddies().PendingAsHost(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	out := make([]models.PendingReview, 0, len(rows))
	for i := range rows {
		out = append(out, pendingReview(&rows[i], models.ReviewRoleHost, rows[i].Buddy))
	}
	return out, nil
}

func (s *ReviewService) pendingAsBuddy(ctx context.Context, travelerID uint) ([]models.PendingReview, error) {
	rows, err := s.store.TravelBuddies().PendingAsBuddy(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	out := make([]models.PendingReview, 0, len(rows))
	for i := range rows {
		var host *models.Traveler
		if rows[i].TravelPlan != nil {
			host = rows[i].TravelPlan.Traveler
		}
		out = append(out, pendingReview(&rows[i], models.ReviewRoleBuddy, host))
	}
	return out, nil
}

func pendingReview(tb *models.TravelBuddy, role models.ReviewRole, reviewee *models.Traveler) models.PendingReview {
	p := models.PendingReview{
		TravelBuddyID: tb.ID,
		TravelPlanID:  tb.TravelPlanID,
		Role:          role,
		CompletedAt:   tb.CompletedAt,
	}
	if tb.TravelPlan != nil {
		p.Destination = tb.TravelPlan.Destination
	}
	if reviewee != nil {
		summary := reviewee.Summary()
		p.Reviewee = &summary
	}
	return p
}

// ListReceived returns reviews about the caller.
func (s *ReviewService) ListReceived(ctx context.Context, identity models.Identity, opts models.ListOptions) ([]models.Review, int64, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Reviews().ListByReviewee(ctx, caller.ID, opts)
}

// ListGiven returns reviews the caller wrote.
func (s *ReviewService) ListGiven(ctx context.Context, identity models.Identity, opts models.ListOptions) ([]models.Review, int64, error) {
	caller, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Reviews().ListByReviewer(ctx, caller.ID, opts)
}

// ListForTraveler returns the public reviews about a traveler.
func (s *ReviewService) ListForTraveler(ctx context.Context, travelerID uint, opts models.ListOptions) ([]models.Review, int64, error) {
	traveler, err := s.store.Travelers().GetByID(ctx, travelerID)
	if err != nil {
		return nil, 0, err
	}
	if traveler.IsDeleted {
		return nil, 0, models.NewNotFoundError("Traveler", travelerID)
	}
	return s.store.Reviews().ListByReviewee(ctx, travelerID, opts)
}
