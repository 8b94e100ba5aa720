package server

import (
	"travelbuddy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReviewRequest is a 1-5 star rating with an optional comment.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/travel-buddies/:id/reviews
// @Summary Review a completed trip
// @Description The host reviews the buddy or the buddy reviews the host, once each
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Travel buddy ID"
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /travel-buddies/{id}/reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	review, err := s.reviewService.CreateReview(c.UserContext(), identity(c), id, service.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetPendingReviews handles GET /api/travelers/me/reviews/pending
// @Summary Completed trips I have not reviewed yet
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PendingReviews
// @Router /travelers/me/reviews/pending [get]
func (s *Server) GetPendingReviews(c *fiber.Ctx) error {
	pending, err := s.reviewService.Pending(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(pending)
}

// GetMyReceivedReviews handles GET /api/travelers/me/reviews/received
// @Summary Reviews about me
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{data=[]models.Review,meta=models.ListMeta}
// @Router /travelers/me/reviews/received [get]
func (s *Server) GetMyReceivedReviews(c *fiber.Ctx) error {
	opts := parsePagination(c, defaultPaginationLimit)
	reviews, total, err := s.reviewService.ListReceived(c.UserContext(), identity(c), opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, reviews, total, opts)
}

// GetMyGivenReviews handles GET /api/travelers/me/reviews/given
// @Summary Reviews I wrote
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{data=[]models.Review,meta=models.ListMeta}
// @Router /travelers/me/reviews/given [get]
func (s *Server) GetMyGivenReviews(c *fiber.Ctx) error {
	opts := parsePagination(c, defaultPaginationLimit)
	reviews, total, err := s.reviewService.ListGiven(c.UserContext(), identity(c), opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, reviews, total, opts)
}

// GetJoinedTrips handles GET /api/travelers/me/trips
// @Summary Trips I joined as a buddy
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TravelBuddy
// @Router /travelers/me/trips [get]
func (s *Server) GetJoinedTrips(c *fiber.Ctx) error {
	trips, err := s.tripService.ListJoinedTrips(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(trips)
}
