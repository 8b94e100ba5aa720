package server

import (
	"travelbuddy/internal/models"
	"travelbuddy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest holds optional profile changes. Omitted fields are left alone.
type UpdateProfileRequest struct {
	Name             *string   `json:"name"`
	Bio              *string   `json:"bio"`
	ProfilePhoto     *string   `json:"profile_photo"`
	ContactNumber    *string   `json:"contact_number"`
	CurrentLocation  *string   `json:"current_location"`
	Interests        *[]string `json:"interests"`
	VisitedCountries *[]string `json:"visited_countries"`
}

// GetTravelers handles GET /api/travelers
// @Summary List travelers
// @Tags travelers
// @Produce json
// @Param searchTerm query string false "Name or email"
// @Param isSubscribed query bool false "Only subscribed travelers"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} object{data=[]models.Traveler,meta=models.ListMeta}
// @Router /travelers [get]
func (s *Server) GetTravelers(c *fiber.Ctx) error {
	subscribed, err := queryBool(c, "isSubscribed")
	if err != nil {
		return respond(c, err)
	}
	opts := parsePagination(c, defaultPaginationLimit)
	travelers, total, err := s.travelerService.List(c.UserContext(), models.TravelerFilter{
		SearchTerm:   c.Query("searchTerm"),
		IsSubscribed: subscribed,
	}, opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, travelers, total, opts)
}

// GetTraveler handles GET /api/travelers/:id
// @Summary Traveler profile
// @Tags travelers
// @Produce json
// @Param id path int true "Traveler ID"
// @Success 200 {object} models.Traveler
// @Failure 404 {object} models.ErrorResponse
// @Router /travelers/{id} [get]
func (s *Server) GetTraveler(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	traveler, err := s.travelerService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(traveler)
}

// GetTravelerReviews handles GET /api/travelers/:id/reviews
// @Summary Reviews a traveler received
// @Tags reviews
// @Produce json
// @Param id path int true "Traveler ID"
// @Success 200 {object} object{data=[]models.Review,meta=models.ListMeta}
// @Router /travelers/{id}/reviews [get]
func (s *Server) GetTravelerReviews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	opts := parsePagination(c, defaultPaginationLimit)
	reviews, total, err := s.reviewService.ListForTraveler(c.UserContext(), id, opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, reviews, total, opts)
}

// GetMyProfile handles GET /api/travelers/me
// @Summary My traveler profile
// @Tags travelers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Traveler
// @Router /travelers/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	traveler, err := s.travelerService.GetMe(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(traveler)
}

// UpdateMyProfile handles PATCH /api/travelers/me
// @Summary Update my traveler profile
// @Tags travelers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} models.Traveler
// @Failure 400 {object} models.ErrorResponse
// @Router /travelers/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	traveler, err := s.travelerService.UpdateMyProfile(c.UserContext(), identity(c), service.ProfileUpdate{
		Name:             req.Name,
		Bio:              req.Bio,
		ProfilePhoto:     req.ProfilePhoto,
		ContactNumber:    req.ContactNumber,
		CurrentLocation:  req.CurrentLocation,
		Interests:        req.Interests,
		VisitedCountries: req.VisitedCountries,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(traveler)
}

// DeleteTraveler handles DELETE /api/admin/travelers/:id
// @Summary Soft-delete a traveler
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Traveler ID"
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/travelers/{id} [delete]
func (s *Server) DeleteTraveler(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.travelerService.SoftDelete(c.UserContext(), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
