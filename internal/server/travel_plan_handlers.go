package server

import (
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/service"
	"travelbuddy/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TravelPlanRequest is the create payload. Dates are YYYY-MM-DD or RFC 3339.
type TravelPlanRequest struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	BudgetMin   float64 `json:"budget_min"`
	BudgetMax   float64 `json:"budget_max"`
	TravelType  string  `json:"travel_type"`
	Description string  `json:"description"`
}

// UpdateTravelPlanRequest holds optional plan changes.
type UpdateTravelPlanRequest struct {
	Destination *string  `json:"destination"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
	TravelType  *string  `json:"travel_type"`
	Description *string  `json:"description"`
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, models.NewValidationError(field + " must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

func travelPlanFilter(c *fiber.Ctx) (models.TravelPlanFilter, error) {
	filter := models.TravelPlanFilter{
		SearchTerm:  c.Query("searchTerm"),
		Destination: c.Query("destination"),
		TravelType:  models.TravelType(c.Query("travelType")),
	}
	var err error
	if filter.BudgetMin, err = queryFloat(c, "minBudget"); err != nil {
		return filter, err
	}
	if filter.BudgetMax, err = queryFloat(c, "maxBudget"); err != nil {
		return filter, err
	}
	if filter.StartAfter, err = queryDate(c, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndBefore, err = queryDate(c, "endDate"); err != nil {
		return filter, err
	}
	return filter, nil
}

// CreateTravelPlan handles POST /api/travel-plans
// @Summary Publish a travel plan
// @Description Subscribed travelers only
// @Tags travel-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TravelPlanRequest true "Travel plan"
// @Success 201 {object} models.TravelPlan
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /travel-plans [post]
func (s *Server) CreateTravelPlan(c *fiber.Ctx) error {
	var req TravelPlanRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return respond(c, models.NewValidationError("start_date must be a date (YYYY-MM-DD)"))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return respond(c, models.NewValidationError("end_date must be a date (YYYY-MM-DD)"))
	}

	plan, err := s.travelPlanService.Create(c.UserContext(), identity(c), validation.TravelPlanInput{
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		TravelType:  models.TravelType(req.TravelType),
		Description: req.Description,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// GetTravelPlans handles GET /api/travel-plans
// @Summary Browse travel plans
// @Tags travel-plans
// @Produce json
// @Param searchTerm query string false "Destination or description"
// @Param destination query string false "Destination"
// @Param travelType query string false "SOLO, FAMILY or FRIENDS"
// @Param minBudget query number false "Minimum budget"
// @Param maxBudget query number false "Maximum budget"
// @Param startDate query string false "Starts on or after"
// @Param endDate query string false "Ends on or before"
// @Success 200 {object} object{data=[]models.TravelPlan,meta=models.ListMeta}
// @Router /travel-plans [get]
func (s *Server) GetTravelPlans(c *fiber.Ctx) error {
	filter, err := travelPlanFilter(c)
	if err != nil {
		return respond(c, err)
	}
	opts := parsePagination(c, defaultPaginationLimit)
	plans, total, err := s.travelPlanService.List(c.UserContext(), filter, opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, plans, total, opts)
}

// GetMyTravelPlans handles GET /api/travel-plans/mine
// @Summary My travel plans
// @Tags travel-plans
// @Produce json
// @Security BearerAuth
// @Param isCompleted query bool false "Completion filter"
// @Success 200 {object} object{data=[]models.TravelPlan,meta=models.ListMeta}
// @Router /travel-plans/mine [get]
func (s *Server) GetMyTravelPlans(c *fiber.Ctx) error {
	filter, err := travelPlanFilter(c)
	if err != nil {
		return respond(c, err)
	}
	if filter.IsCompleted, err = queryBool(c, "isCompleted"); err != nil {
		return respond(c, err)
	}
	opts := parsePagination(c, defaultPaginationLimit)
	plans, total, err := s.travelPlanService.ListMine(c.UserContext(), identity(c), filter, opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, plans, total, opts)
}

// GetTravelPlan handles GET /api/travel-plans/:id
// @Summary Travel plan details
// @Tags travel-plans
// @Produce json
// @Param id path int true "Travel plan ID"
// @Success 200 {object} models.TravelPlan
// @Failure 404 {object} models.ErrorResponse
// @Router /travel-plans/{id} [get]
func (s *Server) GetTravelPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	plan, err := s.travelPlanService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(plan)
}

// UpdateTravelPlan handles PATCH /api/travel-plans/:id
// @Summary Update my travel plan
// @Tags travel-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Travel plan ID"
// @Param request body UpdateTravelPlanRequest true "Plan changes"
// @Success 200 {object} models.TravelPlan
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /travel-plans/{id} [patch]
func (s *Server) UpdateTravelPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdateTravelPlanRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	patch := service.TravelPlanUpdate{
		Destination: req.Destination,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Description: req.Description,
	}
	if patch.StartDate, err = parseOptionalDate("start_date", req.StartDate); err != nil {
		return respond(c, err)
	}
	if patch.EndDate, err = parseOptionalDate("end_date", req.EndDate); err != nil {
		return respond(c, err)
	}
	if req.TravelType != nil {
		tt := models.TravelType(*req.TravelType)
		patch.TravelType = &tt
	}

	plan, err := s.travelPlanService.Update(c.UserContext(), identity(c), id, patch)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(plan)
}

// DeleteTravelPlan handles DELETE /api/travel-plans/:id
// @Summary Delete my travel plan
// @Description Plans that already have travel buddies cannot be deleted
// @Tags travel-plans
// @Security BearerAuth
// @Param id path int true "Travel plan ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /travel-plans/{id} [delete]
func (s *Server) DeleteTravelPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.travelPlanService.Delete(c.UserContext(), identity(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CompleteTravelPlan handles POST /api/travel-plans/:id/complete
// @Summary Mark a travel plan completed
// @Description Completes every active travel buddy of the plan
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Travel plan ID"
// @Success 200 {object} service.CompletionResult
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /travel-plans/{id}/complete [post]
func (s *Server) CompleteTravelPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.tripService.CompleteTravelPlan(c.UserContext(), identity(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// GetPlanBuddies handles GET /api/travel-plans/:id/buddies
// @Summary Travel buddies of my plan
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Travel plan ID"
// @Success 200 {array} models.TravelBuddy
// @Router /travel-plans/{id}/buddies [get]
func (s *Server) GetPlanBuddies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	buddies, err := s.tripService.ListPlanBuddies(c.UserContext(), identity(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(buddies)
}
