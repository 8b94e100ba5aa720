package server

import (
	"travelbuddy/internal/models"
	"travelbuddy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubscriptionPlanRequest is the admin payload for a new tier.
type SubscriptionPlanRequest struct {
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	DurationInDays int      `json:"duration_in_days"`
	Features       []string `json:"features"`
	Recommended    bool     `json:"recommended"`
	Color          string   `json:"color"`
}

// UpdateSubscriptionPlanRequest holds optional tier changes.
type UpdateSubscriptionPlanRequest struct {
	Name           *string   `json:"name"`
	Price          *float64  `json:"price"`
	DurationInDays *int      `json:"duration_in_days"`
	Features       *[]string `json:"features"`
	Recommended    *bool     `json:"recommended"`
	Color          *string   `json:"color"`
}

// SubscribeRequest selects the tier to buy.
type SubscribeRequest struct {
	PlanID uint `json:"plan_id"`
}

// GetSubscriptionPlans handles GET /api/subscription-plans
// @Summary List subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.SubscriptionPlan
// @Router /subscription-plans [get]
func (s *Server) GetSubscriptionPlans(c *fiber.Ctx) error {
	plans, err := s.subscriptionPlanService.List(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(plans)
}

// GetSubscriptionPlan handles GET /api/subscription-plans/:id
// @Summary Subscription plan details
// @Tags subscriptions
// @Produce json
// @Param id path int true "Subscription plan ID"
// @Success 200 {object} models.SubscriptionPlan
// @Failure 404 {object} models.ErrorResponse
// @Router /subscription-plans/{id} [get]
func (s *Server) GetSubscriptionPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	plan, err := s.subscriptionPlanService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(plan)
}

// CreateSubscriptionPlan handles POST /api/admin/subscription-plans
// @Summary Create a subscription plan
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscriptionPlanRequest true "Plan"
// @Success 201 {object} models.SubscriptionPlan
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/subscription-plans [post]
func (s *Server) CreateSubscriptionPlan(c *fiber.Ctx) error {
	var req SubscriptionPlanRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	plan, err := s.subscriptionPlanService.Create(c.UserContext(), service.SubscriptionPlanInput{
		Name:           req.Name,
		Price:          req.Price,
		DurationInDays: req.DurationInDays,
		Features:       req.Features,
		Recommended:    req.Recommended,
		Color:          req.Color,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// UpdateSubscriptionPlan handles PATCH /api/admin/subscription-plans/:id
// @Summary Update a subscription plan
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscription plan ID"
// @Param request body UpdateSubscriptionPlanRequest true "Plan changes"
// @Success 200 {object} models.SubscriptionPlan
// @Router /admin/subscription-plans/{id} [patch]
func (s *Server) UpdateSubscriptionPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdateSubscriptionPlanRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	plan, err := s.subscriptionPlanService.Update(c.UserContext(), id, service.SubscriptionPlanUpdate{
		Name:           req.Name,
		Price:          req.Price,
		DurationInDays: req.DurationInDays,
		Features:       req.Features,
		Recommended:    req.Recommended,
		Color:          req.Color,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(plan)
}

// DeleteSubscriptionPlan handles DELETE /api/admin/subscription-plans/:id
// @Summary Delete a subscription plan
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Subscription plan ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/subscription-plans/{id} [delete]
func (s *Server) DeleteSubscriptionPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.subscriptionPlanService.Delete(c.UserContext(), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscribe handles POST /api/subscriptions
// @Summary Start a subscription checkout
// @Description Creates a pending subscription and payment and returns the gateway URL
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeRequest true "Plan to buy"
// @Success 201 {object} service.CheckoutSession
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /subscriptions [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	session, err := s.subscriptionService.Subscribe(c.UserContext(), identity(c), req.PlanID)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// PaymentWebhook handles POST /api/payments/webhook
// @Summary Payment gateway notification
// @Description Activates the subscription on a paid checkout session
// @Tags subscriptions
// @Accept json
// @Produce json
// @Success 200 {object} object{received=bool}
// @Failure 400 {object} models.ErrorResponse
// @Router /payments/webhook [post]
func (s *Server) PaymentWebhook(c *fiber.Ctx) error {
	event, err := service.ParseCheckoutEvent(c.Body())
	if err != nil {
		return respond(c, err)
	}
	if err := s.subscriptionService.HandleCheckoutEvent(c.UserContext(), event); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}

// GetMySubscription handles GET /api/travelers/me/subscription
// @Summary My current subscription
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 404 {object} models.ErrorResponse
// @Router /travelers/me/subscription [get]
func (s *Server) GetMySubscription(c *fiber.Ctx) error {
	sub, err := s.subscriptionService.GetMine(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	if sub == nil {
		return respond(c, models.NewNotFoundMessage("You have no subscription yet"))
	}
	return c.JSON(sub)
}

// GetActiveSubscriptions handles GET /api/admin/subscriptions
// @Summary Active subscriptions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{data=[]models.Subscription,meta=models.ListMeta}
// @Router /admin/subscriptions [get]
func (s *Server) GetActiveSubscriptions(c *fiber.Ctx) error {
	opts := parsePagination(c, defaultPaginationLimit)
	subs, total, err := s.subscriptionService.ListActive(c.UserContext(), opts)
	if err != nil {
		return respond(c, err)
	}
	return paginated(c, subs, total, opts)
}

// GetSubscription handles GET /api/admin/subscriptions/:id
// @Summary Subscription details
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscription ID"
// @Success 200 {object} models.Subscription
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/subscriptions/{id} [get]
func (s *Server) GetSubscription(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	sub, err := s.subscriptionService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(sub)
}

// ExpireSubscriptions handles POST /api/admin/subscriptions/expire
// @Summary Expire ended subscriptions
// @Description Marks ended subscriptions expired and clears the subscriber flag
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{expired=[]int}
// @Router /admin/subscriptions/expire [post]
func (s *Server) ExpireSubscriptions(c *fiber.Ctx) error {
	ids, err := s.subscriptionService.ExpireEnded(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return c.JSON(fiber.Map{"expired": ids})
}
