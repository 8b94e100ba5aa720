package server

import (
	"strings"

	"travelbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendBuddyRequestRequest is the optional note sent with a join request.
type SendBuddyRequestRequest struct {
	Message string `json:"message"`
}

// RespondBuddyRequestRequest carries the owner's decision.
type RespondBuddyRequestRequest struct {
	Status string `json:"status"`
}

// SendBuddyRequest handles POST /api/travel-plans/:id/requests
// @Summary Ask to join a travel plan
// @Tags buddy-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Travel plan ID"
// @Param request body SendBuddyRequestRequest false "Message to the host"
// @Success 201 {object} models.BuddyRequest
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /travel-plans/{id}/requests [post]
func (s *Server) SendBuddyRequest(c *fiber.Ctx) error {
	planID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SendBuddyRequestRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	request, err := s.buddyRequestService.SendRequest(c.UserContext(), identity(c), planID, req.Message)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// RespondBuddyRequest handles PATCH /api/buddy-requests/:id/status
// @Summary Accept or reject a buddy request
// @Description Accepting rejects every other pending request of the plan
// @Tags buddy-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Buddy request ID"
// @Param request body RespondBuddyRequestRequest true "ACCEPTED or REJECTED"
// @Success 200 {object} service.RespondResult
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /buddy-requests/{id}/status [patch]
func (s *Server) RespondBuddyRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req RespondBuddyRequestRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	status := models.BuddyRequestStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	result, err := s.buddyRequestService.Respond(c.UserContext(), identity(c), id, status)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// GetBuddyRequest handles GET /api/buddy-requests/:id
// @Summary Buddy request details
// @Description Visible to the requester and the plan owner
// @Tags buddy-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Buddy request ID"
// @Success 200 {object} models.BuddyRequest
// @Failure 404 {object} models.ErrorResponse
// @Router /buddy-requests/{id} [get]
func (s *Server) GetBuddyRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	request, err := s.buddyRequestService.GetByID(c.UserContext(), identity(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(request)
}

// GetSentBuddyRequests handles GET /api/buddy-requests/sent
// @Summary Requests I sent
// @Tags buddy-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.BuddyRequest
// @Router /buddy-requests/sent [get]
func (s *Server) GetSentBuddyRequests(c *fiber.Ctx) error {
	requests, err := s.buddyRequestService.ListSent(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(requests)
}

// GetReceivedBuddyRequests handles GET /api/buddy-requests/received
// @Summary Requests to join my plans
// @Tags buddy-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.BuddyRequest
// @Router /buddy-requests/received [get]
func (s *Server) GetReceivedBuddyRequests(c *fiber.Ctx) error {
	requests, err := s.buddyRequestService.ListReceived(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(requests)
}

// GetPlanRequests handles GET /api/travel-plans/:id/requests
// @Summary Requests to join one of my plans
// @Tags buddy-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Travel plan ID"
// @Success 200 {array} models.BuddyRequest
// @Failure 403 {object} models.ErrorResponse
// @Router /travel-plans/{id}/requests [get]
func (s *Server) GetPlanRequests(c *fiber.Ctx) error {
	planID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	requests, err := s.buddyRequestService.ListByPlan(c.UserContext(), identity(c), planID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(requests)
}
