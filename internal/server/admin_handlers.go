package server

import (
	"strings"

	"travelbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SetUserStatusRequest carries the new account status.
type SetUserStatusRequest struct {
	Status string `json:"status"`
}

// SetUserRoleRequest promotes or demotes an account by email.
type SetUserRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SetUserStatus handles PATCH /api/admin/users/:id/status
// @Summary Block or reactivate an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body SetUserStatusRequest true "ACTIVE or BLOCKED"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/users/{id}/status [patch]
func (s *Server) SetUserStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SetUserStatusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	status := models.UserStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	user, err := s.accountService.SetStatus(c.UserContext(), id, status)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// GetAdmins handles GET /api/admin/admins
// @Summary List administrators
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /admin/admins [get]
func (s *Server) GetAdmins(c *fiber.Ctx) error {
	admins, err := s.accountService.ListAdmins(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(admins)
}

// SetUserRole handles PATCH /api/admin/users/role
// @Summary Change an account role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetUserRoleRequest true "Email and role"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/role [patch]
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	var req SetUserRoleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	role := models.UserRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	user, err := s.accountService.SetRole(c.UserContext(), req.Email, role)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// GetFeatureFlags returns configured feature flags and evaluated state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	userID := identity(c).UserID
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
