package server

import "github.com/gofiber/fiber/v2"

// GetTravelerDashboard handles GET /api/travelers/me/dashboard
// @Summary Traveler dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.TravelerDashboard
// @Router /travelers/me/dashboard [get]
func (s *Server) GetTravelerDashboard(c *fiber.Ctx) error {
	dashboard, err := s.dashboardService.Traveler(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(dashboard)
}

// GetAdminDashboard handles GET /api/admin/dashboard
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AdminDashboard
// @Router /admin/dashboard [get]
func (s *Server) GetAdminDashboard(c *fiber.Ctx) error {
	dashboard, err := s.dashboardService.Admin(c.UserContext(), identity(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(dashboard)
}
