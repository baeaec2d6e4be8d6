package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dashboard-session/internal/api/dto"
	"github.com/spec-kit/dashboard-session/internal/auth"
)

// DashboardHandler serves protected dashboard paths once the guard allows them.
type DashboardHandler struct{}

// NewDashboardHandler constructs handler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Show handles GET /dashboard/*.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	data := fiber.Map{"path": c.Path()}
	if id, ok := auth.IdentityFromContext(c); ok {
		data["identity"] = dto.NewIdentityResponse(id)
	}
	return c.JSON(fiber.Map{"data": data})
}
