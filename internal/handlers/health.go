package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/servicebook-backend/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Storage  string
	bookings *services.BookingService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storage string, bookings *services.BookingService) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		Storage:  storage,
		bookings: bookings,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK
	if err := h.bookings.Ping(c.UserContext()); err != nil {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"version": h.Version,
		"storage": h.Storage,
	})
}
