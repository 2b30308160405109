package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/servicebook-backend/internal/services"
)

// AnalyticsHandler serves booking counts
type AnalyticsHandler struct {
	bookings *services.BookingService
}

func NewAnalyticsHandler(bookings *services.BookingService) *AnalyticsHandler {
	return &AnalyticsHandler{bookings: bookings}
}

// GetStats returns the number of bookings per status
func (h *AnalyticsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.bookings.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
