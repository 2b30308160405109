package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/middleware"
	"github.com/Ananth-NQI/servicebook-backend/internal/services"
)

// AdminHandler handles staff booking management
type AdminHandler struct {
	bookings *services.BookingService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(bookings *services.BookingService) *AdminHandler {
	return &AdminHandler{bookings: bookings}
}

// ListBookings returns bookings newest first, or by date and time with
// ?sort=schedule. ?status= narrows the list.
func (h *AdminHandler) ListBookings(c *fiber.Ctx) error {
	bookings, err := h.bookings.ListForAdmin(c.UserContext(), c.Query("status"), c.Query("sort"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"count":    len(bookings),
		"bookings": bookings,
	})
}

// GetBooking returns one booking
func (h *AdminHandler) GetBooking(c *fiber.Ctx) error {
	booking, err := h.bookings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"booking": booking,
	})
}

// CreateBooking enters a booking on a customer's behalf
func (h *AdminHandler) CreateBooking(c *fiber.Ctx) error {
	var req services.BookingInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	booking, err := h.bookings.CreateBookingAsStaff(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"staff":      c.Locals(middleware.LocalsStaffEmail),
	}).Info("Booking entered by staff")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking created",
		"booking": booking,
	})
}

// UpdateStatus moves a booking to a new status
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	booking, err := h.bookings.SetStatus(c.UserContext(), c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking status updated",
		"booking": booking,
	})
}

// Reschedule moves a booking to a new date and time
func (h *AdminHandler) Reschedule(c *fiber.Ctx) error {
	var req struct {
		Date   string `json:"date"`
		Time   string `json:"time"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	booking, err := h.bookings.Reschedule(c.UserContext(), c.Params("id"), req.Date, req.Time, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking rescheduled",
		"booking": booking,
	})
}
