package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/servicebook-backend/internal/services"
)

// BookingHandler handles the public booking endpoints
type BookingHandler struct {
	bookings *services.BookingService
	area     *services.ServiceArea
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, area *services.ServiceArea) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		area:     area,
	}
}

// CreateBooking handles a customer booking after OTP verification
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req services.BookingInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	booking, err := h.bookings.CreateBooking(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking submitted successfully",
		"booking": booking,
	})
}

// CheckPincode reports whether a postal code is covered
func (h *BookingHandler) CheckPincode(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("pincode"))
	if code == "" {
		return badRequest(c, "Pincode is required")
	}

	serviceable := h.area.IsServiceable(code)
	msg := "Service available in your area"
	if !serviceable {
		msg = "Sorry, we do not serve this pincode yet"
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"pincode":     code,
		"serviceable": serviceable,
		"message":     msg,
	})
}
