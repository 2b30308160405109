package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/servicebook-backend/internal/handlers"
	"github.com/Ananth-NQI/servicebook-backend/internal/middleware"
	"github.com/Ananth-NQI/servicebook-backend/internal/services"
)

// Version is reported by the root and health endpoints
const Version = "1.0.0"

// Services bundles what the HTTP layer needs
type Services struct {
	Bookings  *services.BookingService
	OTP       *services.OTPService
	Area      *services.ServiceArea
	StaffAuth *middleware.StaffAuth
	Storage   string // storage kind, for the health endpoint
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, s Services) {
	health := handlers.NewHealthHandler(Version, s.Storage, s.Bookings)
	otp := handlers.NewOTPHandler(s.OTP)
	booking := handlers.NewBookingHandler(s.Bookings, s.Area)
	admin := handlers.NewAdminHandler(s.Bookings)
	analytics := handlers.NewAnalyticsHandler(s.Bookings)
	auth := handlers.NewAuthHandler(s.StaffAuth)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Service booking API",
			"version": Version,
			"endpoints": fiber.Map{
				"health": "/health",
				"api":    "/api",
				"admin":  "/api/admin",
			},
		})
	})
	app.Get("/health", health.Check)

	api := app.Group("/api")

	// ========== PUBLIC ROUTES ==========
	api.Post("/send-otp", otp.SendOTP)
	api.Post("/verify-otp", otp.VerifyOTP)
	api.Get("/pincode/check/:pincode", booking.CheckPincode)

	api.Post("/bookings", booking.CreateBooking)

	// ========== ADMIN ROUTES ==========
	// Login must be registered before the guarded group.
	api.Post("/admin/auth/login", auth.Login)

	staff := api.Group("/admin", middleware.RequireStaff(s.StaffAuth))
	staff.Get("/bookings", admin.ListBookings)
	staff.Post("/bookings", admin.CreateBooking)
	staff.Get("/bookings/:id", admin.GetBooking)
	staff.Patch("/bookings/:id/status", admin.UpdateStatus)
	staff.Put("/bookings/:id/reschedule", admin.Reschedule)
	staff.Get("/stats", analytics.GetStats)
}
