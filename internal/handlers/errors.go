package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/servicebook-backend/internal/services"
)

// Error codes returned in the "code" field
const (
	CodeMissingFields     = "missing_fields"
	CodeInvalidField      = "invalid_field"
	CodeUnverified        = "unverified"
	CodeNotServiceable    = "not_serviceable"
	CodePastDateTime      = "past_date_time"
	CodeNotFound          = "not_found"
	CodeOTPNotFound       = "otp_not_found"
	CodeOTPExpired        = "otp_expired"
	CodeOTPMismatch       = "otp_mismatch"
	CodeInvalidStatus     = "invalid_status"
	CodeInvalidTransition = "invalid_transition"
	CodeConflict          = "conflict"
	CodeDeliveryFailed    = "delivery_failed"
	CodeInternal          = "internal"
	CodeBadRequest        = "bad_request"
	CodeUnauthorized      = "unauthorized"
)

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrMissingFields, fiber.StatusBadRequest, CodeMissingFields},
	{services.ErrInvalidField, fiber.StatusBadRequest, CodeInvalidField},
	{services.ErrUnverified, fiber.StatusForbidden, CodeUnverified},
	{services.ErrNotServiceable, fiber.StatusBadRequest, CodeNotServiceable},
	{services.ErrPastDateTime, fiber.StatusBadRequest, CodePastDateTime},
	{services.ErrNotFound, fiber.StatusNotFound, CodeNotFound},
	{services.ErrOTPNotFound, fiber.StatusBadRequest, CodeOTPNotFound},
	{services.ErrOTPExpired, fiber.StatusBadRequest, CodeOTPExpired},
	{services.ErrOTPMismatch, fiber.StatusBadRequest, CodeOTPMismatch},
	{services.ErrInvalidStatus, fiber.StatusBadRequest, CodeInvalidStatus},
	{services.ErrInvalidTransition, fiber.StatusConflict, CodeInvalidTransition},
	{services.ErrConflict, fiber.StatusConflict, CodeConflict},
}

// respondError maps a service error onto a status code and JSON body.
func respondError(c *fiber.Ctx, err error) error {
	body := fiber.Map{"success": false}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			body["code"] = m.code
			body["message"] = message(err, verr)
			return c.Status(m.status).JSON(body)
		}
	}

	var nerr *services.NotificationError
	if errors.As(err, &nerr) {
		body["code"] = CodeDeliveryFailed
		body["message"] = "Failed to send email. Try again."
		return c.Status(fiber.StatusBadGateway).JSON(body)
	}

	// Store failures and anything unexpected stay opaque to the caller.
	body["code"] = CodeInternal
	body["message"] = "Server error"
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

func message(err error, verr *services.ValidationError) string {
	if verr != nil {
		return verr.Error()
	}
	return err.Error()
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"code":    CodeBadRequest,
		"message": msg,
	})
}
