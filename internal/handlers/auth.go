package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/middleware"
)

// AuthHandler handles staff login
type AuthHandler struct {
	auth *middleware.StaffAuth
}

func NewAuthHandler(auth *middleware.StaffAuth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login exchanges the staff email and password for a bearer token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	token, expires, err := h.auth.Login(req.Email, req.Password)
	if errors.Is(err, middleware.ErrInvalidCredentials) {
		logger.Log.WithField("email", req.Email).Warn("Failed staff login")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    CodeUnauthorized,
			"message": "Invalid credentials",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"token":      token,
		"expires_at": expires,
	})
}
