package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// TokenIssuer is the iss claim of every staff token
const TokenIssuer = "servicebook"

// LocalsStaffEmail is the fiber locals key holding the authenticated staff email
const LocalsStaffEmail = "staff_email"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrLoginDisabled      = errors.New("staff login is not configured")
)

// Authorizer answers whether a credential belongs to staff
type Authorizer interface {
	IsAuthorized(credential string) (string, bool)
}

// StaffClaims are the claims carried by a staff token
type StaffClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// StaffAuth checks the configured staff login and signs HS256 tokens
type StaffAuth struct {
	email    string
	password string
	secret   []byte
	ttl      time.Duration
	clock    utils.Clock
}

func NewStaffAuth(email, password, secret string, ttl time.Duration, clock utils.Clock) *StaffAuth {
	return &StaffAuth{
		email:    strings.ToLower(strings.TrimSpace(email)),
		password: password,
		secret:   []byte(secret),
		ttl:      ttl,
		clock:    clock,
	}
}

// Enabled reports whether a staff account and signing key are configured.
// A disabled StaffAuth issues and accepts no tokens.
func (a *StaffAuth) Enabled() bool {
	return a.email != "" && a.password != "" && len(a.secret) > 0
}

// Login returns a signed token when email and password match the staff account.
func (a *StaffAuth) Login(email, password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(a.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !emailOK || !passOK {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(a.email)
}

// Issue signs a token for email.
func (a *StaffAuth) Issue(email string) (string, time.Time, error) {
	now := a.clock.Now()
	expires := now.Add(a.ttl)
	claims := StaffClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign staff token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates a token and returns its claims.
func (a *StaffAuth) Parse(token string) (*StaffClaims, error) {
	if !a.Enabled() {
		return nil, ErrLoginDisabled
	}
	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email claim")
	}
	return claims, nil
}

// IsAuthorized reports whether credential is a valid staff token.
func (a *StaffAuth) IsAuthorized(credential string) (string, bool) {
	claims, err := a.Parse(credential)
	if err != nil {
		return "", false
	}
	return claims.Email, true
}

// RequireStaff rejects requests without a valid "Authorization: Bearer" staff token
func RequireStaff(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Access denied. No token provided.",
			})
		}

		email, ok := auth.IsAuthorized(token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
		}

		c.Locals(LocalsStaffEmail, email)
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}
