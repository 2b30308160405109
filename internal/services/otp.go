package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// DefaultOTPTTL is how long an issued code stays valid
const DefaultOTPTTL = 5 * time.Minute

// OTPService issues and checks email one-time codes
type OTPService struct {
	store      VerificationStore
	templates  *TemplateService
	dispatcher *Dispatcher
	clock      utils.Clock
	ttl        time.Duration
	validate   *validator.Validate

	generate func() (string, error)
}

func NewOTPService(store VerificationStore, templates *TemplateService, dispatcher *Dispatcher, clock utils.Clock, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{
		store:      store,
		templates:  templates,
		dispatcher: dispatcher,
		clock:      clock,
		ttl:        ttl,
		validate:   newValidator(),
		generate:   utils.GenerateSecureOTP,
	}
}

// Issue creates a fresh code for email, replacing any pending one, and mails it.
// The code stays stored when delivery fails, so the returned
// *NotificationError only tells the caller the email did not go out.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	email, err := s.checkEmail(email)
	if err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	s.store.PutCode(models.OTP{
		Email:     email,
		Code:      code,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	})

	if err := s.dispatcher.Deliver(ctx, s.templates.OTP(email, code, s.ttl)); err != nil {
		logger.Log.WithError(err).WithField("email", email).Error("OTP send error")
		return err
	}

	logger.Log.WithField("email", email).Info("OTP issued")
	return nil
}

// Check validates code for email. A successful check consumes the code.
func (s *OTPService) Check(email, code string) error {
	email, err := s.checkEmail(email)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return missingField("otp")
	}

	if err := s.store.CheckCode(email, code, s.clock.Now()); err != nil {
		logger.Log.WithFields(logrus.Fields{"email": email, "reason": err.Error()}).Info("OTP check failed")
		return err
	}
	return nil
}

// ConsumeVerification reports whether email had passed a check and clears it.
func (s *OTPService) ConsumeVerification(email string) bool {
	return s.store.ConsumeVerified(normalizeEmail(email))
}

// RestoreVerification undoes a consume when the booking that used it failed.
func (s *OTPService) RestoreVerification(email string) {
	s.store.MarkVerified(normalizeEmail(email))
}

func (s *OTPService) IsVerified(email string) bool {
	return s.store.IsVerified(normalizeEmail(email))
}

func (s *OTPService) checkEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", missingField("email")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return "", invalidField("email", "must be a valid email address")
	}
	return email, nil
}
