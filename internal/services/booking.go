package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/storage"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// DefaultStoreTimeout bounds every store call
const DefaultStoreTimeout = 10 * time.Second

// BookingService owns the booking lifecycle
type BookingService struct {
	store        storage.Store
	otp          *OTPService
	area         *ServiceArea
	templates    *TemplateService
	dispatcher   *Dispatcher
	clock        utils.Clock
	storeTimeout time.Duration
	validate     *validator.Validate
}

func NewBookingService(
	store storage.Store,
	otp *OTPService,
	area *ServiceArea,
	templates *TemplateService,
	dispatcher *Dispatcher,
	clock utils.Clock,
	storeTimeout time.Duration,
) *BookingService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &BookingService{
		store:        store,
		otp:          otp,
		area:         area,
		templates:    templates,
		dispatcher:   dispatcher,
		clock:        clock,
		storeTimeout: storeTimeout,
		validate:     newValidator(),
	}
}

// CreateBooking creates a pending booking for a customer who has passed OTP
// verification. A rejection by the serviceability or not-past guard gives the
// verification back; any later failure leaves it spent since the insert may
// have committed.
func (s *BookingService) CreateBooking(ctx context.Context, in BookingInput) (*models.Booking, error) {
	in.Normalize()
	urgency, err := validateInput(s.validate, &in)
	if err != nil {
		return nil, err
	}

	if !s.otp.ConsumeVerification(in.Email) {
		return nil, ErrUnverified
	}

	booking, err := s.create(ctx, in, urgency, true)
	if err != nil {
		if errors.Is(err, ErrNotServiceable) || errors.Is(err, ErrPastDateTime) {
			s.otp.RestoreVerification(in.Email)
		}
		return nil, err
	}
	return booking, nil
}

// CreateBookingAsStaff creates a booking without OTP or serviceability checks.
// Staff entries still have to be complete and not in the past.
func (s *BookingService) CreateBookingAsStaff(ctx context.Context, in BookingInput) (*models.Booking, error) {
	in.Normalize()
	urgency, err := validateInput(s.validate, &in)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, in, urgency, false)
}

func (s *BookingService) create(ctx context.Context, in BookingInput, urgency models.Urgency, public bool) (*models.Booking, error) {
	if public && !s.area.IsServiceable(in.Pincode) {
		return nil, ErrNotServiceable
	}
	if IsPast(in.Date, in.Time, s.clock.Now()) {
		return nil, ErrPastDateTime
	}

	booking := in.toBooking(urgency)
	booking.Verified = public

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Insert(sctx, booking); err != nil {
		return nil, s.storeErr("insert", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"email":      booking.Email,
		"verified":   booking.Verified,
	}).Info("Booking created")

	s.dispatcher.Dispatch(
		s.templates.NewBookingCustomer(booking),
		s.templates.NewBookingStaff(booking),
	)
	return booking, nil
}

// SetStatus moves a booking along the lifecycle and emails the customer.
func (s *BookingService) SetStatus(ctx context.Context, id, status, reason string) (*models.Booking, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := models.ParseBookingStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.update(ctx, current, storage.Patch{Status: &next})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id": id,
		"from":       current.Status,
		"to":         next,
	}).Info("Booking status updated")

	if next != models.BookingStatusPending {
		if email, ok := s.templates.StatusUpdate(updated, strings.TrimSpace(reason)); ok {
			s.dispatcher.Dispatch(email)
		}
	}
	return updated, nil
}

// Reschedule moves a booking to a new slot and leaves it confirmed.
func (s *BookingService) Reschedule(ctx context.Context, id, date, clock, reason string) (*models.Booking, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	switch {
	case date == "":
		return nil, missingField("date")
	case clock == "":
		return nil, missingField("time")
	case !utils.IsDate(date):
		return nil, invalidField("date", "must be in YYYY-MM-DD format")
	case !utils.IsClockTime(clock):
		return nil, invalidField("time", "must be in HH:MM format")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot reschedule a %s booking", ErrInvalidTransition, current.Status)
	}

	confirmed := models.BookingStatusConfirmed
	cleared := ""
	updated, err := s.update(ctx, current, storage.Patch{
		Status:               &confirmed,
		Date:                 &date,
		Time:                 &clock,
		ReminderSentFor:      &cleared,
		StaffReminderSentFor: &cleared,
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id": id,
		"date":       date,
		"time":       clock,
	}).Info("Booking rescheduled")

	s.dispatcher.Dispatch(s.templates.Rescheduled(updated, strings.TrimSpace(reason)))
	return updated, nil
}

// MarkReminded records that the customer reminder for date went out.
func (s *BookingService) MarkReminded(ctx context.Context, id, date string) error {
	return s.markReminder(ctx, id, date, storage.Patch{ReminderSentFor: &date})
}

// MarkStaffReminded records that the staff reminder for date went out.
func (s *BookingService) MarkStaffReminded(ctx context.Context, id, date string) error {
	return s.markReminder(ctx, id, date, storage.Patch{StaffReminderSentFor: &date})
}

// markReminder applies patch unless the booking moved off date or out of
// confirmed. A booking that changed in the meantime is reloaded once before
// giving up.
func (s *BookingService) markReminder(ctx context.Context, id, date string, patch storage.Patch) error {
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.Date != date || current.Status != models.BookingStatusConfirmed {
			return nil
		}

		_, err = s.update(ctx, current, patch)
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return ErrConflict
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	b, err := s.store.FindByID(sctx, strings.TrimSpace(id))
	if err != nil {
		return nil, s.storeErr("find", err)
	}
	return b, nil
}

// Listing orders accepted by ListForAdmin
const (
	SortNewest   = "newest"
	SortSchedule = "schedule"
)

// ListForAdmin returns bookings, optionally only those in status. sort is
// SortNewest (the default when empty) or SortSchedule for date and time ascending.
func (s *BookingService) ListForAdmin(ctx context.Context, status, sort string) ([]*models.Booking, error) {
	order := storage.SortNewestFirst
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "", SortNewest:
	case SortSchedule:
		order = storage.SortScheduleAsc
	default:
		return nil, invalidField("sort", "must be newest or schedule")
	}

	var filter storage.Filter
	if status = strings.TrimSpace(status); status != "" {
		st, ok := models.ParseBookingStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		filter.Status = st
	}
	return s.find(ctx, filter, order)
}

// ConfirmedOn returns confirmed bookings scheduled for date, earliest first.
func (s *BookingService) ConfirmedOn(ctx context.Context, date string) ([]*models.Booking, error) {
	return s.find(ctx, storage.Filter{Status: models.BookingStatusConfirmed, Date: date}, storage.SortScheduleAsc)
}

// Stats counts bookings per status.
func (s *BookingService) Stats(ctx context.Context) (*models.BookingStats, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	stats := &models.BookingStats{}
	for _, st := range models.AllBookingStatuses() {
		n, err := s.store.Count(sctx, storage.Filter{Status: st})
		if err != nil {
			return nil, s.storeErr("count", err)
		}
		stats.Set(st, n)
		stats.Total += n
	}
	return stats, nil
}

// Ping checks the store is reachable.
func (s *BookingService) Ping(ctx context.Context) error {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Ping(sctx); err != nil {
		return s.storeErr("ping", err)
	}
	return nil
}

func (s *BookingService) find(ctx context.Context, filter storage.Filter, order storage.SortOrder) ([]*models.Booking, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	bookings, err := s.store.Find(sctx, filter, order)
	if err != nil {
		return nil, s.storeErr("find", err)
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return bookings, nil
}

func (s *BookingService) update(ctx context.Context, current *models.Booking, patch storage.Patch) (*models.Booking, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	updated, err := s.store.Update(sctx, current.ID, current.Version, patch)
	if err != nil {
		return nil, s.storeErr("update", err)
	}
	return updated, nil
}

func (s *BookingService) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrConflict
	}
	logger.Log.WithError(err).WithField("op", op).Error("Booking store failure")
	return &StoreError{Op: op, Err: err}
}
