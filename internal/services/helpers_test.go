package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/storage"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

const staffEmail = "staff@example.com"

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []Email
	failTo map[string]bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failTo: map[string]bool{}}
}

func (r *recordingNotifier) Send(_ context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTo[to] {
		return errors.New("mail server unavailable")
	}
	r.sent = append(r.sent, Email{To: to, Subject: subject, HTML: html})
	return nil
}

func (r *recordingNotifier) fail(to string) {
	r.mu.Lock()
	r.failTo[to] = true
	r.mu.Unlock()
}

func (r *recordingNotifier) emails() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Email(nil), r.sent...)
}

func (r *recordingNotifier) withSubject(prefix string) []Email {
	var out []Email
	for _, e := range r.emails() {
		if strings.HasPrefix(e.Subject, prefix) {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	clock      *utils.FakeClock
	store      *storage.MemoryStore
	notifier   *recordingNotifier
	dispatcher *Dispatcher
	otp        *OTPService
	bookings   *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := utils.NewFakeClock(time.Date(2030, 1, 15, 10, 0, 0, 0, time.Local))
	store := storage.NewMemoryStore(clock)
	notifier := newRecordingNotifier()
	dispatcher := NewDispatcher(notifier, time.Second)
	templates := NewTemplateService("Home Services", staffEmail)
	otp := NewOTPService(NewCacheVerificationStore(), templates, dispatcher, clock, DefaultOTPTTL)
	otp.generate = func() (string, error) { return "123456", nil }
	area := NewServiceArea([]string{"560001", "560002"})

	return &fixture{
		clock:      clock,
		store:      store,
		notifier:   notifier,
		dispatcher: dispatcher,
		otp:        otp,
		bookings:   NewBookingService(store, otp, area, templates, dispatcher, clock, time.Second),
	}
}

func (f *fixture) verify(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, f.otp.Issue(context.Background(), email))
	require.NoError(t, f.otp.Check(email, "123456"))
}

func (f *fixture) input(email string) BookingInput {
	return BookingInput{
		FullName:       "Asha Rao",
		PhoneNumber:    "9876543210",
		Email:          email,
		ServiceAddress: "12 MG Road",
		Pincode:        "560001",
		ServiceType:    "Termite Control",
		Urgency:        "Urgent (1-2 days)",
		Date:           "2030-01-16",
		Time:           "10:30",
		Description:    "Kitchen cabinets",
	}
}

// seed inserts a booking directly in the given status.
func (f *fixture) seed(t *testing.T, status models.BookingStatus, date string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Name:        "Ravi",
		Phone:       "9000000000",
		Email:       "ravi@example.com",
		Address:     "1 Park St",
		PostalCode:  "560002",
		ServiceType: "Pest Control",
		Urgency:     models.UrgencyNormal,
		Date:        date,
		Time:        "09:00",
		Status:      status,
	}
	require.NoError(t, f.store.Insert(context.Background(), b))
	return b
}
