package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
)

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:          "b-1",
		Name:        "Asha <script>",
		Phone:       "9876543210",
		Email:       "asha@example.com",
		Address:     "12 MG Road",
		PostalCode:  "560001",
		ServiceType: "Termite Control",
		Urgency:     models.UrgencyEmergency,
		Date:        "2030-01-16",
		Time:        "10:30",
		Status:      models.BookingStatusConfirmed,
	}
}

func TestTemplates_EscapeCustomerInput(t *testing.T) {
	ts := NewTemplateService("Home Services", staffEmail)
	e := ts.NewBookingCustomer(sampleBooking())

	assert.Equal(t, "asha@example.com", e.To)
	assert.Equal(t, TemplateNewCustomer, e.Template)
	assert.NotContains(t, e.HTML, "<script>")
	assert.Contains(t, e.HTML, "Asha &lt;script&gt;")
	assert.Contains(t, e.HTML, "Emergency (Same Day)")
	assert.Contains(t, e.HTML, "Wednesday, January 16, 2030")
}

func TestTemplates_StatusUpdate(t *testing.T) {
	ts := NewTemplateService("Home Services", staffEmail)
	b := sampleBooking()

	for status, subject := range map[models.BookingStatus]string{
		models.BookingStatusConfirmed: "Booking Confirmed - Home Services",
		models.BookingStatusCompleted: "Service Completed - Home Services",
		models.BookingStatusCancelled: "Booking Cancelled - Home Services",
	} {
		b.Status = status
		e, ok := ts.StatusUpdate(b, "")
		assert.True(t, ok)
		assert.Equal(t, subject, e.Subject)
		assert.NotContains(t, e.HTML, "Reason")
	}

	b.Status = models.BookingStatusPending
	_, ok := ts.StatusUpdate(b, "")
	assert.False(t, ok)
}

func TestTemplates_OTPAndDigest(t *testing.T) {
	ts := NewTemplateService("Home Services", staffEmail)

	otp := ts.OTP("a@b.com", "654321", 5*time.Minute)
	assert.Contains(t, otp.HTML, "654321")
	assert.Contains(t, otp.HTML, "5 minutes")

	other := sampleBooking()
	other.Name = "Ravi"
	digest := ts.Digest("2030-01-16", []*models.Booking{sampleBooking(), other}, &models.BookingStats{Confirmed: 2, Total: 2})
	assert.Equal(t, staffEmail, digest.To)
	assert.Contains(t, digest.HTML, "2 confirmed booking(s)")
	assert.Contains(t, digest.HTML, "Ravi")
	assert.Contains(t, digest.HTML, "Total: 2")
}

func TestTemplates_StaffMailDisabled(t *testing.T) {
	ts := NewTemplateService("Home Services", "")
	assert.Empty(t, ts.NewBookingStaff(sampleBooking()).To)
	assert.Empty(t, ts.ReminderStaff(sampleBooking()).To)
}
