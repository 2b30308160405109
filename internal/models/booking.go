package models

import (
	"strings"
	"time"
)

// Booking is a customer's request for a service visit
type Booking struct {
	ID string `json:"id" gorm:"primaryKey;type:varchar(64)"`

	// Contact
	Name       string `json:"name" gorm:"not null"`
	Phone      string `json:"phone" gorm:"not null"`
	Email      string `json:"email" gorm:"not null;index"`
	Address    string `json:"address" gorm:"type:text;not null"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(16);not null"`

	// Service
	ServiceType  string  `json:"service_type" gorm:"not null"`
	Urgency      Urgency `json:"urgency" gorm:"type:varchar(16);not null;default:Normal"`
	Instructions string  `json:"instructions" gorm:"type:text"`

	// Schedule, stored as plain calendar values (YYYY-MM-DD, HH:MM)
	Date string `json:"date" gorm:"type:varchar(10);index"`
	Time string `json:"time" gorm:"type:varchar(8)"`

	// Lifecycle
	Status   BookingStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Verified bool          `json:"verified"`
	Version  int64         `json:"version" gorm:"not null;default:1"`

	// Dates the customer and staff reminders went out for
	ReminderSentFor      string `json:"reminder_sent_for,omitempty" gorm:"type:varchar(10)"`
	StaffReminderSentFor string `json:"staff_reminder_sent_for,omitempty" gorm:"type:varchar(10)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingStatus is the closed set of lifecycle states
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// AllBookingStatuses returns every status in lifecycle order.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}
}

// ParseBookingStatus accepts any casing ("Pending", "pending") and rejects
// everything outside the enum.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	return status, status.IsValid()
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status accepts no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo reports whether setStatus may move a booking from s to next.
// Rescheduling a confirmed booking is a separate operation and is not covered here.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled || next == BookingStatusCompleted
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled || next == BookingStatusCompleted
	default:
		return false
	}
}

// Urgency levels offered on the booking form
type Urgency string

const (
	UrgencyNormal    Urgency = "Normal"
	UrgencyUrgent    Urgency = "Urgent"
	UrgencyEmergency Urgency = "Emergency"
)

// ParseUrgency normalises form labels such as "Urgent (1-2 days)" by their
// first word. An empty value defaults to Normal.
func ParseUrgency(s string) (Urgency, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return UrgencyNormal, true
	}
	for _, u := range []Urgency{UrgencyNormal, UrgencyUrgent, UrgencyEmergency} {
		if strings.EqualFold(fields[0], string(u)) {
			return u, true
		}
	}
	return "", false
}

// Label is the human readable form used in emails.
func (u Urgency) Label() string {
	switch u {
	case UrgencyUrgent:
		return "Urgent (1-2 days)"
	case UrgencyEmergency:
		return "Emergency (Same Day)"
	default:
		return "Normal (3-5 days)"
	}
}
