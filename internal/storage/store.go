package storage

import (
	"context"
	"errors"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
)

var (
	// ErrNotFound is returned when no booking has the requested id.
	ErrNotFound = errors.New("booking not found")
	// ErrConflict is returned when an update's expected version is stale.
	ErrConflict = errors.New("booking was modified concurrently")
)

// SortOrder selects how Find orders its results
type SortOrder int

const (
	// SortNewestFirst orders by creation time, newest first.
	SortNewestFirst SortOrder = iota
	// SortScheduleAsc orders by date then time, earliest first.
	SortScheduleAsc
)

// Filter narrows Find and Count. Zero fields match everything.
type Filter struct {
	Status models.BookingStatus
	Date   string
	Email  string
}

// Matches reports whether b satisfies every set field of f.
func (f Filter) Matches(b *models.Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.Email != "" && b.Email != f.Email {
		return false
	}
	return true
}

// Patch lists the mutable booking fields. Nil fields are left untouched.
type Patch struct {
	Status               *models.BookingStatus
	Date                 *string
	Time                 *string
	ReminderSentFor      *string
	StaffReminderSentFor *string
}

func (p Patch) apply(b *models.Booking) {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Date != nil {
		b.Date = *p.Date
	}
	if p.Time != nil {
		b.Time = *p.Time
	}
	if p.ReminderSentFor != nil {
		b.ReminderSentFor = *p.ReminderSentFor
	}
	if p.StaffReminderSentFor != nil {
		b.StaffReminderSentFor = *p.StaffReminderSentFor
	}
}

// Store defines the interface for booking persistence
type Store interface {
	// Insert persists a new booking. ID, Version and timestamps are assigned
	// by the store and written back into b.
	Insert(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Find(ctx context.Context, filter Filter, order SortOrder) ([]*models.Booking, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Update applies patch only if the stored version equals expectedVersion,
	// returning the updated booking with its version incremented.
	Update(ctx context.Context, id string, expectedVersion int64, patch Patch) (*models.Booking, error)
	Ping(ctx context.Context) error
}
