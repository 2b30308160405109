package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

func newTestStore() (*MemoryStore, *utils.FakeClock) {
	clock := utils.NewFakeClock(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
	return NewMemoryStore(clock), clock
}

func insert(t *testing.T, s *MemoryStore, date, clock string, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Name:   "Asha",
		Email:  "asha@example.com",
		Date:   date,
		Time:   clock,
		Status: status,
	}
	require.NoError(t, s.Insert(context.Background(), b))
	return b
}

func TestMemoryStore_InsertAssignsIdentity(t *testing.T) {
	s, _ := newTestStore()
	b := insert(t, s, "2026-01-15", "10:00", models.BookingStatusPending)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, int64(1), b.Version)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := s.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	// Returned values are copies.
	got.Name = "changed"
	again, _ := s.FindByID(context.Background(), b.ID)
	assert.Equal(t, "Asha", again.Name)
}

func TestMemoryStore_FindByIDMissing(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_FindOrdering(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	first := insert(t, s, "2026-01-20", "09:00", models.BookingStatusPending)
	clock.Advance(time.Minute)
	second := insert(t, s, "2026-01-15", "14:00", models.BookingStatusConfirmed)
	clock.Advance(time.Minute)
	third := insert(t, s, "2026-01-15", "08:30", models.BookingStatusPending)
	// Same created_at as third.
	fourth := insert(t, s, "2026-01-15", "08:30", models.BookingStatusPending)

	newest, err := s.Find(ctx, Filter{}, SortNewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{fourth.ID, third.ID, second.ID, first.ID}, ids(newest))

	schedule, err := s.Find(ctx, Filter{}, SortScheduleAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, fourth.ID, second.ID, first.ID}, ids(schedule))

	pending, err := s.Find(ctx, Filter{Status: models.BookingStatusPending}, SortNewestFirst)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	n, err := s.Count(ctx, Filter{Date: "2026-01-15"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryStore_UpdateVersioning(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	b := insert(t, s, "2026-01-15", "10:00", models.BookingStatusPending)

	confirmed := models.BookingStatusConfirmed
	updated, err := s.Update(ctx, b.ID, 1, Patch{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "10:00", updated.Time)

	cancelled := models.BookingStatusCancelled
	_, err = s.Update(ctx, b.ID, 1, Patch{Status: &cancelled})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Update(ctx, "missing", 1, Patch{Status: &cancelled})
	assert.ErrorIs(t, err, ErrNotFound)

	got, _ := s.FindByID(ctx, b.ID)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
}

func TestFilterMatches(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusConfirmed, Date: "2026-01-16", Email: "a@b.com"}

	assert.True(t, Filter{}.Matches(b))
	assert.True(t, Filter{Status: models.BookingStatusConfirmed, Date: "2026-01-16"}.Matches(b))
	assert.False(t, Filter{Status: models.BookingStatusPending}.Matches(b))
	assert.False(t, Filter{Email: "x@y.com"}.Matches(b))
}

func ids(bs []*models.Booking) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}
