package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// MemoryStore holds all bookings in memory. Used for local runs and tests.
type MemoryStore struct {
	bookings map[string]*models.Booking
	order    map[string]int // insertion sequence, breaks created_at ties

	mu    sync.RWMutex
	seq   int
	clock utils.Clock
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore(clock utils.Clock) *MemoryStore {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &MemoryStore{
		bookings: make(map[string]*models.Booking),
		order:    make(map[string]int),
		clock:    clock,
	}
}

func (m *MemoryStore) Insert(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	b.ID = uuid.NewString()
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now

	stored := *b
	m.seq++
	m.bookings[b.ID] = &stored
	m.order[b.ID] = m.seq
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemoryStore) Find(_ context.Context, filter Filter, order SortOrder) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Booking
	for _, b := range m.bookings {
		if filter.Matches(b) {
			out := *b
			result = append(result, &out)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if order == SortScheduleAsc {
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			if a.Time != b.Time {
				return a.Time < b.Time
			}
			return m.order[a.ID] < m.order[b.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return m.order[a.ID] > m.order[b.ID]
	})

	return result, nil
}

func (m *MemoryStore) Count(_ context.Context, filter Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, b := range m.bookings {
		if filter.Matches(b) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, expectedVersion int64, patch Patch) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Version != expectedVersion {
		return nil, ErrConflict
	}

	patch.apply(b)
	b.Version++
	b.UpdatedAt = m.clock.Now()

	out := *b
	return &out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
