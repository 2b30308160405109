package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
)

// DatabaseStore persists bookings in PostgreSQL through gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) Insert(ctx context.Context, b *models.Booking) error {
	now := time.Now()
	b.ID = uuid.NewString()
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *DatabaseStore) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	return &b, nil
}

func (s *DatabaseStore) Find(ctx context.Context, filter Filter, order SortOrder) ([]*models.Booking, error) {
	q := s.scoped(ctx, filter)
	if order == SortScheduleAsc {
		q = q.Order("date ASC").Order("time ASC").Order("created_at ASC")
	} else {
		q = q.Order("created_at DESC")
	}

	var bookings []*models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *DatabaseStore) Count(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	if err := s.scoped(ctx, filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (s *DatabaseStore) Update(ctx context.Context, id string, expectedVersion int64, patch Patch) (*models.Booking, error) {
	updates := map[string]interface{}{
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Date != nil {
		updates["date"] = *patch.Date
	}
	if patch.Time != nil {
		updates["time"] = *patch.Time
	}
	if patch.ReminderSentFor != nil {
		updates["reminder_sent_for"] = *patch.ReminderSentFor
	}
	if patch.StaffReminderSentFor != nil {
		updates["staff_reminder_sent_for"] = *patch.StaffReminderSentFor
	}

	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update booking %s: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		// Distinguish a missing row from a stale version.
		if _, err := s.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}

	return s.FindByID(ctx, id)
}

func (s *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *DatabaseStore) scoped(ctx context.Context, filter Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	return q
}
