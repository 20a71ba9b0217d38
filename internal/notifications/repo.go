package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

// Repository handles notification persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to notification operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new notification row.
func (r *Repository) Create(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return fmt.Errorf("notification is required")
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

// List returns a page of notifications, newest first, optionally only
// unread ones. The second return value is the cursor for the next page.
func (r *Repository) List(ctx context.Context, studioID uuid.UUID, limit int, cursor *pagination.Cursor, unreadOnly bool) ([]models.Notification, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("studio_id = ?", studioID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Notification
	err := query.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// MarkRead stamps a single unread notification. It reports whether the
// row exists at all so callers can distinguish not-found from already-read.
func (r *Repository) MarkRead(ctx context.Context, studioID, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND studio_id = ? AND read_at IS NULL", id, studioID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND studio_id = ?", id, studioID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkAllRead stamps every unread notification for the studio.
func (r *Repository) MarkAllRead(ctx context.Context, studioID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("studio_id = ? AND read_at IS NULL", studioID).
		UpdateColumn("read_at", now)
	return result.RowsAffected, result.Error
}

// DeleteReadBefore prunes read notifications created before the cutoff.
// Unread rows are kept regardless of age.
func (r *Repository) DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	result := tx.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
