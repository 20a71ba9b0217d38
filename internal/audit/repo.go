package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

// Repository appends and reads audit entries. There is no update or
// delete path; the table is append-only.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to audit-log operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one entry.
func (r *Repository) Append(ctx context.Context, entry *models.ConsentAuditLog) error {
	if entry == nil {
		return fmt.Errorf("audit entry is required")
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendWithTx inserts one entry inside the caller's transaction. State
// transitions use this so the submission update and its audit entry
// commit together.
func (r *Repository) AppendWithTx(tx *gorm.DB, entry *models.ConsentAuditLog) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if entry == nil {
		return fmt.Errorf("audit entry is required")
	}
	return tx.Create(entry).Error
}

// ListBySubmission returns entries for one submission, newest first,
// ordered by created_at with the insertion sequence breaking ties.
func (r *Repository) ListBySubmission(ctx context.Context, submissionID uuid.UUID, limit int, cursor *pagination.SeqCursor) ([]models.ConsentAuditLog, error) {
	query := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC, seq DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("seq < ?", cursor.Seq)
	}

	var entries []models.ConsentAuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
