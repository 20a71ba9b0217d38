package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

type auditRepository interface {
	ListBySubmission(ctx context.Context, submissionID uuid.UUID, limit int, cursor *pagination.SeqCursor) ([]models.ConsentAuditLog, error)
}

// Service exposes the read side of the audit trail. Writes happen
// through the repository inside the transaction that changes state.
type Service interface {
	List(ctx context.Context, submissionID uuid.UUID, params pagination.Params) ([]EntryDTO, string, error)
}

type service struct {
	repo auditRepository
}

// NewService builds an audit read service.
func NewService(repo auditRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, submissionID uuid.UUID, params pagination.Params) ([]EntryDTO, string, error) {
	cursor, err := pagination.ParseSeqCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListBySubmission(ctx, submissionID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeSeqCursor(pagination.SeqCursor{Seq: last.Seq})
	}

	out := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nextCursor, nil
}
