package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

type stubAuditRepo struct {
	entries    []models.ConsentAuditLog
	gotLimit   int
	gotCursor  *pagination.SeqCursor
	listCalled bool
}

func (s *stubAuditRepo) ListBySubmission(_ context.Context, _ uuid.UUID, limit int, cursor *pagination.SeqCursor) ([]models.ConsentAuditLog, error) {
	s.listCalled = true
	s.gotLimit = limit
	s.gotCursor = cursor
	if len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func makeEntries(n int) []models.ConsentAuditLog {
	subID := uuid.New()
	out := make([]models.ConsentAuditLog, n)
	for i := 0; i < n; i++ {
		out[i] = models.ConsentAuditLog{
			ID:           uuid.New(),
			SubmissionID: subID,
			Action:       enums.AuditActionViewed,
			Seq:          int64(n - i),
			CreatedAt:    time.Now().Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestListReturnsPageAndCursor(t *testing.T) {
	repo := &stubAuditRepo{entries: makeEntries(5)}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	entries, next, err := svc.List(context.Background(), uuid.New(), pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if next == "" {
		t.Fatal("expected next cursor for remaining entries")
	}
	if repo.gotLimit != 4 {
		t.Fatalf("expected buffered limit 4, got %d", repo.gotLimit)
	}

	cursor, err := pagination.ParseSeqCursor(next)
	if err != nil {
		t.Fatalf("parse next cursor: %v", err)
	}
	if cursor.Seq != 3 {
		t.Fatalf("expected cursor seq 3, got %d", cursor.Seq)
	}
}

func TestListLastPageHasNoCursor(t *testing.T) {
	repo := &stubAuditRepo{entries: makeEntries(2)}
	svc, _ := NewService(repo)

	entries, next, err := svc.List(context.Background(), uuid.New(), pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if next != "" {
		t.Fatalf("expected empty cursor, got %q", next)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&stubAuditRepo{})

	_, _, err := svc.List(context.Background(), uuid.New(), pagination.Params{Cursor: "!!!"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
