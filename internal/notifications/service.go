package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, studioID uuid.UUID, limit int, cursor *pagination.Cursor, unreadOnly bool) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, studioID, id uuid.UUID, now time.Time) (bool, error)
	MarkAllRead(ctx context.Context, studioID uuid.UUID, now time.Time) (int64, error)
}

// ListParams configures notification pagination.
type ListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps a page of notifications and the cursor for the next.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// Service exposes staff-facing notification reads plus the hooks other
// workflows use to raise notifications.
type Service interface {
	List(ctx context.Context, actor auth.Actor, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error)
	NotifyUnderageSigning(ctx context.Context, submission *models.ConsentSubmission)
}

type service struct {
	repo notificationRepository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the notification service.
func NewService(repo notificationRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, params ListParams) (*ListResult, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.List(ctx, actor.StudioID, params.Limit, cursor, params.UnreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id is required")
	}
	found, err := s.repo.MarkRead(ctx, actor.StudioID, id, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, actor.StudioID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// NotifyUnderageSigning raises a remediation notification for staff when
// an underage client signs. Best-effort: the signing itself has already
// committed, so a failed insert is logged and dropped.
func (s *service) NotifyUnderageSigning(ctx context.Context, submission *models.ConsentSubmission) {
	if submission == nil {
		return
	}

	age := 0
	if submission.AgeAtSigning != nil {
		age = *submission.AgeAtSigning
	}

	submissionID := submission.ID
	notification := &models.Notification{
		StudioID:     submission.StudioID,
		SubmissionID: &submissionID,
		Type:         enums.NotificationTypeUnderageSigning,
		Title:        "Underage signing needs guardian consent",
		Message:      fmt.Sprintf("%s (age %d) signed a consent form and requires guardian consent.", submission.ClientName, age),
	}
	if err := s.repo.Create(ctx, notification); err != nil && s.logg != nil {
		s.logg.Error(ctx, "create underage notification failed", err)
	}
}
