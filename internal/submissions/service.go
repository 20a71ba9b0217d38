package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

type submissionRepository interface {
	FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentSubmission, error)
	FindByAccessToken(ctx context.Context, token string) (*models.ConsentSubmission, error)
	ListByStudio(ctx context.Context, studioID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.ConsentSubmission, error)
	UpdateWithCAS(tx *gorm.DB, submission *models.ConsentSubmission) error
}

type auditRepository interface {
	Append(ctx context.Context, entry *models.ConsentAuditLog) error
	AppendWithTx(tx *gorm.DB, entry *models.ConsentAuditLog) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// VerifyAgeInput carries the staff decision on the age lane.
type VerifyAgeInput struct {
	Verified bool
	Notes    *string
}

// ListFilter narrows a studio's submission list. Nil fields match all rows.
type ListFilter struct {
	TemplateID *uuid.UUID
	Voided     *bool
}

// GuardianConsentInput carries the one-time guardian record.
type GuardianConsentInput struct {
	GuardianName          string
	GuardianRelationship  string
	GuardianPhone         *string
	GuardianEmail         *string
	GuardianSignatureData string
	Notes                 *string
}

// Service exposes staff review of submissions and the client's
// token-based self-service retrieval. Every state transition checks the
// voided guard first and commits alongside its audit entry.
type Service interface {
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*SubmissionDTO, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter, params pagination.Params) ([]SubmissionDTO, string, error)
	VerifyPhotoID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*SubmissionDTO, error)
	VerifyAge(ctx context.Context, actor auth.Actor, id uuid.UUID, input VerifyAgeInput) (*SubmissionDTO, error)
	AddGuardianConsent(ctx context.Context, actor auth.Actor, id uuid.UUID, input GuardianConsentInput) (*SubmissionDTO, error)
	Void(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*SubmissionDTO, error)
	GetByAccessToken(ctx context.Context, token string, ipAddress *string) (*ClientSubmissionDTO, error)
}

type service struct {
	submissions submissionRepository
	audit       auditRepository
	tx          txRunner
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	SubmissionRepo submissionRepository
	AuditRepo      auditRepository
	TxRunner       txRunner
	Logger         *logger.Logger
}

// NewService constructs the submission review service.
func NewService(params ServiceParams) (Service, error) {
	if params.SubmissionRepo == nil {
		return nil, fmt.Errorf("submission repository is required")
	}
	if params.AuditRepo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		submissions: params.SubmissionRepo,
		audit:       params.AuditRepo,
		tx:          params.TxRunner,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*SubmissionDTO, error) {
	submission, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(submission), nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter, params pagination.Params) ([]SubmissionDTO, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.submissions.ListByStudio(ctx, actor.StudioID, filter, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.SubmittedAt, ID: last.ID})
	}

	out := make([]SubmissionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nextCursor, nil
}

// VerifyPhotoID marks the uploaded photo ID as checked by staff. It is
// idempotent: re-verifying leaves the original verification timestamp in
// place, but every invocation is still audited.
func (s *service) VerifyPhotoID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*SubmissionDTO, error) {
	submission, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardVoided(submission); err != nil {
		return nil, err
	}
	if submission.PhotoIDURL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "photo ID has not been uploaded")
	}

	entry := s.staffEntry(submission.ID, enums.AuditActionVerified, actor, nil, nil)

	if submission.PhotoIDVerified {
		if err := s.audit.Append(ctx, entry); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}
		return FromModel(submission), nil
	}

	verifiedAt := s.now().UTC()
	submission.PhotoIDVerified = true
	submission.PhotoIDVerifiedAt = &verifiedAt
	submission.PhotoIDVerifiedBy = &actor.UserID

	if err := s.commit(ctx, submission, entry); err != nil {
		return nil, err
	}
	return FromModel(submission), nil
}

// VerifyAge records the staff decision on the age lane. An underage
// submission cannot be unblocked here; it needs guardian consent.
func (s *service) VerifyAge(ctx context.Context, actor auth.Actor, id uuid.UUID, input VerifyAgeInput) (*SubmissionDTO, error) {
	submission, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardVoided(submission); err != nil {
		return nil, err
	}

	switch submission.AgeStatus {
	case enums.AgeStatusNotApplicable:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "template has no age requirement")
	case enums.AgeStatusUnderagePendingGuardian:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "underage submission requires guardian consent")
	}

	entry := s.staffEntry(submission.ID, enums.AuditActionAgeVerified, actor, input.Notes, nil)

	if submission.AgeVerified && input.Verified {
		if err := s.audit.Append(ctx, entry); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}
		return FromModel(submission), nil
	}

	if input.Verified {
		verifiedAt := s.now().UTC()
		submission.AgeVerified = true
		submission.AgeStatus = enums.AgeStatusVerified
		submission.AgeVerifiedAt = &verifiedAt
	}
	if input.Notes != nil {
		submission.AgeVerificationNotes = input.Notes
	}

	if err := s.commit(ctx, submission, entry); err != nil {
		return nil, err
	}
	return FromModel(submission), nil
}

// AddGuardianConsent attaches the guardian record. It is single-assignment:
// once present the record is immutable and a second call fails.
func (s *service) AddGuardianConsent(ctx context.Context, actor auth.Actor, id uuid.UUID, input GuardianConsentInput) (*SubmissionDTO, error) {
	submission, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardVoided(submission); err != nil {
		return nil, err
	}
	if submission.HasGuardianConsent() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "guardian consent has already been recorded")
	}

	fieldErrs := map[string]string{}
	if strings.TrimSpace(input.GuardianName) == "" {
		fieldErrs["guardianName"] = "Guardian name is required"
	}
	if strings.TrimSpace(input.GuardianRelationship) == "" {
		fieldErrs["guardianRelationship"] = "Guardian relationship is required"
	}
	if strings.TrimSpace(input.GuardianSignatureData) == "" {
		fieldErrs["guardianSignatureData"] = "Guardian signature is required"
	}
	if len(fieldErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid guardian consent").WithDetails(fieldErrs)
	}

	submission.GuardianConsent = &types.GuardianConsent{
		GuardianName:          strings.TrimSpace(input.GuardianName),
		GuardianRelationship:  strings.TrimSpace(input.GuardianRelationship),
		GuardianPhone:         input.GuardianPhone,
		GuardianEmail:         input.GuardianEmail,
		GuardianSignatureData: input.GuardianSignatureData,
		Notes:                 input.Notes,
		ConsentedAt:           s.now().UTC(),
	}

	entry := s.staffEntry(submission.ID, enums.AuditActionGuardianConsentAdded, actor, input.Notes, nil)
	if err := s.commit(ctx, submission, entry); err != nil {
		return nil, err
	}
	return FromModel(submission), nil
}

// Void terminally invalidates a submission. There is no un-void.
func (s *service) Void(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*SubmissionDTO, error) {
	submission, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return nil, err
	}
	if submission.IsVoided {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission is already voided")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a void reason is required")
	}

	voidedAt := s.now().UTC()
	submission.IsVoided = true
	submission.VoidedReason = &reason
	submission.VoidedAt = &voidedAt
	submission.VoidedBy = &actor.UserID

	entry := s.staffEntry(submission.ID, enums.AuditActionVoided, actor, &reason, nil)
	if err := s.commit(ctx, submission, entry); err != nil {
		return nil, err
	}
	return FromModel(submission), nil
}

// GetByAccessToken is the client portal read path. Each retrieval is
// logged as a client access; a failed audit write never blocks the read.
func (s *service) GetByAccessToken(ctx context.Context, token string, ipAddress *string) (*ClientSubmissionDTO, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
	}

	submission, err := s.submissions.FindByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}

	err = s.audit.Append(ctx, &models.ConsentAuditLog{
		SubmissionID:   submission.ID,
		Action:         enums.AuditActionViewed,
		IsClientAccess: true,
		IPAddress:      ipAddress,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "append client view audit entry failed", err)
	}

	return ClientFromModel(submission), nil
}

// commit writes the mutated submission and its audit entry atomically.
// A lost compare-and-swap surfaces as a conflict so the caller can reload.
func (s *service) commit(ctx context.Context, submission *models.ConsentSubmission, entry *models.ConsentAuditLog) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.submissions.UpdateWithCAS(tx, submission); err != nil {
			return err
		}
		return s.audit.AppendWithTx(tx, entry)
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return pkgerrors.New(pkgerrors.CodeConflict, "submission was modified concurrently")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update submission")
	}
	return nil
}

func (s *service) guardVoided(submission *models.ConsentSubmission) error {
	if submission.IsVoided {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "submission is voided")
	}
	return nil
}

func (s *service) staffEntry(submissionID uuid.UUID, action enums.AuditAction, actor auth.Actor, notes *string, ip *string) *models.ConsentAuditLog {
	name := actor.Name
	return &models.ConsentAuditLog{
		SubmissionID:    submissionID,
		Action:          action,
		PerformedBy:     &actor.UserID,
		PerformedByName: &name,
		Notes:           notes,
		IPAddress:       ip,
	}
}

func (s *service) load(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentSubmission, error) {
	submission, err := s.submissions.FindByID(ctx, studioID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	return submission, nil
}
