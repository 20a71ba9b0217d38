package signing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/internal/fields"
	"github.com/simmonsmd7/inkflow-sub002/internal/templates"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/security"
)

type studioRepository interface {
	FindActiveBySlug(ctx context.Context, slug string) (*models.Studio, error)
}

type templateRepository interface {
	FindActiveByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentTemplate, error)
	IncrementUseCount(ctx context.Context, id uuid.UUID) error
}

type submissionWriter interface {
	CreateWithTx(tx *gorm.DB, submission *models.ConsentSubmission) error
}

type auditWriter interface {
	AppendWithTx(tx *gorm.DB, entry *models.ConsentAuditLog) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type underageNotifier interface {
	NotifyUnderageSigning(ctx context.Context, submission *models.ConsentSubmission)
}

// Service accepts public signing requests.
type Service interface {
	GetPublicTemplate(ctx context.Context, studioSlug string, templateID uuid.UUID) (*templates.PublicTemplateDTO, error)
	Sign(ctx context.Context, studioSlug string, templateID uuid.UUID, input SignInput) (*SignResult, error)
}

type service struct {
	studios     studioRepository
	templates   templateRepository
	submissions submissionWriter
	audit       auditWriter
	tx          txRunner
	notifier    underageNotifier
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build a signing service.
type ServiceParams struct {
	StudioRepo     studioRepository
	TemplateRepo   templateRepository
	SubmissionRepo submissionWriter
	AuditRepo      auditWriter
	TxRunner       txRunner
	Notifier       underageNotifier
	Logger         *logger.Logger
}

// NewService constructs the signing service.
func NewService(params ServiceParams) (Service, error) {
	if params.StudioRepo == nil {
		return nil, fmt.Errorf("studio repository is required")
	}
	if params.TemplateRepo == nil {
		return nil, fmt.Errorf("template repository is required")
	}
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
		studios:     params.StudioRepo,
		templates:   params.TemplateRepo,
		submissions: params.SubmissionRepo,
		audit:       params.AuditRepo,
		tx:          params.TxRunner,
		notifier:    params.Notifier,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) GetPublicTemplate(ctx context.Context, studioSlug string, templateID uuid.UUID) (*templates.PublicTemplateDTO, error) {
	_, template, err := s.resolve(ctx, studioSlug, templateID)
	if err != nil {
		return nil, err
	}
	return templates.PublicFromModel(template), nil
}

func (s *service) Sign(ctx context.Context, studioSlug string, templateID uuid.UUID, input SignInput) (*SignResult, error) {
	studio, template, err := s.resolve(ctx, studioSlug, templateID)
	if err != nil {
		return nil, err
	}

	signedAt := s.now().UTC()
	hasSignature := input.SignatureData != nil && strings.TrimSpace(*input.SignatureData) != ""

	requirements := fields.Requirements{
		AgeRequirement: template.AgeRequirement,
		Signature:      template.RequiresSignature,
	}
	fieldErrs := fields.Validate(template.Fields, requirements, fields.Input{
		ClientName:   input.ClientName,
		ClientEmail:  input.ClientEmail,
		DateOfBirth:  input.DateOfBirth,
		Responses:    input.Responses,
		HasSignature: hasSignature,
		SignedAt:     signedAt,
	})
	if len(fieldErrs) > 0 {
		// Whole-submission reject: nothing is persisted on any error.
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission failed validation").WithDetails(map[string]string(fieldErrs))
	}

	accessToken, err := security.GenerateAccessToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate access token")
	}

	submission := s.buildSubmission(studio, template, input, accessToken, signedAt, hasSignature)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.submissions.CreateWithTx(tx, submission); err != nil {
			return err
		}
		return s.audit.AppendWithTx(tx, &models.ConsentAuditLog{
			SubmissionID:   submission.ID,
			Action:         enums.AuditActionCreated,
			IsClientAccess: true,
			IPAddress:      input.IPAddress,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist submission")
	}

	// Advisory counter; a lost increment under concurrency is acceptable.
	if err := s.templates.IncrementUseCount(ctx, template.ID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "increment template use count failed", err)
	}

	if submission.AgeStatus == enums.AgeStatusUnderagePendingGuardian && s.notifier != nil {
		s.notifier.NotifyUnderageSigning(ctx, submission)
	}

	return &SignResult{
		SubmissionID: submission.ID,
		AccessToken:  accessToken,
		SubmittedAt:  submission.SubmittedAt,
	}, nil
}

func (s *service) buildSubmission(studio *models.Studio, template *models.ConsentTemplate, input SignInput, accessToken string, signedAt time.Time, hasSignature bool) *models.ConsentSubmission {
	submission := &models.ConsentSubmission{
		StudioID:        studio.ID,
		TemplateID:      template.ID,
		TemplateVersion: template.Version,
		FieldsSnapshot:  template.Fields.Clone(),

		RequiresSignature: template.RequiresSignature,
		RequiresPhotoID:   template.RequiresPhotoID,

		ClientName:      strings.TrimSpace(input.ClientName),
		ClientEmail:     strings.ToLower(strings.TrimSpace(input.ClientEmail)),
		ClientPhone:     input.ClientPhone,
		Responses:       copyResponses(input.Responses),
		AccessToken:     accessToken,
		IPAddress:       input.IPAddress,
		AgeStatus:       enums.AgeStatusNotApplicable,
		SubmittedAt:     signedAt,
	}

	if hasSignature {
		submission.SignatureData = input.SignatureData
		ts := signedAt
		submission.SignatureTimestamp = &ts
	}

	if input.DateOfBirth != nil {
		dob := input.DateOfBirth.UTC()
		submission.ClientDateOfBirth = &dob
		age := fields.AgeAt(dob, signedAt)
		submission.AgeAtSigning = &age
	}

	if template.AgeRequirement > 0 {
		// Validation guaranteed a DOB. An underage signer is accepted
		// and routed to the guardian-consent lane rather than rejected.
		if submission.AgeAtSigning != nil && *submission.AgeAtSigning < template.AgeRequirement {
			submission.AgeStatus = enums.AgeStatusUnderagePendingGuardian
		} else {
			submission.AgeStatus = enums.AgeStatusPending
		}
	}

	return submission
}

func (s *service) resolve(ctx context.Context, studioSlug string, templateID uuid.UUID) (*models.Studio, *models.ConsentTemplate, error) {
	studio, err := s.studios.FindActiveBySlug(ctx, studioSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "studio not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load studio")
	}

	// Inactive templates surface as not-found on the public route.
	template, err := s.templates.FindActiveByID(ctx, studio.ID, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load template")
	}
	return studio, template, nil
}

func copyResponses(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
