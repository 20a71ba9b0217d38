package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/internal/fields"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

type templateRepository interface {
	Create(ctx context.Context, template *models.ConsentTemplate) error
	FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentTemplate, error)
	ListByStudio(ctx context.Context, studioID uuid.UUID) ([]models.ConsentTemplate, error)
	Update(ctx context.Context, template *models.ConsentTemplate) error
	Delete(ctx context.Context, studioID, id uuid.UUID) error
	ClearDefault(ctx context.Context, studioID, exceptID uuid.UUID) error
	CountSubmissions(ctx context.Context, templateID uuid.UUID) (int64, error)
}

// Service exposes staff-facing template operations.
type Service interface {
	List(ctx context.Context, studioID uuid.UUID) ([]TemplateDTO, error)
	Get(ctx context.Context, studioID, id uuid.UUID) (*TemplateDTO, error)
	Create(ctx context.Context, actor auth.Actor, input CreateTemplateInput) (*TemplateDTO, error)
	CreateFromCatalog(ctx context.Context, actor auth.Actor, catalogKey string) (*TemplateDTO, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateTemplateInput) (*TemplateDTO, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo templateRepository
}

// NewService builds a template service with the provided repository.
func NewService(repo templateRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("template repository required")
	}
	return &service{repo: repo}, nil
}

// CreateTemplateInput captures the data for a new template.
type CreateTemplateInput struct {
	Name              string
	Description       *string
	HeaderText        *string
	FooterText        *string
	Fields            types.FieldList
	RequiresSignature bool
	RequiresPhotoID   bool
	AgeRequirement    int
	IsActive          *bool
	IsDefault         bool
}

// UpdateTemplateInput captures the allowed template mutations. Nil means
// leave the attribute unchanged.
type UpdateTemplateInput struct {
	Name              *string
	Description       *string
	HeaderText        *string
	FooterText        *string
	Fields            *types.FieldList
	RequiresSignature *bool
	RequiresPhotoID   *bool
	AgeRequirement    *int
	IsActive          *bool
	IsDefault         *bool
}

func (s *service) List(ctx context.Context, studioID uuid.UUID) ([]TemplateDTO, error) {
	rows, err := s.repo.ListByStudio(ctx, studioID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list templates")
	}
	out := make([]TemplateDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, studioID, id uuid.UUID) (*TemplateDTO, error) {
	template, err := s.load(ctx, studioID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(template), nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateTemplateInput) (*TemplateDTO, error) {
	if !actor.CanManageTemplates() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only studio owners can manage templates")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template name is required")
	}
	if input.AgeRequirement < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age requirement cannot be negative")
	}
	if defErrs := fields.ValidateDefinition(input.Fields); len(defErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid field definition").WithDetails(toDetails(defErrs))
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	template := &models.ConsentTemplate{
		StudioID:          actor.StudioID,
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		HeaderText:        input.HeaderText,
		FooterText:        input.FooterText,
		Fields:            input.Fields.Clone(),
		RequiresSignature: input.RequiresSignature,
		RequiresPhotoID:   input.RequiresPhotoID,
		AgeRequirement:    input.AgeRequirement,
		IsActive:          isActive,
		IsDefault:         input.IsDefault,
		Version:           1,
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create template")
	}
	if template.IsDefault {
		if err := s.repo.ClearDefault(ctx, actor.StudioID, template.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default flag")
		}
	}
	return FromModel(template), nil
}

func (s *service) CreateFromCatalog(ctx context.Context, actor auth.Actor, catalogKey string) (*TemplateDTO, error) {
	if !actor.CanManageTemplates() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only studio owners can manage templates")
	}
	entry, ok := CatalogEntryByKey(catalogKey)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog entry not found")
	}

	template := &models.ConsentTemplate{
		StudioID:          actor.StudioID,
		Name:              entry.Name,
		Description:       strRef(entry.Description),
		Fields:            entry.Fields.Clone(),
		RequiresSignature: entry.RequiresSignature,
		RequiresPhotoID:   entry.RequiresPhotoID,
		AgeRequirement:    entry.AgeRequirement,
		IsActive:          true,
		Version:           1,
		CatalogKey:        strRef(entry.Key),
	}
	if entry.HeaderText != "" {
		template.HeaderText = strRef(entry.HeaderText)
	}
	if entry.FooterText != "" {
		template.FooterText = strRef(entry.FooterText)
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create template from catalog")
	}
	return FromModel(template), nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateTemplateInput) (*TemplateDTO, error) {
	if !actor.CanManageTemplates() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only studio owners can manage templates")
	}

	template, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return nil, err
	}

	if input.Fields != nil {
		if defErrs := fields.ValidateDefinition(*input.Fields); len(defErrs) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid field definition").WithDetails(toDetails(defErrs))
		}
	}
	if input.AgeRequirement != nil && *input.AgeRequirement < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age requirement cannot be negative")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template name is required")
	}

	contentChanged := applyUpdate(template, input)
	if contentChanged {
		template.Version++
	}

	if err := s.repo.Update(ctx, template); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update template")
	}
	if template.IsDefault {
		if err := s.repo.ClearDefault(ctx, actor.StudioID, template.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default flag")
		}
	}
	return FromModel(template), nil
}

// applyUpdate mutates the model in place and reports whether any
// content-affecting attribute changed. Name, description, and the
// active/default flags are presentation-level and never bump the version.
func applyUpdate(template *models.ConsentTemplate, input UpdateTemplateInput) bool {
	contentChanged := false

	if input.Name != nil {
		template.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		template.Description = input.Description
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}
	if input.IsDefault != nil {
		template.IsDefault = *input.IsDefault
	}

	if input.HeaderText != nil && !equalStrPtr(template.HeaderText, input.HeaderText) {
		template.HeaderText = input.HeaderText
		contentChanged = true
	}
	if input.FooterText != nil && !equalStrPtr(template.FooterText, input.FooterText) {
		template.FooterText = input.FooterText
		contentChanged = true
	}
	if input.Fields != nil && !equalFields(template.Fields, *input.Fields) {
		template.Fields = input.Fields.Clone()
		contentChanged = true
	}
	if input.RequiresSignature != nil && template.RequiresSignature != *input.RequiresSignature {
		template.RequiresSignature = *input.RequiresSignature
		contentChanged = true
	}
	if input.RequiresPhotoID != nil && template.RequiresPhotoID != *input.RequiresPhotoID {
		template.RequiresPhotoID = *input.RequiresPhotoID
		contentChanged = true
	}
	if input.AgeRequirement != nil && template.AgeRequirement != *input.AgeRequirement {
		template.AgeRequirement = *input.AgeRequirement
		contentChanged = true
	}

	return contentChanged
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.CanManageTemplates() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only studio owners can manage templates")
	}

	template, err := s.load(ctx, actor.StudioID, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountSubmissions(ctx, template.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count submissions")
	}

	// Referenced templates are deactivated, never hard-deleted, so
	// historical submissions keep a resolvable origin.
	if count > 0 {
		template.IsActive = false
		template.IsDefault = false
		if err := s.repo.Update(ctx, template); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate template")
		}
		return nil
	}

	if err := s.repo.Delete(ctx, actor.StudioID, template.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete template")
	}
	return nil
}

func (s *service) load(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentTemplate, error) {
	template, err := s.repo.FindByID(ctx, studioID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load template")
	}
	return template, nil
}

func toDetails(errs fields.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFields(a, b types.FieldList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalField(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalField(a, b types.FormField) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Label != b.Label || a.Required != b.Required || a.Order != b.Order {
		return false
	}
	if !equalStrPtr(a.Content, b.Content) || !equalStrPtr(a.Placeholder, b.Placeholder) || !equalStrPtr(a.HelpText, b.HelpText) {
		return false
	}
	if len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	return true
}
