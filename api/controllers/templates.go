package controllers

import (
	"net/http"

	"github.com/simmonsmd7/inkflow-sub002/api/middleware"
	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	"github.com/simmonsmd7/inkflow-sub002/api/validators"
	"github.com/simmonsmd7/inkflow-sub002/internal/templates"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

type createTemplateBody struct {
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Description       *string         `json:"description,omitempty"`
	HeaderText        *string         `json:"header_text,omitempty"`
	FooterText        *string         `json:"footer_text,omitempty"`
	Fields            types.FieldList `json:"fields" validate:"required"`
	RequiresSignature bool            `json:"requires_signature"`
	RequiresPhotoID   bool            `json:"requires_photo_id"`
	AgeRequirement    int             `json:"age_requirement" validate:"gte=0,lte=150"`
	IsActive          *bool           `json:"is_active,omitempty"`
	IsDefault         bool            `json:"is_default"`
}

type updateTemplateBody struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"description,omitempty"`
	HeaderText        *string          `json:"header_text,omitempty"`
	FooterText        *string          `json:"footer_text,omitempty"`
	Fields            *types.FieldList `json:"fields,omitempty"`
	RequiresSignature *bool            `json:"requires_signature,omitempty"`
	RequiresPhotoID   *bool            `json:"requires_photo_id,omitempty"`
	AgeRequirement    *int             `json:"age_requirement,omitempty" validate:"omitempty,gte=0,lte=150"`
	IsActive          *bool            `json:"is_active,omitempty"`
	IsDefault         *bool            `json:"is_default,omitempty"`
}

type createFromCatalogBody struct {
	CatalogKey string `json:"catalog_key" validate:"required"`
}

// ListTemplates returns every template for the actor's studio.
func ListTemplates(svc templates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		list, err := svc.List(r.Context(), actor.StudioID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetTemplate returns one template.
func GetTemplate(svc templates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := validators.UUIDParam(r, "templateID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), actor.StudioID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CreateTemplate creates a custom template. Owner only.
func CreateTemplate(svc templates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createTemplateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), actor, templates.CreateTemplateInput{
			Name:              body.Name,
			Description:       body.Description,
			HeaderText:        body.HeaderText,
			FooterText:        body.FooterText,
			Fields:            body.Fields,
			RequiresSignature: body.RequiresSignature,
			RequiresPhotoID:   body.RequiresPhotoID,
			AgeRequirement:    body.AgeRequirement,
			IsActive:          body.IsActive,
			IsDefault:         body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ListCatalog returns the prebuilt form definitions a studio can
// instantiate.
func ListCatalog(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, templates.Catalog())
	}
}

// CreateTemplateFromCatalog instantiates a catalog entry for the studio.
// Owner only.
func CreateTemplateFromCatalog(svc templates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createFromCatalogBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateFromCatalog(r.Context(), actor, body.CatalogKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateTemplate edits a template; content-affecting changes bump the
// version. Owner only.
func UpdateTemplate(svc templates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := validators.UUIDParam(r, "templateID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTemplateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), actor, id, templates.UpdateTemplateInput{
			Name:              body.Name,
			Description:       body.Description,
			HeaderText:        body.HeaderText,
			FooterText:        body.FooterText,
			Fields:            body.Fields,
			RequiresSignature: body.RequiresSignature,
			RequiresPhotoID:   body.RequiresPhotoID,
			AgeRequirement:    body.AgeRequirement,
			IsActive:          body.IsActive,
			IsDefault:         body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteTemplate removes a template, or deactivates it when submissions
// reference it. Owner only.
func DeleteTemplate(svc templates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := validators.UUIDParam(r, "templateID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
