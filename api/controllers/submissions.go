package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/api/middleware"
	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	"github.com/simmonsmd7/inkflow-sub002/api/validators"
	"github.com/simmonsmd7/inkflow-sub002/internal/audit"
	"github.com/simmonsmd7/inkflow-sub002/internal/media"
	"github.com/simmonsmd7/inkflow-sub002/internal/submissions"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

type verifyAgeBody struct {
	Verified bool    `json:"verified"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type guardianConsentBody struct {
	GuardianName          string  `json:"guardian_name" validate:"required,min=1,max=200"`
	GuardianRelationship  string  `json:"guardian_relationship" validate:"required,min=1,max=100"`
	GuardianPhone         *string `json:"guardian_phone,omitempty" validate:"omitempty,max=50"`
	GuardianEmail         *string `json:"guardian_email,omitempty" validate:"omitempty,email"`
	GuardianSignatureData string  `json:"guardian_signature_data" validate:"required"`
	Notes                 *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type voidBody struct {
	Reason string `json:"reason" validate:"required,min=1,max=2000"`
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}, nil
}

func submissionListFilter(r *http.Request) (submissions.ListFilter, error) {
	var filter submissions.ListFilter
	if raw := r.URL.Query().Get("template_id"); raw != "" {
		templateID, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid template_id filter")
		}
		filter.TemplateID = &templateID
	}
	if raw := r.URL.Query().Get("voided"); raw != "" {
		voided, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid voided filter")
		}
		filter.Voided = &voided
	}
	return filter, nil
}

// ListSubmissions pages the studio's submissions, newest first.
func ListSubmissions(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		filter, err := submissionListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.List(r.Context(), actor, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "next_cursor": next})
	}
}

// GetSubmission returns one submission with its frozen field snapshot.
func GetSubmission(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// VerifyPhotoID marks the uploaded photo ID as reviewed by the actor.
func VerifyPhotoID(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.VerifyPhotoID(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// VerifyAge records the outcome of a staff age check.
func VerifyAge(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body verifyAgeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.VerifyAge(r.Context(), actor, id, submissions.VerifyAgeInput{
			Verified: body.Verified,
			Notes:    body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AddGuardianConsent attaches the one-time guardian record to an
// underage submission.
func AddGuardianConsent(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body guardianConsentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AddGuardianConsent(r.Context(), actor, id, submissions.GuardianConsentInput{
			GuardianName:          body.GuardianName,
			GuardianRelationship:  body.GuardianRelationship,
			GuardianPhone:         body.GuardianPhone,
			GuardianEmail:         body.GuardianEmail,
			GuardianSignatureData: body.GuardianSignatureData,
			Notes:                 body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// VoidSubmission retires a submission permanently. The reason is required
// and lands in the audit trail.
func VoidSubmission(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body voidBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Void(r.Context(), actor, id, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ListSubmissionAudit pages the submission's audit trail in event order.
// The submission lookup runs first so the trail is studio-scoped.
func ListSubmissionAudit(subSvc submissions.Service, auditSvc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := subSvc.Get(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := auditSvc.List(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "next_cursor": next})
	}
}

// SubmissionPhotoIDDownload returns a short-lived read URL for staff
// review of the client's photo ID.
func SubmissionPhotoIDDownload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		id, err := validators.UUIDParam(r, "submissionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.PhotoIDDownloadURL(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
