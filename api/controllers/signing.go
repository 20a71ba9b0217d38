package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/simmonsmd7/inkflow-sub002/api/middleware"
	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	"github.com/simmonsmd7/inkflow-sub002/api/validators"
	"github.com/simmonsmd7/inkflow-sub002/internal/signing"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/metrics"
)

const dateOfBirthLayout = "2006-01-02"

type signBody struct {
	ClientName    string         `json:"client_name" validate:"required,min=1,max=200"`
	ClientEmail   string         `json:"client_email" validate:"required,email"`
	ClientPhone   *string        `json:"client_phone,omitempty"`
	DateOfBirth   *string        `json:"date_of_birth,omitempty"`
	Responses     map[string]any `json:"responses"`
	SignatureData *string        `json:"signature_data,omitempty"`
}

// GetSigningTemplate serves the public signing page's template fetch.
func GetSigningTemplate(svc signing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID, err := validators.UUIDParam(r, "templateID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetPublicTemplate(r.Context(), chi.URLParam(r, "studioSlug"), templateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// SignConsent accepts a public signing attempt.
func SignConsent(svc signing.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studioSlug := chi.URLParam(r, "studioSlug")

		templateID, err := validators.UUIDParam(r, "templateID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body signBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := signing.SignInput{
			ClientName:    body.ClientName,
			ClientEmail:   body.ClientEmail,
			ClientPhone:   body.ClientPhone,
			Responses:     body.Responses,
			SignatureData: body.SignatureData,
		}
		if input.Responses == nil {
			input.Responses = map[string]any{}
		}
		if ip := middleware.ClientIP(r); ip != "" {
			input.IPAddress = &ip
		}

		if body.DateOfBirth != nil && strings.TrimSpace(*body.DateOfBirth) != "" {
			dob, err := time.Parse(dateOfBirthLayout, strings.TrimSpace(*body.DateOfBirth))
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "date of birth must be YYYY-MM-DD").
						WithDetails(map[string]string{"dateOfBirth": "must be YYYY-MM-DD"}))
				return
			}
			input.DateOfBirth = &dob
		}

		result, err := svc.Sign(r.Context(), studioSlug, templateID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if m != nil {
			m.IncSigning(studioSlug)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
