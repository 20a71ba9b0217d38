package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simmonsmd7/inkflow-sub002/api/middleware"
	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	"github.com/simmonsmd7/inkflow-sub002/api/validators"
	"github.com/simmonsmd7/inkflow-sub002/internal/media"
	"github.com/simmonsmd7/inkflow-sub002/internal/submissions"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
)

type presignPhotoIDBody struct {
	FileName  string `json:"file_name" validate:"required,min=1,max=255"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
}

func clientIPPtr(r *http.Request) *string {
	if ip := middleware.ClientIP(r); ip != "" {
		return &ip
	}
	return nil
}

// PortalGetSubmission lets a client retrieve their own signed form by
// access token. No session is involved; the token is the credential.
func PortalGetSubmission(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.GetByAccessToken(r.Context(), chi.URLParam(r, "accessToken"), clientIPPtr(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// PortalPresignPhotoID issues a signed upload URL for the client's photo ID.
func PortalPresignPhotoID(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body presignPhotoIDBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.PresignPhotoIDUpload(r.Context(), chi.URLParam(r, "accessToken"), media.PresignInput{
			FileName:  body.FileName,
			MimeType:  body.MimeType,
			SizeBytes: body.SizeBytes,
			IPAddress: clientIPPtr(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// PortalFinalizePhotoID attaches an uploaded photo ID to the submission.
func PortalFinalizePhotoID(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, err := validators.UUIDParam(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.FinalizePhotoIDUpload(r.Context(), chi.URLParam(r, "accessToken"), mediaID, clientIPPtr(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "attached"})
	}
}

// PortalPhotoIDDownload returns a short-lived read URL for the client's
// own photo ID.
func PortalPhotoIDDownload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ClientPhotoIDDownloadURL(r.Context(), chi.URLParam(r, "accessToken"), clientIPPtr(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
