package controllers

import (
	"net/http"

	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	"github.com/simmonsmd7/inkflow-sub002/api/validators"
	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// AuthLogin authenticates a staff member and returns a bearer token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
