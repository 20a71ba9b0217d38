package middleware

import (
	"net/http"
	"strings"

	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	internalauth "github.com/simmonsmd7/inkflow-sub002/internal/auth"
	pkgauth "github.com/simmonsmd7/inkflow-sub002/pkg/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/config"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// authenticated actor.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			actor := internalauth.Actor{
				UserID:   claims.UserID,
				StudioID: claims.StudioID,
				Name:     claims.Name,
				Role:     claims.Role,
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    actor.UserID.String(),
					"studio_id":  actor.StudioID.String(),
					"actor_role": string(actor.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
