package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/simmonsmd7/inkflow-sub002/api/responses"
	"github.com/simmonsmd7/inkflow-sub002/pkg/config"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inkflow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks each dependency with a short deadline and reports
// per-dependency status. Any failure flips the response to 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, gcsP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inkflow-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		deps := map[string]pinger{
			"postgres": dbP,
			"redis":    redisP,
			"gcs":      gcsP,
		}

		statuses := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				statuses[name] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health.dependency_failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		payload := map[string]any{
			"status":       "ready",
			"dependencies": statuses,
		}
		if !healthy {
			payload["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
