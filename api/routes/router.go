package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simmonsmd7/inkflow-sub002/api/controllers"
	"github.com/simmonsmd7/inkflow-sub002/api/middleware"
	"github.com/simmonsmd7/inkflow-sub002/internal/audit"
	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/internal/media"
	"github.com/simmonsmd7/inkflow-sub002/internal/notifications"
	"github.com/simmonsmd7/inkflow-sub002/internal/signing"
	"github.com/simmonsmd7/inkflow-sub002/internal/submissions"
	"github.com/simmonsmd7/inkflow-sub002/internal/templates"
	"github.com/simmonsmd7/inkflow-sub002/pkg/config"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/metrics"
	"github.com/simmonsmd7/inkflow-sub002/pkg/redis"
	"github.com/simmonsmd7/inkflow-sub002/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	templateService templates.Service,
	signingService signing.Service,
	submissionService submissions.Service,
	auditService audit.Service,
	mediaService media.Service,
	notificationService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	signingPolicy := middleware.NewSigningRateLimitPolicy(
		cfg.SigningLimit.Window,
		cfg.SigningLimit.IPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Public signing surface: no auth, rate limited per IP.
	r.Route("/api/public/studios/{studioSlug}/templates/{templateID}", func(r chi.Router) {
		r.Get("/", controllers.GetSigningTemplate(signingService, logg))
		r.With(middleware.SigningRateLimit(signingPolicy, redisClient, logg)).
			Post("/sign", controllers.SignConsent(signingService, httpMetrics, logg))
	})

	// Client portal: the access token in the path is the credential.
	r.Route("/api/portal/forms/{accessToken}", func(r chi.Router) {
		r.Get("/", controllers.PortalGetSubmission(submissionService, logg))
		r.Get("/photo-id", controllers.PortalPhotoIDDownload(mediaService, logg))
		r.Post("/photo-id/presign", controllers.PortalPresignPhotoID(mediaService, logg))
		r.Post("/photo-id/{mediaID}/finalize", controllers.PortalFinalizePhotoID(mediaService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", controllers.ListTemplates(templateService, logg))
			r.Get("/catalog", controllers.ListCatalog(logg))
			r.Get("/{templateID}", controllers.GetTemplate(templateService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOwner(logg))
				r.Post("/", controllers.CreateTemplate(templateService, logg))
				r.Post("/from-catalog", controllers.CreateTemplateFromCatalog(templateService, logg))
				r.Patch("/{templateID}", controllers.UpdateTemplate(templateService, logg))
				r.Delete("/{templateID}", controllers.DeleteTemplate(templateService, logg))
			})
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", controllers.ListSubmissions(submissionService, logg))
			r.Get("/{submissionID}", controllers.GetSubmission(submissionService, logg))
			r.Get("/{submissionID}/audit", controllers.ListSubmissionAudit(submissionService, auditService, logg))
			r.Get("/{submissionID}/photo-id", controllers.SubmissionPhotoIDDownload(mediaService, logg))
			r.Post("/{submissionID}/verify-photo-id", controllers.VerifyPhotoID(submissionService, logg))
			r.Post("/{submissionID}/verify-age", controllers.VerifyAge(submissionService, logg))
			r.Post("/{submissionID}/guardian-consent", controllers.AddGuardianConsent(submissionService, logg))
			r.Post("/{submissionID}/void", controllers.VoidSubmission(submissionService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationService, logg))
		})
	})

	return r
}
