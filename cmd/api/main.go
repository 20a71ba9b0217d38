package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/simmonsmd7/inkflow-sub002/api/routes"
	"github.com/simmonsmd7/inkflow-sub002/internal/audit"
	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/internal/media"
	"github.com/simmonsmd7/inkflow-sub002/internal/notifications"
	"github.com/simmonsmd7/inkflow-sub002/internal/signing"
	"github.com/simmonsmd7/inkflow-sub002/internal/studios"
	"github.com/simmonsmd7/inkflow-sub002/internal/submissions"
	"github.com/simmonsmd7/inkflow-sub002/internal/templates"
	"github.com/simmonsmd7/inkflow-sub002/internal/users"
	"github.com/simmonsmd7/inkflow-sub002/pkg/config"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/metrics"
	"github.com/simmonsmd7/inkflow-sub002/pkg/migrate"
	"github.com/simmonsmd7/inkflow-sub002/pkg/redis"
	"github.com/simmonsmd7/inkflow-sub002/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	studioRepo := studios.NewRepository(gormDB)
	templateRepo := templates.NewRepository(gormDB)
	submissionRepo := submissions.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	mediaRepo := media.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)

	authService, err := auth.NewService(users.NewRepository(gormDB), cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	templateService, err := templates.NewService(templateRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create template service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	signingService, err := signing.NewService(signing.ServiceParams{
		StudioRepo:     studioRepo,
		TemplateRepo:   templateRepo,
		SubmissionRepo: submissionRepo,
		AuditRepo:      auditRepo,
		TxRunner:       dbClient,
		Notifier:       notificationService,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create signing service", err)
		os.Exit(1)
	}

	submissionService, err := submissions.NewService(submissions.ServiceParams{
		SubmissionRepo: submissionRepo,
		AuditRepo:      auditRepo,
		TxRunner:       dbClient,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create submission service", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		MediaRepo:      mediaRepo,
		SubmissionRepo: submissionRepo,
		AuditRepo:      auditRepo,
		TxRunner:       dbClient,
		Store:          gcsClient,
		Bucket:         cfg.GCS.BucketName,
		MaxPhotoBytes:  cfg.Uploads.PhotoIDMaxBytes(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			httpMetrics,
			registry,
			authService,
			templateService,
			signingService,
			submissionService,
			auditService,
			mediaService,
			notificationService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
