package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
)

const staleUploadRetentionDays = 7

type StaleUploadCleanupJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	MediaRepo     staleUploadRepo
	ObjectDeleter objectDeleter
	RetentionDays int
}

type staleUploadRepo interface {
	ListStalePending(ctx context.Context, before time.Time) ([]models.Media, error)
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// NewStaleUploadCleanupJob removes photo-ID upload rows that were
// presigned but never finalized. The object is removed first; a row whose
// object delete fails is left for the next cycle.
func NewStaleUploadCleanupJob(params StaleUploadCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.MediaRepo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.ObjectDeleter == nil {
		return nil, fmt.Errorf("object deleter required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = staleUploadRetentionDays
	}
	return &staleUploadCleanupJob{
		logg:          params.Logger,
		db:            params.DB,
		repo:          params.MediaRepo,
		objects:       params.ObjectDeleter,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type staleUploadCleanupJob struct {
	logg          *logger.Logger
	db            txRunner
	repo          staleUploadRepo
	objects       objectDeleter
	retentionDays int
	now           func() time.Time
}

func (j *staleUploadCleanupJob) Name() string { return "stale-upload-cleanup" }

func (j *staleUploadCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)

	rows, err := j.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale uploads: %w", err)
	}

	var deleted, skipped int
	for _, row := range rows {
		if err := j.objects.DeleteObject(ctx, row.GCSKey); err != nil {
			skipped++
			logCtx := j.logg.WithFields(ctx, map[string]any{
				"media_id": row.ID,
				"gcs_key":  row.GCSKey,
			})
			j.logg.Error(logCtx, "failed to delete stale upload object", err)
			continue
		}
		id := row.ID
		if err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.repo.DeleteWithTx(tx, id)
		}); err != nil {
			return fmt.Errorf("delete stale upload row: %w", err)
		}
		deleted++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"candidates":     len(rows),
		"deleted":        deleted,
		"skipped":        skipped,
	})
	j.logg.Info(logCtx, "stale upload cleanup complete")
	return nil
}
