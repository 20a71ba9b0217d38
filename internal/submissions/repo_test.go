package submissions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

func setupSubmissionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	submissions := `
CREATE TABLE IF NOT EXISTS consent_submissions (
  id TEXT PRIMARY KEY,
  studio_id TEXT NOT NULL,
  template_id TEXT NOT NULL,
  template_version INTEGER NOT NULL,
  fields_snapshot TEXT NOT NULL,
  requires_signature INTEGER NOT NULL DEFAULT 0,
  requires_photo_id INTEGER NOT NULL DEFAULT 0,
  client_name TEXT NOT NULL,
  client_email TEXT NOT NULL,
  client_phone TEXT,
  client_date_of_birth DATETIME,
  responses TEXT NOT NULL,
  signature_data TEXT,
  signature_timestamp DATETIME,
  photo_id_url TEXT,
  photo_id_verified INTEGER NOT NULL DEFAULT 0,
  photo_id_verified_at DATETIME,
  photo_id_verified_by TEXT,
  age_status TEXT NOT NULL DEFAULT 'not_applicable',
  age_verified INTEGER NOT NULL DEFAULT 0,
  age_at_signing INTEGER,
  age_verified_at DATETIME,
  age_verification_notes TEXT,
  guardian_consent TEXT,
  is_voided INTEGER NOT NULL DEFAULT 0,
  voided_reason TEXT,
  voided_at DATETIME,
  voided_by TEXT,
  access_token TEXT NOT NULL UNIQUE,
  ip_address TEXT,
  lock_version INTEGER NOT NULL DEFAULT 0,
  submitted_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(submissions).Error)
	return db
}

func createSubmission(t *testing.T, db *gorm.DB, studioID, templateID uuid.UUID, submitted time.Time, voided bool) *models.ConsentSubmission {
	t.Helper()

	submission := &models.ConsentSubmission{
		ID:              uuid.New(),
		StudioID:        studioID,
		TemplateID:      templateID,
		TemplateVersion: 1,
		FieldsSnapshot:  types.FieldList{},
		ClientName:      "Test Client",
		ClientEmail:     "client@example.com",
		Responses:       types.ResponseMap{},
		AgeStatus:       enums.AgeStatusNotApplicable,
		IsVoided:        voided,
		AccessToken:     fmt.Sprintf("token-%s", uuid.NewString()),
		SubmittedAt:     submitted,
		UpdatedAt:       submitted,
	}
	if voided {
		reason := "test void"
		submission.VoidedReason = &reason
		submission.VoidedAt = &submitted
	}
	require.NoError(t, db.Create(submission).Error)
	return submission
}

func TestRepositoryListByStudio_filters(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)

	studioID := uuid.New()
	templateA := uuid.New()
	templateB := uuid.New()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	live := createSubmission(t, db, studioID, templateA, base, false)
	voided := createSubmission(t, db, studioID, templateA, base.Add(time.Hour), true)
	other := createSubmission(t, db, studioID, templateB, base.Add(2*time.Hour), false)
	createSubmission(t, db, uuid.New(), templateA, base, false)

	ctx := context.Background()

	all, err := repo.ListByStudio(ctx, studioID, ListFilter{}, 10, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)
	assert.Equal(t, voided.ID, all[1].ID)
	assert.Equal(t, live.ID, all[2].ID)

	byTemplate, err := repo.ListByStudio(ctx, studioID, ListFilter{TemplateID: &templateA}, 10, nil)
	require.NoError(t, err)
	require.Len(t, byTemplate, 2)

	voidedOnly := true
	onlyVoided, err := repo.ListByStudio(ctx, studioID, ListFilter{Voided: &voidedOnly}, 10, nil)
	require.NoError(t, err)
	require.Len(t, onlyVoided, 1)
	assert.Equal(t, voided.ID, onlyVoided[0].ID)
}

func TestRepositoryListByStudio_cursor(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)

	studioID := uuid.New()
	templateID := uuid.New()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createSubmission(t, db, studioID, templateID, base.Add(time.Duration(i)*time.Minute), false)
	}

	ctx := context.Background()

	first, err := repo.ListByStudio(ctx, studioID, ListFilter{}, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)

	cursor := &pagination.Cursor{CreatedAt: first[1].SubmittedAt, ID: first[1].ID}
	second, err := repo.ListByStudio(ctx, studioID, ListFilter{}, 10, cursor)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.True(t, second[0].SubmittedAt.Before(first[1].SubmittedAt))
}

func TestRepositoryUpdateWithCAS_conflict(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)

	studioID := uuid.New()
	submission := createSubmission(t, db, studioID, uuid.New(), time.Now().UTC(), false)

	first, err := repo.FindByID(context.Background(), studioID, submission.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), studioID, submission.ID)
	require.NoError(t, err)

	verifiedAt := time.Now().UTC()
	first.PhotoIDVerified = true
	first.PhotoIDVerifiedAt = &verifiedAt
	require.NoError(t, repo.UpdateWithCAS(db, first))

	reason := "raced with a verify"
	second.IsVoided = true
	second.VoidedReason = &reason
	err = repo.UpdateWithCAS(db, second)
	require.ErrorIs(t, err, ErrVersionConflict)

	current, err := repo.FindByID(context.Background(), studioID, submission.ID)
	require.NoError(t, err)
	assert.True(t, current.PhotoIDVerified)
	assert.False(t, current.IsVoided)
	assert.Equal(t, first.LockVersion, current.LockVersion)
}
