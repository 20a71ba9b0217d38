package media

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
)

type stubMediaRepo struct {
	created  *models.Media
	byID     map[uuid.UUID]*models.Media
	attached []uuid.UUID
}

func (r *stubMediaRepo) Create(_ context.Context, media *models.Media) error {
	media.ID = uuid.New()
	r.created = media
	if r.byID == nil {
		r.byID = map[uuid.UUID]*models.Media{}
	}
	r.byID[media.ID] = media
	return nil
}

func (r *stubMediaRepo) FindByID(_ context.Context, studioID, id uuid.UUID) (*models.Media, error) {
	m, ok := r.byID[id]
	if !ok || m.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMediaRepo) MarkAttachedWithTx(_ *gorm.DB, id, _ uuid.UUID) error {
	r.attached = append(r.attached, id)
	return nil
}

type stubSubmissionRepo struct {
	submission *models.ConsentSubmission
	updated    *models.ConsentSubmission
}

func (r *stubSubmissionRepo) FindByID(_ context.Context, studioID, id uuid.UUID) (*models.ConsentSubmission, error) {
	if r.submission == nil || r.submission.ID != id || r.submission.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.submission
	return &copied, nil
}

func (r *stubSubmissionRepo) FindByAccessToken(_ context.Context, token string) (*models.ConsentSubmission, error) {
	if r.submission == nil || r.submission.AccessToken != token {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.submission
	return &copied, nil
}

func (r *stubSubmissionRepo) UpdateWithCAS(_ *gorm.DB, submission *models.ConsentSubmission) error {
	r.updated = submission
	return nil
}

type stubAuditRepo struct {
	entries []*models.ConsentAuditLog
}

func (r *stubAuditRepo) Append(_ context.Context, entry *models.ConsentAuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubAuditRepo) AppendWithTx(_ *gorm.DB, entry *models.ConsentAuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubStore struct {
	exists   bool
	signErr  error
	lastKey  string
	lastMime string
}

func (s *stubStore) SignedURL(_, object, contentType string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.lastKey = object
	s.lastMime = contentType
	return "https://storage.example.com/upload/" + object, nil
}

func (s *stubStore) SignedReadURL(_, object string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://storage.example.com/read/" + object, nil
}

func (s *stubStore) ObjectExists(_ context.Context, _, _ string) (bool, error) {
	return s.exists, nil
}

type harness struct {
	svc         Service
	media       *stubMediaRepo
	submissions *stubSubmissionRepo
	audit       *stubAuditRepo
	store       *stubStore
}

func newHarness(t *testing.T, submission *models.ConsentSubmission) *harness {
	t.Helper()
	h := &harness{
		media:       &stubMediaRepo{},
		submissions: &stubSubmissionRepo{submission: submission},
		audit:       &stubAuditRepo{},
		store:       &stubStore{exists: true},
	}
	svc, err := NewService(ServiceParams{
		MediaRepo:      h.media,
		SubmissionRepo: h.submissions,
		AuditRepo:      h.audit,
		TxRunner:       stubTxRunner{},
		Store:          h.store,
		Bucket:         "inkflow-test",
		MaxPhotoBytes:  5 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func strPtr(s string) *string { return &s }

func testSubmission() *models.ConsentSubmission {
	return &models.ConsentSubmission{
		ID:          uuid.New(),
		StudioID:    uuid.New(),
		AccessToken: "tok-abc",
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestPresignPhotoIDUpload(t *testing.T) {
	sub := testSubmission()
	h := newHarness(t, sub)

	out, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", PresignInput{
		FileName:  "license.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if out.UploadURL == "" || out.GCSKey == "" {
		t.Fatal("expected upload URL and key")
	}
	if h.store.lastMime != "image/jpeg" {
		t.Fatalf("upload URL must be bound to the declared type, got %s", h.store.lastMime)
	}

	row := h.media.created
	if row == nil || row.Kind != enums.MediaKindPhotoID || row.Status != enums.MediaStatusPending {
		t.Fatalf("unexpected media row %+v", row)
	}
}

func TestPresignRejectsBadUploads(t *testing.T) {
	cases := []struct {
		name  string
		input PresignInput
	}{
		{"disallowed mime", PresignInput{FileName: "doc.pdf", MimeType: "application/pdf", SizeBytes: 100}},
		{"missing mime", PresignInput{FileName: "x.jpg", SizeBytes: 100}},
		{"zero size", PresignInput{FileName: "x.jpg", MimeType: "image/png"}},
		{"too large", PresignInput{FileName: "x.jpg", MimeType: "image/png", SizeBytes: 6 * 1024 * 1024}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, testSubmission())
			_, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", tc.input)
			expectCode(t, err, pkgerrors.CodeUpload)
			if h.media.created != nil {
				t.Fatal("rejected presign must not create a media row")
			}
		})
	}
}

func TestPresignRejectsVoidedSubmission(t *testing.T) {
	sub := testSubmission()
	sub.IsVoided = true
	h := newHarness(t, sub)

	_, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", PresignInput{
		FileName: "x.jpg", MimeType: "image/jpeg", SizeBytes: 100,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestFinalizeAttachesAndAudits(t *testing.T) {
	sub := testSubmission()
	h := newHarness(t, sub)

	out, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", PresignInput{
		FileName: "x.jpg", MimeType: "image/jpeg", SizeBytes: 100,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	ip := "203.0.113.9"
	if err := h.svc.FinalizePhotoIDUpload(context.Background(), "tok-abc", out.MediaID, &ip); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if h.submissions.updated == nil || h.submissions.updated.PhotoIDURL == nil {
		t.Fatal("expected photo ID attached to submission")
	}
	if *h.submissions.updated.PhotoIDURL != out.GCSKey {
		t.Fatalf("expected key %s, got %s", out.GCSKey, *h.submissions.updated.PhotoIDURL)
	}
	if len(h.media.attached) != 1 {
		t.Fatal("expected media row marked attached")
	}
	if len(h.audit.entries) != 1 || h.audit.entries[0].Action != enums.AuditActionPhotoIDAttached {
		t.Fatalf("unexpected audit entries %+v", h.audit.entries)
	}
	if !h.audit.entries[0].IsClientAccess {
		t.Fatal("attach is a client action")
	}
}

func TestFinalizeRejectsVerifiedSubmission(t *testing.T) {
	sub := testSubmission()
	h := newHarness(t, sub)

	out, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", PresignInput{
		FileName: "x.jpg", MimeType: "image/jpeg", SizeBytes: 100,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	// Staff verify the photo ID while the second upload is in flight.
	verifiedAt := time.Now().UTC()
	reviewed := "studios/x/reviewed.jpg"
	sub.PhotoIDURL = &reviewed
	sub.PhotoIDVerified = true
	sub.PhotoIDVerifiedAt = &verifiedAt

	err = h.svc.FinalizePhotoIDUpload(context.Background(), "tok-abc", out.MediaID, nil)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if h.submissions.updated != nil {
		t.Fatal("a verified photo ID must not be swapped out")
	}
	if len(h.media.attached) != 0 {
		t.Fatal("media row must stay detached")
	}
}

func TestPresignRejectsVerifiedSubmission(t *testing.T) {
	sub := testSubmission()
	sub.PhotoIDVerified = true
	h := newHarness(t, sub)

	_, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", PresignInput{
		FileName: "x.jpg", MimeType: "image/jpeg", SizeBytes: 100,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if h.media.created != nil {
		t.Fatal("rejected presign must not create a media row")
	}
}

func TestFinalizeRequiresCompletedUpload(t *testing.T) {
	sub := testSubmission()
	h := newHarness(t, sub)
	h.store.exists = false

	out, err := h.svc.PresignPhotoIDUpload(context.Background(), "tok-abc", PresignInput{
		FileName: "x.jpg", MimeType: "image/jpeg", SizeBytes: 100,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	err = h.svc.FinalizePhotoIDUpload(context.Background(), "tok-abc", out.MediaID, nil)
	expectCode(t, err, pkgerrors.CodeUpload)
	if h.submissions.updated != nil {
		t.Fatal("incomplete upload must not attach")
	}
}

func TestStaffDownloadAudited(t *testing.T) {
	sub := testSubmission()
	sub.PhotoIDURL = strPtr("studios/x/photo.jpg")
	h := newHarness(t, sub)

	actor := auth.Actor{UserID: uuid.New(), StudioID: sub.StudioID, Name: "Dana Wells", Role: enums.MemberRoleStaff}
	out, err := h.svc.PhotoIDDownloadURL(context.Background(), actor, sub.ID)
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	if out.URL == "" {
		t.Fatal("expected read URL")
	}

	if len(h.audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(h.audit.entries))
	}
	entry := h.audit.entries[0]
	if entry.Action != enums.AuditActionDownloaded || entry.IsClientAccess {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.PerformedByName == nil || *entry.PerformedByName != "Dana Wells" {
		t.Fatal("staff download must carry the actor's name")
	}
}

func TestClientDownloadAudited(t *testing.T) {
	sub := testSubmission()
	sub.PhotoIDURL = strPtr("studios/x/photo.jpg")
	h := newHarness(t, sub)

	_, err := h.svc.ClientPhotoIDDownloadURL(context.Background(), "tok-abc", nil)
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	entry := h.audit.entries[0]
	if !entry.IsClientAccess || entry.PerformedByName != nil {
		t.Fatalf("client download must be anonymous client access, got %+v", entry)
	}
}

func TestDownloadWithoutPhotoID(t *testing.T) {
	sub := testSubmission()
	h := newHarness(t, sub)

	actor := auth.Actor{UserID: uuid.New(), StudioID: sub.StudioID, Name: "Dana Wells", Role: enums.MemberRoleStaff}
	_, err := h.svc.PhotoIDDownloadURL(context.Background(), actor, sub.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}
