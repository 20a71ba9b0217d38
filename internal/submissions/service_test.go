package submissions

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
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

type stubSubmissionRepo struct {
	byID     map[uuid.UUID]*models.ConsentSubmission
	byToken  map[string]*models.ConsentSubmission
	listRows []models.ConsentSubmission
	casErr   error
	updated  int
}

func newStubSubmissionRepo(subs ...*models.ConsentSubmission) *stubSubmissionRepo {
	r := &stubSubmissionRepo{
		byID:    map[uuid.UUID]*models.ConsentSubmission{},
		byToken: map[string]*models.ConsentSubmission{},
	}
	for _, s := range subs {
		r.byID[s.ID] = s
		if s.AccessToken != "" {
			r.byToken[s.AccessToken] = s
		}
	}
	return r
}

func (r *stubSubmissionRepo) FindByID(_ context.Context, studioID, id uuid.UUID) (*models.ConsentSubmission, error) {
	s, ok := r.byID[id]
	if !ok || s.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *stubSubmissionRepo) FindByAccessToken(_ context.Context, token string) (*models.ConsentSubmission, error) {
	s, ok := r.byToken[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *stubSubmissionRepo) ListByStudio(_ context.Context, _ uuid.UUID, _ ListFilter, limit int, _ *pagination.Cursor) ([]models.ConsentSubmission, error) {
	if limit > len(r.listRows) {
		limit = len(r.listRows)
	}
	return r.listRows[:limit], nil
}

func (r *stubSubmissionRepo) UpdateWithCAS(_ *gorm.DB, submission *models.ConsentSubmission) error {
	if r.casErr != nil {
		return r.casErr
	}
	r.updated++
	stored := *submission
	r.byID[submission.ID] = &stored
	return nil
}

type stubAuditRepo struct {
	entries []*models.ConsentAuditLog
	err     error
}

func (r *stubAuditRepo) Append(_ context.Context, entry *models.ConsentAuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubAuditRepo) AppendWithTx(_ *gorm.DB, entry *models.ConsentAuditLog) error {
	return r.Append(context.Background(), entry)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func testActor() auth.Actor {
	return auth.Actor{
		UserID:   uuid.New(),
		StudioID: uuid.New(),
		Name:     "Dana Wells",
		Role:     enums.MemberRoleStaff,
	}
}

func baseSubmission(studioID uuid.UUID) *models.ConsentSubmission {
	return &models.ConsentSubmission{
		ID:              uuid.New(),
		StudioID:        studioID,
		TemplateID:      uuid.New(),
		TemplateVersion: 1,
		FieldsSnapshot: types.FieldList{
			{ID: "photo", Type: enums.FieldTypePhotoID, Label: "Photo ID", Required: true, Order: 1},
		},
		ClientName:  "Riley Chen",
		ClientEmail: "riley@example.com",
		Responses:   types.ResponseMap{},
		AccessToken: "tok-riley",
		AgeStatus:   enums.AgeStatusPending,
		SubmittedAt: time.Now().UTC(),
	}
}

type harness struct {
	svc   Service
	repo  *stubSubmissionRepo
	audit *stubAuditRepo
	actor auth.Actor
}

func newHarness(t *testing.T, subs ...*models.ConsentSubmission) *harness {
	t.Helper()
	repo := newStubSubmissionRepo(subs...)
	audit := &stubAuditRepo{}
	svc, err := NewService(ServiceParams{
		SubmissionRepo: repo,
		AuditRepo:      audit,
		TxRunner:       stubTxRunner{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &harness{svc: svc, repo: repo, audit: audit}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestPhotoIDStatusFromRequirementFlag(t *testing.T) {
	// The template-level flag alone, frozen at signing, puts the lane in
	// pending even when the snapshot has no photo-ID field.
	sub := baseSubmission(uuid.New())
	sub.FieldsSnapshot = types.FieldList{
		{ID: "agree", Type: enums.FieldTypeCheckbox, Label: "I agree", Required: true, Order: 1},
	}
	sub.RequiresPhotoID = true

	if got := FromModel(sub).PhotoIDStatus; got != enums.PhotoIDStatusPending {
		t.Fatalf("expected pending lane from the flag, got %s", got)
	}

	sub.RequiresPhotoID = false
	if got := FromModel(sub).PhotoIDStatus; got != enums.PhotoIDStatusNotRequired {
		t.Fatalf("expected not_required without flag or field, got %s", got)
	}
}

func TestVerifyPhotoIDRequiresUpload(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	h := newHarness(t, sub)

	_, err := h.svc.VerifyPhotoID(context.Background(), actor, sub.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if len(h.audit.entries) != 0 {
		t.Fatal("rejected transition must not be audited")
	}
}

// Scenario: photo ID is deferred at signing, attached later, then verified
// by staff with an audit entry per invocation.
func TestVerifyPhotoIDTransitionAndIdempotence(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.PhotoIDURL = strPtr("studios/x/photo.jpg")
	h := newHarness(t, sub)

	dto, err := h.svc.VerifyPhotoID(context.Background(), actor, sub.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !dto.PhotoIDVerified || dto.PhotoIDVerifiedAt == nil {
		t.Fatal("expected verified with timestamp")
	}
	if dto.PhotoIDStatus != enums.PhotoIDStatusVerified {
		t.Fatalf("expected verified lane, got %s", dto.PhotoIDStatus)
	}
	firstVerifiedAt := *dto.PhotoIDVerifiedAt

	// Second call: no state change, but still one more audit entry.
	dto, err = h.svc.VerifyPhotoID(context.Background(), actor, sub.ID)
	if err != nil {
		t.Fatalf("re-verify: %v", err)
	}
	if !dto.PhotoIDVerifiedAt.Equal(firstVerifiedAt) {
		t.Fatal("re-verify must not move the verification timestamp")
	}
	if h.repo.updated != 1 {
		t.Fatalf("expected one state write, got %d", h.repo.updated)
	}
	if len(h.audit.entries) != 2 {
		t.Fatalf("expected two audit entries, got %d", len(h.audit.entries))
	}
	for _, entry := range h.audit.entries {
		if entry.Action != enums.AuditActionVerified {
			t.Fatalf("unexpected action %s", entry.Action)
		}
		if entry.PerformedByName == nil || *entry.PerformedByName != actor.Name {
			t.Fatal("staff transitions must carry the actor's name")
		}
	}
}

func TestVerifyAgeMovesPendingToVerified(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.AgeAtSigning = intPtr(24)
	h := newHarness(t, sub)

	notes := "checked passport"
	dto, err := h.svc.VerifyAge(context.Background(), actor, sub.ID, VerifyAgeInput{Verified: true, Notes: &notes})
	if err != nil {
		t.Fatalf("verify age: %v", err)
	}
	if !dto.AgeVerified || dto.AgeStatus != enums.AgeStatusVerified {
		t.Fatalf("expected verified lane, got %s", dto.AgeStatus)
	}
	if dto.AgeVerifiedAt == nil || dto.AgeVerificationNotes == nil {
		t.Fatal("expected timestamp and notes recorded")
	}
	if got := h.audit.entries[0].Action; got != enums.AuditActionAgeVerified {
		t.Fatalf("unexpected audit action %s", got)
	}
}

func TestVerifyAgeDoesNotUnblockUnderage(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.AgeStatus = enums.AgeStatusUnderagePendingGuardian
	sub.AgeAtSigning = intPtr(16)
	h := newHarness(t, sub)

	_, err := h.svc.VerifyAge(context.Background(), actor, sub.ID, VerifyAgeInput{Verified: true})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestVerifyAgeNotApplicable(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.AgeStatus = enums.AgeStatusNotApplicable
	h := newHarness(t, sub)

	_, err := h.svc.VerifyAge(context.Background(), actor, sub.ID, VerifyAgeInput{Verified: true})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

// Scenario: an underage signing is remediated with guardian consent. The
// record is single-assignment.
func TestAddGuardianConsent(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.AgeStatus = enums.AgeStatusUnderagePendingGuardian
	sub.AgeAtSigning = intPtr(16)
	h := newHarness(t, sub)

	input := GuardianConsentInput{
		GuardianName:          "Morgan Chen",
		GuardianRelationship:  "parent",
		GuardianSignatureData: "data:image/png;base64,BBBB",
	}
	dto, err := h.svc.AddGuardianConsent(context.Background(), actor, sub.ID, input)
	if err != nil {
		t.Fatalf("add guardian consent: %v", err)
	}
	if !dto.HasGuardianConsent {
		t.Fatal("expected guardian consent recorded")
	}
	if dto.GuardianConsent.ConsentedAt.IsZero() {
		t.Fatal("expected consented_at stamped")
	}
	if got := h.audit.entries[0].Action; got != enums.AuditActionGuardianConsentAdded {
		t.Fatalf("unexpected audit action %s", got)
	}

	// Single assignment: a second call fails and stores nothing new.
	_, err = h.svc.AddGuardianConsent(context.Background(), actor, sub.ID, input)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if h.repo.updated != 1 {
		t.Fatalf("expected one state write, got %d", h.repo.updated)
	}
}

func TestAddGuardianConsentValidatesRequiredFields(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	h := newHarness(t, sub)

	_, err := h.svc.AddGuardianConsent(context.Background(), actor, sub.ID, GuardianConsentInput{
		GuardianName: "  ",
	})
	expectCode(t, err, pkgerrors.CodeValidation)

	details := pkgerrors.As(err).Details().(map[string]string)
	for _, key := range []string{"guardianName", "guardianRelationship", "guardianSignatureData"} {
		if details[key] == "" {
			t.Errorf("expected error for %q", key)
		}
	}
}

// Scenario: once voided, every verification mutation is rejected and the
// submission's fields stay unchanged.
func TestVoidIsTerminal(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.PhotoIDURL = strPtr("studios/x/photo.jpg")
	sub.AgeAtSigning = intPtr(24)
	h := newHarness(t, sub)

	dto, err := h.svc.Void(context.Background(), actor, sub.ID, "client underage, no guardian contact")
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if !dto.IsVoided || dto.VoidedReason == nil || dto.VoidedAt == nil {
		t.Fatal("expected void fields populated")
	}

	if _, err := h.svc.VerifyAge(context.Background(), actor, sub.ID, VerifyAgeInput{Verified: true}); err == nil {
		t.Fatal("expected verify age on voided submission to fail")
	} else {
		expectCode(t, err, pkgerrors.CodeStateConflict)
	}
	if _, err := h.svc.VerifyPhotoID(context.Background(), actor, sub.ID); err == nil {
		t.Fatal("expected verify photo ID on voided submission to fail")
	}
	if _, err := h.svc.AddGuardianConsent(context.Background(), actor, sub.ID, GuardianConsentInput{
		GuardianName:          "Morgan",
		GuardianRelationship:  "parent",
		GuardianSignatureData: "sig",
	}); err == nil {
		t.Fatal("expected guardian consent on voided submission to fail")
	}

	stored := h.repo.byID[sub.ID]
	if stored.AgeVerified || stored.PhotoIDVerified || stored.GuardianConsent != nil {
		t.Fatal("voided submission fields must stay unchanged")
	}
	if _, err := h.svc.Void(context.Background(), actor, sub.ID, "again"); err == nil {
		t.Fatal("expected double void to fail")
	}
}

func TestVoidRequiresReason(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	h := newHarness(t, sub)

	_, err := h.svc.Void(context.Background(), actor, sub.ID, "   ")
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestConcurrentMutationSurfacesConflict(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	sub.PhotoIDURL = strPtr("studios/x/photo.jpg")
	h := newHarness(t, sub)
	h.repo.casErr = ErrVersionConflict

	_, err := h.svc.VerifyPhotoID(context.Background(), actor, sub.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestGetScopedToStudio(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(uuid.New()) // different studio
	h := newHarness(t, sub)

	_, err := h.svc.Get(context.Background(), actor, sub.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetByAccessTokenAuditsClientView(t *testing.T) {
	actor := testActor()
	sub := baseSubmission(actor.StudioID)
	h := newHarness(t, sub)

	ip := "203.0.113.9"
	dto, err := h.svc.GetByAccessToken(context.Background(), "tok-riley", &ip)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if dto.ClientName != "Riley Chen" {
		t.Fatalf("unexpected client %s", dto.ClientName)
	}

	if len(h.audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(h.audit.entries))
	}
	entry := h.audit.entries[0]
	if entry.Action != enums.AuditActionViewed || !entry.IsClientAccess {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.PerformedByName != nil {
		t.Fatal("client access must not carry a staff name")
	}
}

func TestGetByAccessTokenUnknownToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.GetByAccessToken(context.Background(), "nope", nil)
	expectCode(t, err, pkgerrors.CodeNotFound)

	_, err = h.svc.GetByAccessToken(context.Background(), "  ", nil)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestListPaginatesWithCursor(t *testing.T) {
	actor := testActor()
	h := newHarness(t)

	base := time.Now().UTC()
	for i := 0; i < 4; i++ {
		sub := baseSubmission(actor.StudioID)
		sub.SubmittedAt = base.Add(-time.Duration(i) * time.Minute)
		h.repo.listRows = append(h.repo.listRows, *sub)
	}

	page, next, err := h.svc.List(context.Background(), actor, ListFilter{}, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}
	if next == "" {
		t.Fatal("expected next cursor")
	}

	cursor, err := pagination.ParseCursor(next)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !cursor.CreatedAt.Equal(page[2].SubmittedAt) || cursor.ID != page[2].ID {
		t.Fatal("cursor must pin the last returned row")
	}

	_, _, err = h.svc.List(context.Background(), actor, ListFilter{}, pagination.Params{Cursor: "!!!"})
	expectCode(t, err, pkgerrors.CodeValidation)
}
