package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/internal/audit"
	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/internal/media"
	"github.com/simmonsmd7/inkflow-sub002/internal/notifications"
	"github.com/simmonsmd7/inkflow-sub002/internal/signing"
	"github.com/simmonsmd7/inkflow-sub002/internal/submissions"
	"github.com/simmonsmd7/inkflow-sub002/internal/templates"
	pkgauth "github.com/simmonsmd7/inkflow-sub002/pkg/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/config"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	"github.com/simmonsmd7/inkflow-sub002/pkg/logger"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
	"github.com/simmonsmd7/inkflow-sub002/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

type stubTemplatesService struct{}

func (stubTemplatesService) List(ctx context.Context, studioID uuid.UUID) ([]templates.TemplateDTO, error) {
	return nil, nil
}

func (stubTemplatesService) Get(ctx context.Context, studioID, id uuid.UUID) (*templates.TemplateDTO, error) {
	return &templates.TemplateDTO{}, nil
}

func (stubTemplatesService) Create(ctx context.Context, actor auth.Actor, input templates.CreateTemplateInput) (*templates.TemplateDTO, error) {
	return &templates.TemplateDTO{}, nil
}

func (stubTemplatesService) CreateFromCatalog(ctx context.Context, actor auth.Actor, catalogKey string) (*templates.TemplateDTO, error) {
	return &templates.TemplateDTO{}, nil
}

func (stubTemplatesService) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input templates.UpdateTemplateInput) (*templates.TemplateDTO, error) {
	return &templates.TemplateDTO{}, nil
}

func (stubTemplatesService) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return nil
}

type stubSigningService struct{}

func (stubSigningService) GetPublicTemplate(ctx context.Context, slug string, templateID uuid.UUID) (*templates.PublicTemplateDTO, error) {
	return &templates.PublicTemplateDTO{}, nil
}

func (stubSigningService) Sign(ctx context.Context, slug string, templateID uuid.UUID, input signing.SignInput) (*signing.SignResult, error) {
	return &signing.SignResult{AccessToken: "tok"}, nil
}

type stubSubmissionsService struct{}

func (stubSubmissionsService) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{}, nil
}

func (stubSubmissionsService) List(ctx context.Context, actor auth.Actor, filter submissions.ListFilter, params pagination.Params) ([]submissions.SubmissionDTO, string, error) {
	return nil, "", nil
}

func (stubSubmissionsService) VerifyPhotoID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{}, nil
}

func (stubSubmissionsService) VerifyAge(ctx context.Context, actor auth.Actor, id uuid.UUID, input submissions.VerifyAgeInput) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{}, nil
}

func (stubSubmissionsService) AddGuardianConsent(ctx context.Context, actor auth.Actor, id uuid.UUID, input submissions.GuardianConsentInput) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{}, nil
}

func (stubSubmissionsService) Void(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{}, nil
}

func (stubSubmissionsService) GetByAccessToken(ctx context.Context, token string, ip *string) (*submissions.ClientSubmissionDTO, error) {
	return &submissions.ClientSubmissionDTO{}, nil
}

type stubAuditService struct{}

func (stubAuditService) List(ctx context.Context, submissionID uuid.UUID, params pagination.Params) ([]audit.EntryDTO, string, error) {
	return nil, "", nil
}

type stubMediaService struct{}

func (stubMediaService) PresignPhotoIDUpload(ctx context.Context, token string, input media.PresignInput) (*media.PresignOutput, error) {
	return &media.PresignOutput{}, nil
}

func (stubMediaService) FinalizePhotoIDUpload(ctx context.Context, token string, mediaID uuid.UUID, ip *string) error {
	return nil
}

func (stubMediaService) PhotoIDDownloadURL(ctx context.Context, actor auth.Actor, submissionID uuid.UUID) (*media.DownloadOutput, error) {
	return &media.DownloadOutput{}, nil
}

func (stubMediaService) ClientPhotoIDDownloadURL(ctx context.Context, token string, ip *string) (*media.DownloadOutput, error) {
	return &media.DownloadOutput{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, actor auth.Actor, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) NotifyUnderageSigning(ctx context.Context, submission *models.ConsentSubmission) {
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		// IPLimit 0 disables the signing rate limit so routing tests
		// never touch redis.
		SigningLimit: config.SigningRateLimitConfig{Window: time.Minute, IPLimit: 0},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},    // db.Pinger
		&redis.Client{}, // *redis.Client
		stubPinger{},    // gcs.Pinger
		nil,             // *metrics.HTTPMetrics
		nil,             // prometheus.Gatherer
		stubAuthService{},
		stubTemplatesService{},
		stubSigningService{},
		stubSubmissionsService{},
		stubAuditService{},
		stubMediaService{},
		stubNotificationsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		StudioID: uuid.New(),
		Name:     "Route Tester",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestStaffRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestTemplateMutationsRequireOwner(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	staff := httptest.NewRequest(http.MethodDelete, "/api/v1/templates/"+uuid.NewString(), nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff got %d", resp.Code)
	}

	owner := httptest.NewRequest(http.MethodDelete, "/api/v1/templates/"+uuid.NewString(), nil)
	owner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleOwner))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, owner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner got %d", resp.Code)
	}
}

func TestTemplateReadsAllowStaff(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff read got %d", resp.Code)
	}
}

func TestPublicSigningNeedsNoAuth(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/public/studios/ink-haven/templates/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPortalNeedsNoAuth(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/portal/forms/tok-abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
