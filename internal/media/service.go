package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/internal/auth"
	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	pkgerrors "github.com/simmonsmd7/inkflow-sub002/pkg/errors"
)

const (
	uploadURLTTL   = 15 * time.Minute
	downloadURLTTL = 5 * time.Minute
)

// allowedPhotoIDMimeTypes is the whitelist for photo-ID images. Anything
// else is rejected before an upload URL is ever issued.
var allowedPhotoIDMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type mediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.Media, error)
	MarkAttachedWithTx(tx *gorm.DB, id, submissionID uuid.UUID) error
}

type submissionRepository interface {
	FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentSubmission, error)
	FindByAccessToken(ctx context.Context, token string) (*models.ConsentSubmission, error)
	UpdateWithCAS(tx *gorm.DB, submission *models.ConsentSubmission) error
}

type auditRepository interface {
	Append(ctx context.Context, entry *models.ConsentAuditLog) error
	AppendWithTx(tx *gorm.DB, entry *models.ConsentAuditLog) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type objectStore interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	ObjectExists(ctx context.Context, bucket, object string) (bool, error)
}

// PresignInput describes the file a client wants to upload.
type PresignInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	IPAddress *string
}

// PresignOutput carries the one-time upload URL and the media row to
// finalize against.
type PresignOutput struct {
	MediaID   uuid.UUID `json:"media_id"`
	UploadURL string    `json:"upload_url"`
	GCSKey    string    `json:"gcs_key"`
	ExpiresIn int64     `json:"expires_in_seconds"`
}

// DownloadOutput carries a short-lived read URL.
type DownloadOutput struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

// Service manages photo-ID objects: presigned uploads by the client,
// finalize-and-attach, and audited downloads.
type Service interface {
	PresignPhotoIDUpload(ctx context.Context, accessToken string, input PresignInput) (*PresignOutput, error)
	FinalizePhotoIDUpload(ctx context.Context, accessToken string, mediaID uuid.UUID, ipAddress *string) error
	PhotoIDDownloadURL(ctx context.Context, actor auth.Actor, submissionID uuid.UUID) (*DownloadOutput, error)
	ClientPhotoIDDownloadURL(ctx context.Context, accessToken string, ipAddress *string) (*DownloadOutput, error)
}

type service struct {
	media       mediaRepository
	submissions submissionRepository
	audit       auditRepository
	tx          txRunner
	store       objectStore
	bucket      string
	maxBytes    int64
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	MediaRepo      mediaRepository
	SubmissionRepo submissionRepository
	AuditRepo      auditRepository
	TxRunner       txRunner
	Store          objectStore
	Bucket         string
	MaxPhotoBytes  int64
}

// NewService constructs the media service.
func NewService(params ServiceParams) (Service, error) {
	if params.MediaRepo == nil {
		return nil, fmt.Errorf("media repository is required")
	}
	if params.SubmissionRepo == nil {
		return nil, fmt.Errorf("submission repository is required")
	}
	if params.AuditRepo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if params.MaxPhotoBytes <= 0 {
		return nil, fmt.Errorf("max photo size is required")
	}
	return &service{
		media:       params.MediaRepo,
		submissions: params.SubmissionRepo,
		audit:       params.AuditRepo,
		tx:          params.TxRunner,
		store:       params.Store,
		bucket:      params.Bucket,
		maxBytes:    params.MaxPhotoBytes,
	}, nil
}

// PresignPhotoIDUpload validates the declared file and issues the upload
// URL. The rejection happens before anything is written: no media row, no
// object, no audit entry.
func (s *service) PresignPhotoIDUpload(ctx context.Context, accessToken string, input PresignInput) (*PresignOutput, error) {
	submission, err := s.loadByToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if submission.IsVoided {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission is voided")
	}
	if submission.PhotoIDVerified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "photo ID has already been verified")
	}

	mimeType, ext, err := validatePhotoIDMime(input.MimeType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpload, err.Error())
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUpload, "file size is required")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeUpload,
			fmt.Sprintf("file exceeds the %d MB photo-ID limit", s.maxBytes/(1024*1024)))
	}

	key := photoIDKey(submission.StudioID, submission.ID, ext)
	uploadURL, err := s.store.SignedURL(s.bucket, key, mimeType, uploadURLTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	row := &models.Media{
		StudioID:  submission.StudioID,
		Kind:      enums.MediaKindPhotoID,
		Status:    enums.MediaStatusPending,
		GCSKey:    key,
		FileName:  sanitizeFileName(input.FileName),
		MimeType:  mimeType,
		SizeBytes: input.SizeBytes,
	}
	if err := s.media.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media row")
	}

	return &PresignOutput{
		MediaID:   row.ID,
		UploadURL: uploadURL,
		GCSKey:    key,
		ExpiresIn: int64(uploadURLTTL.Seconds()),
	}, nil
}

// FinalizePhotoIDUpload confirms the object landed in the bucket and
// attaches it to the submission. The attachment and its audit entry
// commit together.
func (s *service) FinalizePhotoIDUpload(ctx context.Context, accessToken string, mediaID uuid.UUID, ipAddress *string) error {
	submission, err := s.loadByToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if submission.IsVoided {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "submission is voided")
	}
	if submission.PhotoIDVerified {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "photo ID has already been verified")
	}

	row, err := s.media.FindByID(ctx, submission.StudioID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "upload not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media row")
	}

	exists, err := s.store.ObjectExists(ctx, s.bucket, row.GCSKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check upload")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeUpload, "upload has not completed")
	}

	key := row.GCSKey
	submission.PhotoIDURL = &key

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.submissions.UpdateWithCAS(tx, submission); err != nil {
			return err
		}
		if err := s.media.MarkAttachedWithTx(tx, row.ID, submission.ID); err != nil {
			return err
		}
		return s.audit.AppendWithTx(tx, &models.ConsentAuditLog{
			SubmissionID:   submission.ID,
			Action:         enums.AuditActionPhotoIDAttached,
			IsClientAccess: true,
			IPAddress:      ipAddress,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach photo ID")
	}
	return nil
}

// PhotoIDDownloadURL issues a short-lived read URL for staff review.
func (s *service) PhotoIDDownloadURL(ctx context.Context, actor auth.Actor, submissionID uuid.UUID) (*DownloadOutput, error) {
	submission, err := s.submissions.FindByID(ctx, actor.StudioID, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}

	out, err := s.signRead(submission)
	if err != nil {
		return nil, err
	}

	name := actor.Name
	err = s.audit.Append(ctx, &models.ConsentAuditLog{
		SubmissionID:    submission.ID,
		Action:          enums.AuditActionDownloaded,
		PerformedBy:     &actor.UserID,
		PerformedByName: &name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}
	return out, nil
}

// ClientPhotoIDDownloadURL lets the client retrieve their own photo ID.
func (s *service) ClientPhotoIDDownloadURL(ctx context.Context, accessToken string, ipAddress *string) (*DownloadOutput, error) {
	submission, err := s.loadByToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	out, err := s.signRead(submission)
	if err != nil {
		return nil, err
	}

	err = s.audit.Append(ctx, &models.ConsentAuditLog{
		SubmissionID:   submission.ID,
		Action:         enums.AuditActionDownloaded,
		IsClientAccess: true,
		IPAddress:      ipAddress,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}
	return out, nil
}

func (s *service) signRead(submission *models.ConsentSubmission) (*DownloadOutput, error) {
	if submission.PhotoIDURL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no photo ID on file")
	}
	url, err := s.store.SignedReadURL(s.bucket, *submission.PhotoIDURL, downloadURLTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return &DownloadOutput{URL: url, ExpiresIn: int64(downloadURLTTL.Seconds())}, nil
}

func (s *service) loadByToken(ctx context.Context, accessToken string) (*models.ConsentSubmission, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
	}
	submission, err := s.submissions.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	return submission, nil
}

func validatePhotoIDMime(value string) (string, string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", "", fmt.Errorf("mime type is required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", "", fmt.Errorf("mime type is invalid")
	}
	mediaType = strings.ToLower(mediaType)
	ext, ok := allowedPhotoIDMimeTypes[mediaType]
	if !ok {
		return "", "", fmt.Errorf("photo ID must be a JPEG, PNG, GIF, or WebP image")
	}
	return mediaType, ext, nil
}

func photoIDKey(studioID, submissionID uuid.UUID, ext string) string {
	return fmt.Sprintf("studios/%s/submissions/%s/photo-id/%s%s",
		studioID, submissionID, uuid.NewString(), ext)
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(path.Base(name))
	if name == "" || name == "." || name == "/" {
		return "photo-id"
	}
	return name
}
