package signing

import (
	"time"

	"github.com/google/uuid"
)

// SignInput is the client-submitted payload for a signing attempt.
type SignInput struct {
	ClientName    string
	ClientEmail   string
	ClientPhone   *string
	DateOfBirth   *time.Time
	Responses     map[string]any
	SignatureData *string
	IPAddress     *string
}

// SignResult is returned to the client on success. The access token is
// the client's only durable credential for later retrieval.
type SignResult struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	AccessToken  string    `json:"access_token"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
