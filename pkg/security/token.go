package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// accessTokenBytes yields 256 bits of entropy per token.
const accessTokenBytes = 32

// GenerateAccessToken mints the unguessable credential a client uses to
// retrieve their own submission. It is the client's sole durable credential,
// so it must never be derivable from other submission data.
func GenerateAccessToken() (string, error) {
	buf := make([]byte, accessTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
