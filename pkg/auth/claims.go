package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	StudioID uuid.UUID
	Name     string
	Role     enums.MemberRole
}

// AccessTokenClaims represents the typed JWT issued to staff users.
type AccessTokenClaims struct {
	UserID   uuid.UUID        `json:"user_id"`
	StudioID uuid.UUID        `json:"studio_id"`
	Name     string           `json:"name"`
	Role     enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
