package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims represents the typed JWT presented by clients. Tokens are
// minted by the identity provider; this service only verifies them.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}
