package auth

import (
	"context"
	"fmt"

	"feedback_reminder_service/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the participant id under the user_id claim.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 bearer tokens.
type JWTVerifier struct {
	secret []byte
}

var _ identity.Verifier = (*JWTVerifier)(nil)

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates token and returns the participant id it names.
func (v *JWTVerifier) Verify(_ context.Context, token string) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", identity.ErrRejected, err)
	}
	if !parsed.Valid || claims.UserID <= 0 {
		return 0, identity.ErrRejected
	}
	return claims.UserID, nil
}
