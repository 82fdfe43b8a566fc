// Package auth verifies the identity provider's bearer tokens and tracks
// signed-out sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("session signed out")
	ErrDisabled     = errors.New("auth disabled")
)

// Claims are the identity provider's access token claims. Subject is the
// professional id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens and the revocation list.
type Verifier struct {
	secret  []byte
	revoked RevocationStore
	parser  *jwt.Parser
}

// NewVerifier builds a verifier. revoked may be nil.
func NewVerifier(secret string, revoked RevocationStore) *Verifier {
	return &Verifier{
		secret:  []byte(strings.TrimSpace(secret)),
		revoked: revoked,
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired()),
	}
}

// FromHeader extracts and verifies the token in an Authorization header value.
func (v *Verifier) FromHeader(ctx context.Context, header string) (*Claims, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, ErrMissingToken
	}
	return v.Verify(ctx, strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, ErrDisabled
	}
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if v.revoked != nil && claims.ID != "" {
		revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("auth: revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Sign issues a token for professionalID; used by local tooling and tests.
func (v *Verifier) Sign(professionalID, email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrDisabled
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   professionalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// SignOut revokes the token's id until it would have expired anyway.
func (v *Verifier) SignOut(ctx context.Context, claims *Claims) error {
	if v.revoked == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return v.revoked.Revoke(ctx, claims.ID, ttl)
}
