// Package auth issues and verifies the signed tokens that carry a caller's identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the JWT claims of an identity token. The subject is the identity.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 identity tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// NewTokenService creates a TokenService. The key must not be empty.
func NewTokenService(signingKey, issuer string) (*TokenService, error) {
	if signingKey == "" {
		return nil, errors.New("jwt signing key is required")
	}
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// Issue signs a token for identity valid for ttl.
func (s *TokenService) Issue(identity domain.Identity, ttl time.Duration) (string, error) {
	if identity.IsZero() {
		return "", errors.New("identity is required")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(identity),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature, issuer and expiry and returns its identity.
func (s *TokenService) Verify(tokenString string) (domain.Identity, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return domain.Identity(claims.Subject), nil
}
