// Package auth handles password hashing and JWT bearer tokens.
//
// TOKEN PAIRS:
// Logging in yields two HS256 tokens for the same user. The short-lived
// access token authenticates API calls; the long-lived refresh token can only
// be traded for a new access token. A "typ" claim tells them apart, so one
// can never be used in place of the other.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "blog-api"

// TokenType is the value of the "typ" claim.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// ErrInvalidToken covers every way a token can be rejected: bad signature,
// expiry, wrong issuer or wrong type.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenService issues and verifies tokens with a shared secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService rejects secrets shorter than 16 characters.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

type claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// GenerateAccess issues an access token for userID.
func (s *TokenService) GenerateAccess(userID string) (string, error) {
	return s.generate(userID, AccessToken, s.accessTTL)
}

// GenerateRefresh issues a refresh token for userID.
func (s *TokenService) GenerateRefresh(userID string) (string, error) {
	return s.generate(userID, RefreshToken, s.refreshTTL)
}

func (s *TokenService) generate(userID string, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()

	c := claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", typ, err)
	}
	return signed, nil
}

// ValidateAccess returns the user ID of a valid access token.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	return s.validate(tokenStr, AccessToken)
}

// ValidateRefresh returns the user ID of a valid refresh token.
func (s *TokenService) ValidateRefresh(tokenStr string) (string, error) {
	return s.validate(tokenStr, RefreshToken)
}

func (s *TokenService) validate(tokenStr string, want TokenType) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: unreadable claims", ErrInvalidToken)
	}
	if c.Type != want {
		return "", fmt.Errorf("%w: got %q token, want %q", ErrInvalidToken, c.Type, want)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return c.Subject, nil
}
