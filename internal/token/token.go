// Package token issues and verifies the credentials of the authentication
// flow: short-lived signed access tokens carrying identity and roles, and
// opaque high-entropy refresh tokens that are only ever persisted as hashes.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	issuer          = "kontor"
	tokenTypeAccess = "access"

	// refreshTokenBytes gives 384 bits of entropy, rendered as 96 lowercase
	// hex characters.
	refreshTokenBytes = 48
)

// ErrInvalidToken is returned when an access token is malformed, carries a
// bad signature, or is expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified content of an access token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

type accessClaims struct {
	Roles     []string `json:"roles,omitempty"`
	Email     string   `json:"email,omitempty"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// Service signs and verifies access tokens with a process-wide HS256 secret.
// The secret and TTL are immutable after construction.
type Service struct {
	secret    []byte
	accessTTL time.Duration
	clock     clockwork.Clock
}

// NewService creates a token service. The clock is injected so expiry can be
// tested with a fake clock.
func NewService(secret string, accessTTL time.Duration, clock clockwork.Clock) *Service {
	return &Service{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		clock:     clock,
	}
}

// SignAccessToken embeds the identity and role list into a signed token that
// expires after the configured access TTL.
func (s *Service) SignAccessToken(identity Identity) (string, error) {
	now := s.clock.Now()
	claims := accessClaims{
		Roles:     identity.Roles,
		Email:     identity.Email,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks signature, expiry, issuer, and token type, and
// returns the embedded identity. Client-supplied claims are never trusted
// without signature verification.
func (s *Service) VerifyAccessToken(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: userID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}

// GenerateRefreshToken returns a cryptographically random opaque token as
// lowercase hex. The raw value goes to the client; only its hash is stored.
func (s *Service) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the deterministic SHA-256 hex digest of a token, so the
// persistence layer can compare without ever holding the raw value.
func (s *Service) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
