package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the server-side record of an issued refresh token. Only the
// SHA-256 hash of the raw value is stored; the raw token lives in the
// client's cookie. Rotation revokes the old record and links it to its
// replacement so a reused token identifies the whole chain.
type RefreshToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *uuid.UUID
	CreatedAt  time.Time
}

type RefreshTokenRepository interface {
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Create(ctx context.Context, token *RefreshToken) error
	// Rotate revokes the old record and inserts its replacement in one
	// transaction, linking them via ReplacedBy.
	Rotate(ctx context.Context, oldID uuid.UUID, replacement *RefreshToken) error
	// RevokeChain revokes every live token of the user. Used on logout and
	// when a rotated-out token is presented again.
	RevokeChain(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
