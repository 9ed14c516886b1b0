package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/kontor/internal/domain"
)

const refreshTokenColumns = `id, user_id, token_hash, expires_at, revoked, replaced_by, created_at`

// RefreshTokenRepo implements domain.RefreshTokenRepository. Only token
// hashes are stored; the raw token never reaches this layer.
type RefreshTokenRepo struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepo(pool *pgxpool.Pool) *RefreshTokenRepo {
	return &RefreshTokenRepo{pool: pool}
}

func scanRefreshToken(row pgx.Row) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := row.Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt,
		&token.Revoked, &token.ReplacedBy, &token.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan refresh token: %w", err)
	}
	return &token, nil
}

func (r *RefreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return scanRefreshToken(row)
}

func (r *RefreshTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, token.UserID, token.TokenHash, token.ExpiresAt)

	if err := row.Scan(&token.ID, &token.CreatedAt); err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// Rotate revokes the old record and inserts its replacement atomically, so a
// crash between the two steps cannot leave both tokens usable.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, oldID uuid.UUID, replacement *domain.RefreshToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, replacement.UserID, replacement.TokenHash, replacement.ExpiresAt)
	if err := row.Scan(&replacement.ID, &replacement.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert replacement token: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, replaced_by = $2 WHERE id = $1 AND NOT revoked
	`, oldID, replacement.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke rotated token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenRevoked
	}

	return tx.Commit(ctx)
}

func (r *RefreshTokenRepo) RevokeChain(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
