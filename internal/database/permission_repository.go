package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PermissionRepo implements domain.PermissionRepository against the explicit
// grant table. Absence of a row means no access.
type PermissionRepo struct {
	pool *pgxpool.Pool
}

func NewPermissionRepo(pool *pgxpool.Pool) *PermissionRepo {
	return &PermissionRepo{pool: pool}
}

func (r *PermissionRepo) HasPermission(ctx context.Context, userID uuid.UUID, entity, action string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM permissions WHERE user_id = $1 AND entity = $2 AND action = $3
		)
	`, userID, entity, action).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return exists, nil
}

func (r *PermissionRepo) Grant(ctx context.Context, userID uuid.UUID, entity, action string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO permissions (user_id, entity, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, entity, action) DO NOTHING
	`, userID, entity, action)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}
	return nil
}

func (r *PermissionRepo) Revoke(ctx context.Context, userID uuid.UUID, entity, action string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM permissions WHERE user_id = $1 AND entity = $2 AND action = $3
	`, userID, entity, action)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}
	return nil
}
