package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/kontor/internal/domain"
)

const auditColumns = `id, organization_id, actor_id, action, entity, entity_id, detail, created_at`

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO audit_entries (organization_id, actor_id, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, entry.OrganizationID, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, entry.Detail)

	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_entries
		WHERE organization_id = $1 ORDER BY created_at DESC LIMIT $2
	`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()
	return collectAuditEntries(rows)
}

func (r *AuditRepo) ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_entries
		WHERE actor_id = $1 ORDER BY created_at DESC LIMIT $2
	`, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()
	return collectAuditEntries(rows)
}

func collectAuditEntries(rows pgx.Rows) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID, &entry.OrganizationID, &entry.ActorID, &entry.Action,
			&entry.Entity, &entry.EntityID, &entry.Detail, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
