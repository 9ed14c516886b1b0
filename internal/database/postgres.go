package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.ConnConfig.Tracer = &MetricsTracer{}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT UNIQUE NOT NULL,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		roles TEXT[] NOT NULL DEFAULT '{}',
		organization_id UUID,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		tax_number TEXT NOT NULL DEFAULT '',
		vat_id TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE users
		ADD CONSTRAINT fk_users_organization
		FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE SET NULL`,
	`CREATE TABLE IF NOT EXISTS bank_accounts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		bank_name TEXT NOT NULL,
		iban TEXT NOT NULL,
		bic TEXT NOT NULL DEFAULT '',
		online_login TEXT NOT NULL DEFAULT '',
		online_password TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bank_accounts_organization ON bank_accounts(organization_id)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		uploaded_by UUID NOT NULL REFERENCES users(id),
		file_name TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		content BYTEA NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_organization ON documents(organization_id)`,
	`CREATE TABLE IF NOT EXISTS audit_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		organization_id UUID,
		actor_id UUID NOT NULL,
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id UUID,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entries_organization ON audit_entries(organization_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash TEXT UNIQUE NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		replaced_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		entity TEXT NOT NULL,
		action TEXT NOT NULL,
		granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, entity, action)
	)`,
}

// RunMigrations applies the schema statements in order. Statements are
// idempotent, so re-running on startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			// The users->organizations FK is added after both tables exist
			// and has no IF NOT EXISTS form.
			if i == 2 && isDuplicateObject(err) {
				continue
			}
			return fmt.Errorf("failed to run migration %d: %w", i, err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}

func isDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	// 42710 duplicate_object
	return errors.As(err, &pgErr) && pgErr.Code == "42710"
}
