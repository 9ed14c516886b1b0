package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/kontor/internal/domain"
)

const organizationColumns = `id, name, tax_number, vat_id, street, postal_code, city,
	contact_name, contact_email, contact_phone, notes, created_at, updated_at`

type OrganizationRepo struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepo(pool *pgxpool.Pool) *OrganizationRepo {
	return &OrganizationRepo{pool: pool}
}

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var org domain.Organization
	err := row.Scan(
		&org.ID, &org.Name, &org.TaxNumber, &org.VATID, &org.Street,
		&org.PostalCode, &org.City, &org.ContactName, &org.ContactEmail,
		&org.ContactPhone, &org.Notes, &org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan organization: %w", err)
	}
	return &org, nil
}

func (r *OrganizationRepo) GetByID(ctx context.Context, orgID uuid.UUID) (*domain.Organization, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, orgID)
	return scanOrganization(row)
}

func (r *OrganizationRepo) List(ctx context.Context) ([]domain.Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	return orgs, rows.Err()
}

func (r *OrganizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, tax_number, vat_id, street, postal_code, city,
			contact_name, contact_email, contact_phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, org.Name, org.TaxNumber, org.VATID, org.Street, org.PostalCode, org.City,
		org.ContactName, org.ContactEmail, org.ContactPhone, org.Notes)

	if err := row.Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepo) Update(ctx context.Context, org *domain.Organization) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizations
		SET name = $2, tax_number = $3, vat_id = $4, street = $5, postal_code = $6,
			city = $7, contact_name = $8, contact_email = $9, contact_phone = $10,
			notes = $11, updated_at = NOW()
		WHERE id = $1
	`, org.ID, org.Name, org.TaxNumber, org.VATID, org.Street, org.PostalCode,
		org.City, org.ContactName, org.ContactEmail, org.ContactPhone, org.Notes)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

func (r *OrganizationRepo) Delete(ctx context.Context, orgID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}
