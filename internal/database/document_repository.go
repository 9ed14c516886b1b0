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

const documentMetaColumns = `id, organization_id, uploaded_by, file_name, content_type, size_bytes, uploaded_at`

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func scanDocumentMeta(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(
		&doc.ID, &doc.OrganizationID, &doc.UploadedBy, &doc.FileName,
		&doc.ContentType, &doc.SizeBytes, &doc.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentMetaColumns+` FROM documents WHERE id = $1`, documentID)
	return scanDocumentMeta(row)
}

func (r *DocumentRepo) GetContent(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.pool.QueryRow(ctx, `
		SELECT `+documentMetaColumns+`, content FROM documents WHERE id = $1
	`, documentID).Scan(
		&doc.ID, &doc.OrganizationID, &doc.UploadedBy, &doc.FileName,
		&doc.ContentType, &doc.SizeBytes, &doc.UploadedAt, &doc.Content,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document content: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentMetaColumns+` FROM documents
		WHERE organization_id = $1 ORDER BY uploaded_at DESC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocumentMeta(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (organization_id, uploaded_by, file_name, content_type, size_bytes, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uploaded_at
	`, doc.OrganizationID, doc.UploadedBy, doc.FileName, doc.ContentType, doc.SizeBytes, doc.Content)

	if err := row.Scan(&doc.ID, &doc.UploadedAt); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, documentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
