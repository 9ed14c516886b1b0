package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UploadedBy     uuid.UUID
	FileName       string
	ContentType    string
	SizeBytes      int64
	// Content is only populated by GetContent; listings carry metadata alone.
	Content    []byte
	UploadedAt time.Time
}

type DocumentRepository interface {
	GetByID(ctx context.Context, documentID uuid.UUID) (*Document, error)
	GetContent(ctx context.Context, documentID uuid.UUID) (*Document, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Document, error)
	Create(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, documentID uuid.UUID) error
}
