package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/logging"
	"github.com/mkarlsen/kontor/internal/metrics"
	"github.com/mkarlsen/kontor/internal/token"
)

// allowedDocumentExtensions mirrors what the back office accepts from
// clients: receipts, statements, and office documents.
var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".docx": true,
	".txt":  true,
}

// DocumentService manages uploaded documents per organization.
type DocumentService struct {
	documents    domain.DocumentRepository
	audit        domain.AuditRepository
	maxSizeBytes int64
	tenancy
}

func NewDocumentService(documents domain.DocumentRepository, users domain.UserRepository, audit domain.AuditRepository, maxSizeMB int) *DocumentService {
	return &DocumentService{
		documents:    documents,
		audit:        audit,
		maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
		tenancy:      tenancy{users: users},
	}
}

func (s *DocumentService) Upload(ctx context.Context, identity *token.Identity, doc *domain.Document) error {
	if err := s.authorizeOrgAccess(ctx, identity, doc.OrganizationID); err != nil {
		return err
	}

	if int64(len(doc.Content)) > s.maxSizeBytes {
		return domain.ErrDocumentTooLarge
	}
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if !allowedDocumentExtensions[ext] {
		return domain.ErrDocumentTypeForbidden
	}

	doc.UploadedBy = identity.UserID
	doc.SizeBytes = int64(len(doc.Content))
	if err := s.documents.Create(ctx, doc); err != nil {
		return err
	}

	metrics.DocumentUploadsTotal.Inc()
	metrics.DocumentUploadBytes.Observe(float64(doc.SizeBytes))
	s.record(ctx, identity, doc.OrganizationID, domain.AuditActionCreate, &doc.ID, "uploaded "+doc.FileName)
	logging.WithOrganization(doc.OrganizationID.String()).Info("Document uploaded", "file_name", doc.FileName, "size_bytes", doc.SizeBytes)
	return nil
}

func (s *DocumentService) List(ctx context.Context, identity *token.Identity, orgID uuid.UUID) ([]domain.Document, error) {
	if err := s.authorizeOrgAccess(ctx, identity, orgID); err != nil {
		return nil, err
	}
	return s.documents.ListByOrganization(ctx, orgID)
}

func (s *DocumentService) Download(ctx context.Context, identity *token.Identity, documentID uuid.UUID) (*domain.Document, error) {
	meta, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrgAccess(ctx, identity, meta.OrganizationID); err != nil {
		return nil, err
	}
	return s.documents.GetContent(ctx, documentID)
}

func (s *DocumentService) Delete(ctx context.Context, identity *token.Identity, documentID uuid.UUID) error {
	meta, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.authorizeOrgAccess(ctx, identity, meta.OrganizationID); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, documentID); err != nil {
		return err
	}
	s.record(ctx, identity, meta.OrganizationID, domain.AuditActionDelete, &documentID, "deleted "+meta.FileName)
	return nil
}

func (s *DocumentService) record(ctx context.Context, identity *token.Identity, orgID uuid.UUID, action string, entityID *uuid.UUID, detail string) {
	entry := &domain.AuditEntry{
		OrganizationID: &orgID,
		ActorID:        identity.UserID,
		Action:         action,
		Entity:         "document",
		EntityID:       entityID,
		Detail:         detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "entity", "document", "error", err)
	}
}
