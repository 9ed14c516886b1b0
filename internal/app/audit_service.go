package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
)

const defaultAuditLimit = 100

// AuditService exposes the read side of the audit trail.
type AuditService struct {
	audit domain.AuditRepository
}

func NewAuditService(audit domain.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

func (s *AuditService) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultAuditLimit
	}
	return s.audit.ListByOrganization(ctx, orgID, limit)
}

func (s *AuditService) ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultAuditLimit
	}
	return s.audit.ListByActor(ctx, actorID, limit)
}
