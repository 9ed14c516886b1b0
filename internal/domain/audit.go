package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the service layer.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionLogin  = "login"
	AuditActionAccess = "access"
)

type AuditEntry struct {
	ID             uuid.UUID
	OrganizationID *uuid.UUID
	ActorID        uuid.UUID
	Action         string
	Entity         string
	EntityID       *uuid.UUID
	Detail         string
	CreatedAt      time.Time
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int) ([]AuditEntry, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]AuditEntry, error)
}
