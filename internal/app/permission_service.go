package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/token"
)

// GrantInvalidator drops cached permission decisions for a user after the
// grant table changes.
type GrantInvalidator interface {
	Invalidate(userID uuid.UUID)
}

// PermissionService is the admin surface for managing explicit entity/action
// grants. Every mutation invalidates the decision cache so the change takes
// effect on the next request, not after the cache TTL.
type PermissionService struct {
	perms domain.PermissionRepository
	users domain.UserRepository
	audit domain.AuditRepository
	cache GrantInvalidator
}

func NewPermissionService(perms domain.PermissionRepository, users domain.UserRepository, audit domain.AuditRepository, cache GrantInvalidator) *PermissionService {
	return &PermissionService{perms: perms, users: users, audit: audit, cache: cache}
}

func (s *PermissionService) Grant(ctx context.Context, identity *token.Identity, userID uuid.UUID, entity, action string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.perms.Grant(ctx, user.ID, entity, action); err != nil {
		return err
	}
	s.cache.Invalidate(user.ID)
	s.record(ctx, identity, user, domain.AuditActionCreate, "granted "+entity+":"+action+" to "+user.Email)
	return nil
}

func (s *PermissionService) Revoke(ctx context.Context, identity *token.Identity, userID uuid.UUID, entity, action string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.perms.Revoke(ctx, user.ID, entity, action); err != nil {
		return err
	}
	s.cache.Invalidate(user.ID)
	s.record(ctx, identity, user, domain.AuditActionDelete, "revoked "+entity+":"+action+" from "+user.Email)
	return nil
}

func (s *PermissionService) record(ctx context.Context, identity *token.Identity, user *domain.User, action, detail string) {
	entry := &domain.AuditEntry{
		ActorID:  identity.UserID,
		Action:   action,
		Entity:   "permission",
		EntityID: &user.ID,
		Detail:   detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "entity", "permission", "error", err)
	}
}
