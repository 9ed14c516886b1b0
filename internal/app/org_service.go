package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/token"
)

// OrganizationService manages client organizations.
type OrganizationService struct {
	orgs  domain.OrganizationRepository
	audit domain.AuditRepository
	tenancy
}

func NewOrganizationService(orgs domain.OrganizationRepository, users domain.UserRepository, audit domain.AuditRepository) *OrganizationService {
	return &OrganizationService{
		orgs:    orgs,
		audit:   audit,
		tenancy: tenancy{users: users},
	}
}

// Get returns one organization. Client users may only read their own.
func (s *OrganizationService) Get(ctx context.Context, identity *token.Identity, orgID uuid.UUID) (*domain.Organization, error) {
	if err := s.authorizeOrgAccess(ctx, identity, orgID); err != nil {
		return nil, err
	}
	return s.orgs.GetByID(ctx, orgID)
}

// List returns all organizations for staff, or the client's own organization
// as a single-element list.
func (s *OrganizationService) List(ctx context.Context, identity *token.Identity) ([]domain.Organization, error) {
	if isStaffIdentity(identity) {
		return s.orgs.List(ctx)
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil {
		return nil, nil
	}

	org, err := s.orgs.GetByID(ctx, *user.OrganizationID)
	if err != nil {
		return nil, err
	}
	return []domain.Organization{*org}, nil
}

func (s *OrganizationService) Create(ctx context.Context, identity *token.Identity, org *domain.Organization) error {
	if err := validateOrganization(org); err != nil {
		return err
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return err
	}
	s.record(ctx, identity, org.ID, domain.AuditActionCreate, "created organization "+org.Name)
	return nil
}

func (s *OrganizationService) Update(ctx context.Context, identity *token.Identity, org *domain.Organization) error {
	if err := validateOrganization(org); err != nil {
		return err
	}
	// Clients may update contact data of their own organization.
	if err := s.authorizeOrgAccess(ctx, identity, org.ID); err != nil {
		return err
	}
	if err := s.orgs.Update(ctx, org); err != nil {
		return err
	}
	s.record(ctx, identity, org.ID, domain.AuditActionUpdate, "updated organization "+org.Name)
	return nil
}

func (s *OrganizationService) Delete(ctx context.Context, identity *token.Identity, orgID uuid.UUID) error {
	if err := s.orgs.Delete(ctx, orgID); err != nil {
		return err
	}
	s.record(ctx, identity, orgID, domain.AuditActionDelete, "deleted organization")
	return nil
}

func validateOrganization(org *domain.Organization) error {
	if strings.TrimSpace(org.Name) == "" {
		return domain.ErrOrganizationNameMissing
	}
	return nil
}

func (s *OrganizationService) record(ctx context.Context, identity *token.Identity, orgID uuid.UUID, action, detail string) {
	entry := &domain.AuditEntry{
		OrganizationID: &orgID,
		ActorID:        identity.UserID,
		Action:         action,
		Entity:         "organization",
		EntityID:       &orgID,
		Detail:         detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "entity", "organization", "error", err)
	}
}
