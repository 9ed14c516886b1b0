package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/token"
)

// BankAccountService manages an organization's banking data. Encryption of
// the online-banking credentials happens in the repository; this layer only
// enforces tenancy and records the audit trail.
type BankAccountService struct {
	accounts domain.BankAccountRepository
	audit    domain.AuditRepository
	tenancy
}

func NewBankAccountService(accounts domain.BankAccountRepository, users domain.UserRepository, audit domain.AuditRepository) *BankAccountService {
	return &BankAccountService{
		accounts: accounts,
		audit:    audit,
		tenancy:  tenancy{users: users},
	}
}

func (s *BankAccountService) Get(ctx context.Context, identity *token.Identity, accountID uuid.UUID) (*domain.BankAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrgAccess(ctx, identity, account.OrganizationID); err != nil {
		return nil, err
	}

	// Reading decrypted banking credentials is itself audit-worthy.
	s.record(ctx, identity, account.OrganizationID, domain.AuditActionAccess, &account.ID, "read bank account "+account.IBAN)
	return account, nil
}

func (s *BankAccountService) ListByOrganization(ctx context.Context, identity *token.Identity, orgID uuid.UUID) ([]domain.BankAccount, error) {
	if err := s.authorizeOrgAccess(ctx, identity, orgID); err != nil {
		return nil, err
	}
	return s.accounts.ListByOrganization(ctx, orgID)
}

func (s *BankAccountService) Create(ctx context.Context, identity *token.Identity, account *domain.BankAccount) error {
	if err := s.authorizeOrgAccess(ctx, identity, account.OrganizationID); err != nil {
		return err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return err
	}
	s.record(ctx, identity, account.OrganizationID, domain.AuditActionCreate, &account.ID, "created bank account "+account.IBAN)
	return nil
}

func (s *BankAccountService) Update(ctx context.Context, identity *token.Identity, account *domain.BankAccount) error {
	existing, err := s.accounts.GetByID(ctx, account.ID)
	if err != nil {
		return err
	}
	if err := s.authorizeOrgAccess(ctx, identity, existing.OrganizationID); err != nil {
		return err
	}

	account.OrganizationID = existing.OrganizationID
	if err := s.accounts.Update(ctx, account); err != nil {
		return err
	}
	s.record(ctx, identity, account.OrganizationID, domain.AuditActionUpdate, &account.ID, "updated bank account "+account.IBAN)
	return nil
}

func (s *BankAccountService) Delete(ctx context.Context, identity *token.Identity, accountID uuid.UUID) error {
	existing, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.authorizeOrgAccess(ctx, identity, existing.OrganizationID); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return err
	}
	s.record(ctx, identity, existing.OrganizationID, domain.AuditActionDelete, &accountID, "deleted bank account")
	return nil
}

func (s *BankAccountService) record(ctx context.Context, identity *token.Identity, orgID uuid.UUID, action string, entityID *uuid.UUID, detail string) {
	entry := &domain.AuditEntry{
		OrganizationID: &orgID,
		ActorID:        identity.UserID,
		Action:         action,
		Entity:         "bank_account",
		EntityID:       entityID,
		Detail:         detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "entity", "bank_account", "error", err)
	}
}
