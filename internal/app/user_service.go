package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/token"
)

// UserService is the admin surface for managing staff and client accounts.
type UserService struct {
	users domain.UserRepository
	audit domain.AuditRepository
}

func NewUserService(users domain.UserRepository, audit domain.AuditRepository) *UserService {
	return &UserService{users: users, audit: audit}
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Create stores a new user with the given raw password. Role names are
// validated here so the repository never sees an unknown role.
func (s *UserService) Create(ctx context.Context, identity *token.Identity, user *domain.User, password string) error {
	for _, role := range user.Roles {
		if !domain.ValidRole(role) {
			return domain.ErrUnknownRole
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Active = true

	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.record(ctx, identity, user, domain.AuditActionCreate, "created user "+user.Email)
	return nil
}

func (s *UserService) Update(ctx context.Context, identity *token.Identity, user *domain.User) error {
	for _, role := range user.Roles {
		if !domain.ValidRole(role) {
			return domain.ErrUnknownRole
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.record(ctx, identity, user, domain.AuditActionUpdate, "updated user "+user.Email)
	return nil
}

// SetActive enables or disables an account. Deactivation blocks both login
// and refresh immediately; live access tokens lapse at expiry.
func (s *UserService) SetActive(ctx context.Context, identity *token.Identity, userID uuid.UUID, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}

	detail := "deactivated user"
	if active {
		detail = "activated user"
	}
	entry := &domain.AuditEntry{
		ActorID:  identity.UserID,
		Action:   domain.AuditActionUpdate,
		Entity:   "user",
		EntityID: &userID,
		Detail:   detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "entity", "user", "error", err)
	}
	return nil
}

func (s *UserService) record(ctx context.Context, identity *token.Identity, user *domain.User, action, detail string) {
	entry := &domain.AuditEntry{
		OrganizationID: user.OrganizationID,
		ActorID:        identity.UserID,
		Action:         action,
		Entity:         "user",
		EntityID:       &user.ID,
		Detail:         detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "entity", "user", "error", err)
	}
}
