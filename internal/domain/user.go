package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role names. Staff roles carry firm-wide access; RoleClient is scoped to the
// user's own organization.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleAccountant = "accountant"
	RoleClient     = "client"
)

// StaffRoles lists the roles held by firm employees.
var StaffRoles = []string{RoleAdmin, RoleManager, RoleAccountant}

// ValidRole reports whether name is a known role.
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleManager, RoleAccountant, RoleClient:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID
	Email    string
	FullName string
	// PasswordHash is a bcrypt digest; the raw password never leaves the
	// login handler.
	PasswordHash string
	Roles        []string
	// OrganizationID is set only for client users and scopes their access.
	OrganizationID *uuid.UUID
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user holds any firm-side role.
func (u *User) IsStaff() bool {
	for _, r := range StaffRoles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
}

// PermissionRepository answers fine-grained entity/action permission checks
// against explicit grants. Zero matching grants means no access.
type PermissionRepository interface {
	HasPermission(ctx context.Context, userID uuid.UUID, entity, action string) (bool, error)
	Grant(ctx context.Context, userID uuid.UUID, entity, action string) error
	Revoke(ctx context.Context, userID uuid.UUID, entity, action string) error
}
