package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/token"
)

// tenancy decides whether an identity may touch an organization's data.
// Staff roles have firm-wide access; client users are pinned to the
// organization stored on their user record, not to anything in the token.
type tenancy struct {
	users domain.UserRepository
}

func isStaffIdentity(identity *token.Identity) bool {
	for _, staff := range domain.StaffRoles {
		for _, r := range identity.Roles {
			if r == staff {
				return true
			}
		}
	}
	return false
}

func (t tenancy) authorizeOrgAccess(ctx context.Context, identity *token.Identity, orgID uuid.UUID) error {
	if isStaffIdentity(identity) {
		return nil
	}

	user, err := t.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if user.OrganizationID == nil || *user.OrganizationID != orgID {
		return domain.ErrAccessDenied
	}
	return nil
}
