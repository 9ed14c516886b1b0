package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/token"
)

func staffIdentity() *token.Identity {
	return &token.Identity{UserID: uuid.New(), Email: "staff@firm.example", Roles: []string{domain.RoleAccountant}}
}

func clientIdentity(users *memUserRepo, orgID uuid.UUID) *token.Identity {
	user := users.add(&domain.User{
		Email:          "client@org.example",
		Roles:          []string{domain.RoleClient},
		OrganizationID: &orgID,
		Active:         true,
	})
	return &token.Identity{UserID: user.ID, Email: user.Email, Roles: user.Roles}
}

func TestOrganizationService_StaffSeesAll(t *testing.T) {
	orgs := newMemOrgRepo()
	users := newMemUserRepo()
	svc := NewOrganizationService(orgs, users, &memAuditRepo{})

	orgs.add(&domain.Organization{Name: "Bakeri Nord AS"})
	orgs.add(&domain.Organization{Name: "Fjellsport AS"})

	got, err := svc.List(context.Background(), staffIdentity())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOrganizationService_ClientSeesOwnOrgOnly(t *testing.T) {
	orgs := newMemOrgRepo()
	users := newMemUserRepo()
	svc := NewOrganizationService(orgs, users, &memAuditRepo{})

	own := orgs.add(&domain.Organization{Name: "Bakeri Nord AS"})
	other := orgs.add(&domain.Organization{Name: "Fjellsport AS"})
	identity := clientIdentity(users, own.ID)

	got, err := svc.List(context.Background(), identity)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, own.ID, got[0].ID)

	_, err = svc.Get(context.Background(), identity, own.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), identity, other.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestOrganizationService_ClientUpdatesOwnOrg(t *testing.T) {
	orgs := newMemOrgRepo()
	users := newMemUserRepo()
	audit := &memAuditRepo{}
	svc := NewOrganizationService(orgs, users, audit)

	own := orgs.add(&domain.Organization{Name: "Bakeri Nord AS"})
	other := orgs.add(&domain.Organization{Name: "Fjellsport AS"})
	identity := clientIdentity(users, own.ID)

	own.ContactPhone = "+47 555 01 234"
	require.NoError(t, svc.Update(context.Background(), identity, own))
	assert.Equal(t, 1, audit.count())

	other.Name = "Hijacked AS"
	assert.ErrorIs(t, svc.Update(context.Background(), identity, other), domain.ErrAccessDenied)
}

func TestOrganizationService_CreateRequiresName(t *testing.T) {
	svc := NewOrganizationService(newMemOrgRepo(), newMemUserRepo(), &memAuditRepo{})

	err := svc.Create(context.Background(), staffIdentity(), &domain.Organization{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrOrganizationNameMissing)
}

func TestOrganizationService_DeleteRecordsAudit(t *testing.T) {
	orgs := newMemOrgRepo()
	audit := &memAuditRepo{}
	svc := NewOrganizationService(orgs, newMemUserRepo(), audit)

	org := orgs.add(&domain.Organization{Name: "Bakeri Nord AS"})
	require.NoError(t, svc.Delete(context.Background(), staffIdentity(), org.ID))

	_, err := orgs.GetByID(context.Background(), org.ID)
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
	assert.Equal(t, 1, audit.count())
}
