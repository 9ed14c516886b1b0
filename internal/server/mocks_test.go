package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
)

// In-memory repository fakes backing full-stack handler tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.New()
	copied := *user
	r.users[user.ID] = &copied
	return user
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = existing.PasswordHash
	user.Active = existing.Active
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, userID uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*domain.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) GetByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New()
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeRefreshTokenRepo) Rotate(_ context.Context, oldID uuid.UUID, replacement *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.tokens[oldID]
	if !ok || old.Revoked {
		return domain.ErrTokenRevoked
	}
	replacement.ID = uuid.New()
	copied := *replacement
	r.tokens[replacement.ID] = &copied
	old.Revoked = true
	old.ReplacedBy = &replacement.ID
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeChain(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Record(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.OrganizationID != nil && *e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAuditRepo) ListByActor(_ context.Context, actorID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeOrgRepo struct {
	mu   sync.Mutex
	orgs map[uuid.UUID]*domain.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[uuid.UUID]*domain.Organization)}
}

func (r *fakeOrgRepo) add(org *domain.Organization) *domain.Organization {
	r.mu.Lock()
	defer r.mu.Unlock()
	org.ID = uuid.New()
	copied := *org
	r.orgs[org.ID] = &copied
	return org
}

func (r *fakeOrgRepo) GetByID(_ context.Context, orgID uuid.UUID) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orgs[orgID]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, domain.ErrOrganizationNotFound
}

func (r *fakeOrgRepo) List(_ context.Context) ([]domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	org.ID = uuid.New()
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) Update(_ context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return domain.ErrOrganizationNotFound
	}
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *fakeOrgRepo) Delete(_ context.Context, orgID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[orgID]; !ok {
		return domain.ErrOrganizationNotFound
	}
	delete(r.orgs, orgID)
	return nil
}

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*domain.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*domain.Document)}
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, documentID uuid.UUID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[documentID]; ok {
		meta := *d
		meta.Content = nil
		return &meta, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) GetContent(_ context.Context, documentID uuid.UUID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[documentID]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, d := range r.docs {
		if d.OrganizationID == orgID {
			meta := *d
			meta.Content = nil
			out = append(out, meta)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = uuid.New()
	doc.UploadedAt = time.Now()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, documentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[documentID]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(r.docs, documentID)
	return nil
}

type fakeBankAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.BankAccount
}

func newFakeBankAccountRepo() *fakeBankAccountRepo {
	return &fakeBankAccountRepo{accounts: make(map[uuid.UUID]*domain.BankAccount)}
}

func (r *fakeBankAccountRepo) GetByID(_ context.Context, accountID uuid.UUID) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[accountID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, domain.ErrBankAccountNotFound
}

func (r *fakeBankAccountRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BankAccount
	for _, a := range r.accounts {
		if a.OrganizationID == orgID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeBankAccountRepo) Create(_ context.Context, account *domain.BankAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = uuid.New()
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeBankAccountRepo) Update(_ context.Context, account *domain.BankAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return domain.ErrBankAccountNotFound
	}
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeBankAccountRepo) Delete(_ context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[accountID]; !ok {
		return domain.ErrBankAccountNotFound
	}
	delete(r.accounts, accountID)
	return nil
}

type fakePermissionRepo struct {
	mu     sync.Mutex
	grants map[string]bool
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{grants: make(map[string]bool)}
}

func permissionKey(userID uuid.UUID, entity, action string) string {
	return userID.String() + "/" + entity + "/" + action
}

func (r *fakePermissionRepo) HasPermission(_ context.Context, userID uuid.UUID, entity, action string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grants[permissionKey(userID, entity, action)], nil
}

func (r *fakePermissionRepo) Grant(_ context.Context, userID uuid.UUID, entity, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[permissionKey(userID, entity, action)] = true
	return nil
}

func (r *fakePermissionRepo) Revoke(_ context.Context, userID uuid.UUID, entity, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, permissionKey(userID, entity, action))
	return nil
}

// Health check fakes.

type fakePostgresChecker struct {
	err error
}

func (f *fakePostgresChecker) Ping(_ context.Context) error {
	return f.err
}

var errUnavailable = errors.New("connection refused")
