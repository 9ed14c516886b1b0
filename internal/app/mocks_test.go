package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/kontor/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) add(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return user
}

func (r *memUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
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

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) SetActive(_ context.Context, userID uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	return nil
}

type memRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*domain.RefreshToken
}

func newMemRefreshTokenRepo() *memRefreshTokenRepo {
	return &memRefreshTokenRepo{tokens: make(map[uuid.UUID]*domain.RefreshToken)}
}

func (r *memRefreshTokenRepo) GetByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
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

func (r *memRefreshTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *memRefreshTokenRepo) Rotate(_ context.Context, oldID uuid.UUID, replacement *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.tokens[oldID]
	if !ok || old.Revoked {
		return domain.ErrTokenRevoked
	}

	replacement.ID = uuid.New()
	replacement.CreatedAt = time.Now()
	copied := *replacement
	r.tokens[replacement.ID] = &copied

	old.Revoked = true
	old.ReplacedBy = &replacement.ID
	return nil
}

func (r *memRefreshTokenRepo) RevokeChain(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *memRefreshTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memRefreshTokenRepo) liveCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tokens {
		if t.UserID == userID && !t.Revoked {
			count++
		}
	}
	return count
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *memAuditRepo) Record(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.OrganizationID != nil && *e.OrganizationID == orgID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memAuditRepo) ListByActor(_ context.Context, actorID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type memOrgRepo struct {
	mu   sync.Mutex
	orgs map[uuid.UUID]*domain.Organization
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{orgs: make(map[uuid.UUID]*domain.Organization)}
}

func (r *memOrgRepo) add(org *domain.Organization) *domain.Organization {
	r.mu.Lock()
	defer r.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	r.orgs[org.ID] = org
	return org
}

func (r *memOrgRepo) GetByID(_ context.Context, orgID uuid.UUID) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orgs[orgID]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, domain.ErrOrganizationNotFound
}

func (r *memOrgRepo) List(_ context.Context) ([]domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Organization
	for _, o := range r.orgs {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	org.ID = uuid.New()
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *memOrgRepo) Update(_ context.Context, org *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return domain.ErrOrganizationNotFound
	}
	copied := *org
	r.orgs[org.ID] = &copied
	return nil
}

func (r *memOrgRepo) Delete(_ context.Context, orgID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[orgID]; !ok {
		return domain.ErrOrganizationNotFound
	}
	delete(r.orgs, orgID)
	return nil
}

type memDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*domain.Document
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[uuid.UUID]*domain.Document)}
}

func (r *memDocumentRepo) GetByID(_ context.Context, documentID uuid.UUID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[documentID]; ok {
		meta := *d
		meta.Content = nil
		return &meta, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (r *memDocumentRepo) GetContent(_ context.Context, documentID uuid.UUID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[documentID]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (r *memDocumentRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]domain.Document, error) {
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

func (r *memDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = uuid.New()
	doc.UploadedAt = time.Now()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *memDocumentRepo) Delete(_ context.Context, documentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[documentID]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(r.docs, documentID)
	return nil
}
