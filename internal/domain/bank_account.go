package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BankAccount holds a client organization's online-banking access data.
// OnlineLogin and OnlinePassword are sensitive: the repository encrypts them
// into versioned envelopes before persistence and decrypts them on read, so
// the domain layer only ever sees plaintext.
type BankAccount struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	BankName       string
	IBAN           string
	BIC            string
	OnlineLogin    string
	OnlinePassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BankAccountRepository interface {
	GetByID(ctx context.Context, accountID uuid.UUID) (*BankAccount, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]BankAccount, error)
	Create(ctx context.Context, account *BankAccount) error
	Update(ctx context.Context, account *BankAccount) error
	Delete(ctx context.Context, accountID uuid.UUID) error
}
