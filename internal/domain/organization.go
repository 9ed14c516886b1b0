package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID           uuid.UUID
	Name         string
	TaxNumber    string
	VATID        string
	Street       string
	PostalCode   string
	City         string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrganizationRepository interface {
	GetByID(ctx context.Context, orgID uuid.UUID) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Create(ctx context.Context, org *Organization) error
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, orgID uuid.UUID) error
}
