package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/domain"
)

type organizationRequest struct {
	Name         string `json:"name" validate:"required"`
	TaxNumber    string `json:"tax_number"`
	VATID        string `json:"vat_id"`
	Street       string `json:"street"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
	Notes        string `json:"notes"`
}

type organizationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TaxNumber    string    `json:"tax_number"`
	VATID        string    `json:"vat_id"`
	Street       string    `json:"street"`
	PostalCode   string    `json:"postal_code"`
	City         string    `json:"city"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Server) handleListOrganizations(c echo.Context) error {
	orgs, err := s.services.Organizations.List(c.Request().Context(), auth.IdentityFrom(c))
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]organizationResponse, 0, len(orgs))
	for i := range orgs {
		out = append(out, organizationResponseOf(&orgs[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetOrganization(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	org, err := s.services.Organizations.Get(c.Request().Context(), auth.IdentityFrom(c), orgID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, organizationResponseOf(org))
}

func (s *Server) handleCreateOrganization(c echo.Context) error {
	var req organizationRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	org := req.toDomain()
	if err := s.services.Organizations.Create(c.Request().Context(), auth.IdentityFrom(c), org); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, organizationResponseOf(org))
}

func (s *Server) handleUpdateOrganization(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req organizationRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	org := req.toDomain()
	org.ID = orgID
	if err := s.services.Organizations.Update(c.Request().Context(), auth.IdentityFrom(c), org); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, organizationResponseOf(org))
}

func (s *Server) handleDeleteOrganization(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.services.Organizations.Delete(c.Request().Context(), auth.IdentityFrom(c), orgID); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *organizationRequest) toDomain() *domain.Organization {
	return &domain.Organization{
		Name:         r.Name,
		TaxNumber:    r.TaxNumber,
		VATID:        r.VATID,
		Street:       r.Street,
		PostalCode:   r.PostalCode,
		City:         r.City,
		ContactName:  r.ContactName,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Notes:        r.Notes,
	}
}

func organizationResponseOf(org *domain.Organization) organizationResponse {
	return organizationResponse{
		ID:           org.ID.String(),
		Name:         org.Name,
		TaxNumber:    org.TaxNumber,
		VATID:        org.VATID,
		Street:       org.Street,
		PostalCode:   org.PostalCode,
		City:         org.City,
		ContactName:  org.ContactName,
		ContactEmail: org.ContactEmail,
		ContactPhone: org.ContactPhone,
		Notes:        org.Notes,
		CreatedAt:    org.CreatedAt,
	}
}
