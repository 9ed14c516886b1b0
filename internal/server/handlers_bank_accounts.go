package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/domain"
)

type bankAccountRequest struct {
	BankName       string `json:"bank_name" validate:"required"`
	IBAN           string `json:"iban" validate:"required"`
	BIC            string `json:"bic"`
	OnlineLogin    string `json:"online_login"`
	OnlinePassword string `json:"online_password"`
}

// bankAccountResponse never carries the online-banking password back out;
// only its presence is exposed.
type bankAccountResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	BankName       string    `json:"bank_name"`
	IBAN           string    `json:"iban"`
	BIC            string    `json:"bic"`
	OnlineLogin    string    `json:"online_login"`
	HasPassword    bool      `json:"has_password"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *Server) handleListBankAccounts(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	accounts, err := s.services.BankAccounts.ListByOrganization(c.Request().Context(), auth.IdentityFrom(c), orgID)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]bankAccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, bankAccountResponseOf(&accounts[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetBankAccount(c echo.Context) error {
	accountID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	account, err := s.services.BankAccounts.Get(c.Request().Context(), auth.IdentityFrom(c), accountID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, bankAccountResponseOf(account))
}

func (s *Server) handleCreateBankAccount(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req bankAccountRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	account := &domain.BankAccount{
		OrganizationID: orgID,
		BankName:       req.BankName,
		IBAN:           req.IBAN,
		BIC:            req.BIC,
		OnlineLogin:    req.OnlineLogin,
		OnlinePassword: req.OnlinePassword,
	}
	if err := s.services.BankAccounts.Create(c.Request().Context(), auth.IdentityFrom(c), account); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, bankAccountResponseOf(account))
}

func (s *Server) handleUpdateBankAccount(c echo.Context) error {
	accountID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req bankAccountRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	account := &domain.BankAccount{
		ID:             accountID,
		BankName:       req.BankName,
		IBAN:           req.IBAN,
		BIC:            req.BIC,
		OnlineLogin:    req.OnlineLogin,
		OnlinePassword: req.OnlinePassword,
	}
	if err := s.services.BankAccounts.Update(c.Request().Context(), auth.IdentityFrom(c), account); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, bankAccountResponseOf(account))
}

func (s *Server) handleDeleteBankAccount(c echo.Context) error {
	accountID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.services.BankAccounts.Delete(c.Request().Context(), auth.IdentityFrom(c), accountID); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func bankAccountResponseOf(account *domain.BankAccount) bankAccountResponse {
	return bankAccountResponse{
		ID:             account.ID.String(),
		OrganizationID: account.OrganizationID.String(),
		BankName:       account.BankName,
		IBAN:           account.IBAN,
		BIC:            account.BIC,
		OnlineLogin:    account.OnlineLogin,
		HasPassword:    account.OnlinePassword != "",
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
}
