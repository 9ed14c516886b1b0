package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/domain"
	apperrors "github.com/mkarlsen/kontor/internal/errors"
)

type createUserRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	FullName       string   `json:"full_name" validate:"required"`
	Password       string   `json:"password" validate:"required,min=10"`
	Roles          []string `json:"roles" validate:"required,min=1"`
	OrganizationID *string  `json:"organization_id" validate:"omitempty,uuid4"`
}

type updateUserRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	FullName       string   `json:"full_name" validate:"required"`
	Roles          []string `json:"roles" validate:"required,min=1"`
	OrganizationID *string  `json:"organization_id" validate:"omitempty,uuid4"`
}

func (s *Server) handleListUsers(c echo.Context) error {
	users, err := s.services.Users.List(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponseOf(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetUser(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := s.services.Users.Get(c.Request().Context(), userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, userResponseOf(user))
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req createUserRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	orgID, err := parseOptionalUUID(req.OrganizationID)
	if err != nil {
		return err
	}

	user := &domain.User{
		Email:          req.Email,
		FullName:       req.FullName,
		Roles:          req.Roles,
		OrganizationID: orgID,
	}
	if err := s.services.Users.Create(c.Request().Context(), auth.IdentityFrom(c), user, req.Password); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, userResponseOf(user))
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	orgID, err := parseOptionalUUID(req.OrganizationID)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:             userID,
		Email:          req.Email,
		FullName:       req.FullName,
		Roles:          req.Roles,
		OrganizationID: orgID,
	}
	if err := s.services.Users.Update(c.Request().Context(), auth.IdentityFrom(c), user); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, userResponseOf(user))
}

func (s *Server) handleDeactivateUser(c echo.Context) error {
	return s.setUserActive(c, false)
}

func (s *Server) handleActivateUser(c echo.Context) error {
	return s.setUserActive(c, true)
}

func (s *Server) setUserActive(c echo.Context, active bool) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.services.Users.SetActive(c.Request().Context(), auth.IdentityFrom(c), userID, active); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type grantPermissionRequest struct {
	Entity string `json:"entity" validate:"required"`
	Action string `json:"action" validate:"required"`
}

func (s *Server) handleGrantPermission(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req grantPermissionRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.services.Permissions.Grant(c.Request().Context(), auth.IdentityFrom(c), userID, req.Entity, req.Action); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRevokePermission(c echo.Context) error {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.services.Permissions.Revoke(c.Request().Context(), auth.IdentityFrom(c), userID, c.Param("entity"), c.Param("action")); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseOptionalUUID(value *string) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, apperrors.ValidationError("invalid organization_id")
	}
	return &id, nil
}
