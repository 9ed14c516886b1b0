package server

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/domain"
	apperrors "github.com/mkarlsen/kontor/internal/errors"
)

// bindAndValidate decodes the JSON body and runs struct validation. Both
// failure modes surface as 400s.
func (s *Server) bindAndValidate(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		return apperrors.ValidationError("malformed request body")
	}
	if err := s.validate.Struct(payload); err != nil {
		return apperrors.ValidationError(err.Error())
	}
	return nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid " + name + " parameter")
	}
	return id, nil
}

// mapDomainError translates service-layer sentinel errors into structured
// HTTP errors. Unknown errors become 500s with the cause attached for the
// error middleware to log.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	var structured *apperrors.Error
	if errors.As(err, &structured) {
		return structured
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrTokenExpired):
		return apperrors.UnauthorizedError("invalid or expired credentials")
	case errors.Is(err, domain.ErrUserInactive):
		return apperrors.ForbiddenError("account is deactivated")
	case errors.Is(err, domain.ErrAccessDenied):
		return apperrors.ForbiddenError("insufficient permissions")
	case errors.Is(err, domain.ErrLoginThrottled):
		return apperrors.TooManyRequestsError("too many login attempts, try again later")
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound),
		errors.Is(err, domain.ErrBankAccountNotFound),
		errors.Is(err, domain.ErrDocumentNotFound):
		return apperrors.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.ConflictError(err.Error())
	case errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrOrganizationNameMissing),
		errors.Is(err, domain.ErrDocumentTooLarge),
		errors.Is(err, domain.ErrDocumentTypeForbidden):
		return apperrors.ValidationError(err.Error())
	}
	return apperrors.InternalError("internal error", err)
}
