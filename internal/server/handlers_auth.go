package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/app"
	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/domain"
	apperrors "github.com/mkarlsen/kontor/internal/errors"
)

// refreshCookieName holds the raw refresh token between /auth calls. The
// cookie is scoped to /auth so it never rides along on API requests.
const refreshCookieName = "kontor_refresh_token"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	FullName       string   `json:"full_name"`
	Roles          []string `json:"roles"`
	OrganizationID *string  `json:"organization_id,omitempty"`
	Active         bool     `json:"active"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        userResponse `json:"user"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, user, err := s.services.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapDomainError(err)
	}

	s.setRefreshCookie(c, pair.RefreshToken, int(s.config.RefreshTokenTTL.Seconds()))
	return c.JSON(http.StatusOK, s.tokenResponseOf(pair, user))
}

func (s *Server) handleRefresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return apperrors.UnauthorizedError("authentication required")
	}

	pair, user, err := s.services.Auth.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		s.clearRefreshCookie(c)
		return mapDomainError(err)
	}

	s.setRefreshCookie(c, pair.RefreshToken, int(s.config.RefreshTokenTTL.Seconds()))
	return c.JSON(http.StatusOK, s.tokenResponseOf(pair, user))
}

func (s *Server) handleLogout(c echo.Context) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperrors.UnauthorizedError("authentication required")
	}

	if err := s.services.Auth.Logout(c.Request().Context(), identity.UserID); err != nil {
		return mapDomainError(err)
	}

	s.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) tokenResponseOf(pair *app.TokenPair, user *domain.User) tokenResponse {
	return tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.config.AccessTokenTTL.Seconds()),
		User:        userResponseOf(user),
	}
}

func userResponseOf(user *domain.User) userResponse {
	resp := userResponse{
		ID:       user.ID.String(),
		Email:    user.Email,
		FullName: user.FullName,
		Roles:    user.Roles,
		Active:   user.Active,
	}
	if user.OrganizationID != nil {
		orgID := user.OrganizationID.String()
		resp.OrganizationID = &orgID
	}
	return resp
}

func (s *Server) setRefreshCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearRefreshCookie(c echo.Context) {
	s.setRefreshCookie(c, "", -1)
}
