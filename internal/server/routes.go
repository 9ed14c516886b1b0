package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarlsen/kontor/internal/domain"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Credential lifecycle. The refresh cookie is scoped to this path.
	s.echo.POST("/auth/login", s.handleLogin)
	s.echo.POST("/auth/refresh", s.handleRefresh)
	s.echo.POST("/auth/logout", s.handleLogout, s.authmw.RequireAuth)

	api := s.echo.Group("/api", s.authmw.RequireAuth)

	// Organizations: tenancy for reads is enforced in the service layer so
	// client users can reach their own record.
	api.GET("/organizations", s.handleListOrganizations)
	api.POST("/organizations", s.handleCreateOrganization, s.authmw.RequireRoles(domain.RoleAdmin, domain.RoleManager))
	api.GET("/organizations/:id", s.handleGetOrganization)
	api.PUT("/organizations/:id", s.handleUpdateOrganization)
	api.DELETE("/organizations/:id", s.handleDeleteOrganization, s.authmw.RequireRoles(domain.RoleAdmin))

	// Bank accounts carry online-banking credentials; access is gated by
	// explicit grants rather than role membership.
	api.GET("/organizations/:id/bank-accounts", s.handleListBankAccounts, s.authmw.RequirePermission("bank_account", "read"))
	api.POST("/organizations/:id/bank-accounts", s.handleCreateBankAccount, s.authmw.RequirePermission("bank_account", "write"))
	api.GET("/bank-accounts/:id", s.handleGetBankAccount, s.authmw.RequirePermission("bank_account", "read"))
	api.PUT("/bank-accounts/:id", s.handleUpdateBankAccount, s.authmw.RequirePermission("bank_account", "write"))
	api.DELETE("/bank-accounts/:id", s.handleDeleteBankAccount, s.authmw.RequirePermission("bank_account", "write"))

	api.GET("/organizations/:id/documents", s.handleListDocuments)
	api.POST("/organizations/:id/documents", s.handleUploadDocument)
	api.GET("/documents/:id", s.handleDownloadDocument)
	api.DELETE("/documents/:id", s.handleDeleteDocument)

	api.GET("/organizations/:id/audit", s.handleListAudit, s.authmw.RequireRoles(domain.RoleAdmin, domain.RoleManager))
	api.GET("/audit/me", s.handleListOwnAudit)

	api.GET("/users", s.handleListUsers, s.authmw.RequireRoles(domain.RoleAdmin))
	api.POST("/users", s.handleCreateUser, s.authmw.RequireRoles(domain.RoleAdmin))
	api.GET("/users/:id", s.handleGetUser, s.authmw.RequireRoles(domain.RoleAdmin))
	api.PUT("/users/:id", s.handleUpdateUser, s.authmw.RequireRoles(domain.RoleAdmin))
	api.POST("/users/:id/deactivate", s.handleDeactivateUser, s.authmw.RequireRoles(domain.RoleAdmin))
	api.POST("/users/:id/activate", s.handleActivateUser, s.authmw.RequireRoles(domain.RoleAdmin))

	// Explicit grants behind the bank-account gates are administered here.
	api.POST("/users/:id/permissions", s.handleGrantPermission, s.authmw.RequireRoles(domain.RoleAdmin))
	api.DELETE("/users/:id/permissions/:entity/:action", s.handleRevokePermission, s.authmw.RequireRoles(domain.RoleAdmin))
}
