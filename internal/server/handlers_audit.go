package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/domain"
)

type auditEntryResponse struct {
	ID             string    `json:"id"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	ActorID        string    `json:"actor_id"`
	Action         string    `json:"action"`
	Entity         string    `json:"entity"`
	EntityID       *string   `json:"entity_id,omitempty"`
	Detail         string    `json:"detail"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Server) handleListAudit(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := s.services.Audit.ListByOrganization(c.Request().Context(), orgID, limit)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, auditEntryResponseOf(&entries[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListOwnAudit(c echo.Context) error {
	identity := auth.IdentityFrom(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := s.services.Audit.ListByActor(c.Request().Context(), identity.UserID, limit)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, auditEntryResponseOf(&entries[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func auditEntryResponseOf(entry *domain.AuditEntry) auditEntryResponse {
	resp := auditEntryResponse{
		ID:        entry.ID.String(),
		ActorID:   entry.ActorID.String(),
		Action:    entry.Action,
		Entity:    entry.Entity,
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}
	if entry.OrganizationID != nil {
		orgID := entry.OrganizationID.String()
		resp.OrganizationID = &orgID
	}
	if entry.EntityID != nil {
		entityID := entry.EntityID.String()
		resp.EntityID = &entityID
	}
	return resp
}
