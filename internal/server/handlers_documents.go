package server

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkarlsen/kontor/internal/auth"
	"github.com/mkarlsen/kontor/internal/domain"
	apperrors "github.com/mkarlsen/kontor/internal/errors"
)

type documentResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UploadedBy     string    `json:"uploaded_by"`
	FileName       string    `json:"file_name"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

func (s *Server) handleListDocuments(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	docs, err := s.services.Documents.List(c.Request().Context(), auth.IdentityFrom(c), orgID)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]documentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, documentResponseOf(&docs[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleUploadDocument(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.ValidationError("multipart field 'file' is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.InternalError("failed to open uploaded file", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return apperrors.InternalError("failed to read uploaded file", err)
	}

	doc := &domain.Document{
		OrganizationID: orgID,
		FileName:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get(echo.HeaderContentType),
		Content:        content,
	}
	if err := s.services.Documents.Upload(c.Request().Context(), auth.IdentityFrom(c), doc); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, documentResponseOf(doc))
}

func (s *Server) handleDownloadDocument(c echo.Context) error {
	documentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := s.services.Documents.Download(c.Request().Context(), auth.IdentityFrom(c), documentID)
	if err != nil {
		return mapDomainError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.FileName+`"`)
	contentType := doc.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, doc.Content)
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	documentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.services.Documents.Delete(c.Request().Context(), auth.IdentityFrom(c), documentID); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func documentResponseOf(doc *domain.Document) documentResponse {
	return documentResponse{
		ID:             doc.ID.String(),
		OrganizationID: doc.OrganizationID.String(),
		UploadedBy:     doc.UploadedBy.String(),
		FileName:       doc.FileName,
		ContentType:    doc.ContentType,
		SizeBytes:      doc.SizeBytes,
		UploadedAt:     doc.UploadedAt,
	}
}
