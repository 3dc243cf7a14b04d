package handler

import (
	"errors"
	"net/http"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DocumentHandler handles workspace document routes
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// ListDocuments handles GET /api/v1/workspaces/:id/documents
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	docs, err := h.documentService.ListDocuments(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to list documents")
	}
	return c.JSON(http.StatusOK, docs)
}

// UploadDocument handles POST /api/v1/workspaces/:id/documents
// Expects multipart/form-data with a "file" field and optional "category"
// and "description" fields.
func (h *DocumentHandler) UploadDocument(c echo.Context) error {
	maxSize := h.documentService.MaxUploadBytes()
	// Leave room for the other form fields and multipart framing
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxSize+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return NewTooLargeError(c, domain.ErrFileTooLarge.Error())
		}
		return NewValidationError(c, "File is required", []ValidationError{
			{Field: "file", Message: "Please select a file to upload"},
		})
	}
	if file.Size > maxSize {
		return NewTooLargeError(c, domain.ErrFileTooLarge.Error())
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	identity, workspaceID := middleware.GetIdentity(c), c.Param("id")
	doc, err := h.documentService.Upload(c.Request().Context(), identity, workspaceID, service.UploadInput{
		Filename:    file.Filename,
		Category:    domain.DocumentCategory(c.FormValue("category")),
		Description: c.FormValue("description"),
		Size:        file.Size,
		Content:     src,
	})
	if err != nil {
		return respondError(c, err, "Failed to upload document")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Str("document_id", doc.ID).Int64("size", doc.SizeBytes).Msg("Document uploaded")
	return c.JSON(http.StatusCreated, doc)
}

// GetDownloadURL handles GET /api/v1/workspaces/:id/documents/:docId/download-url
func (h *DocumentHandler) GetDownloadURL(c echo.Context) error {
	u, err := h.documentService.DownloadURL(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), c.Param("docId"))
	if err != nil {
		return respondError(c, err, "Failed to get download URL")
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteDocument handles DELETE /api/v1/workspaces/:id/documents/:docId
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	identity, workspaceID, docID := middleware.GetIdentity(c), c.Param("id"), c.Param("docId")
	if err := h.documentService.Delete(c.Request().Context(), identity, workspaceID, docID); err != nil {
		return respondError(c, err, "Failed to delete document")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Str("document_id", docID).Msg("Document deleted")
	return c.NoContent(http.StatusNoContent)
}
