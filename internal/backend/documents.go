package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cofoundry/gateway/internal/domain"
)

// DocumentUpload is a file to forward to the backend as multipart form data
type DocumentUpload struct {
	Filename    string
	Category    domain.DocumentCategory
	Description string
	Content     io.Reader
}

// ListDocuments handles GET /workspaces/{id}/documents
func (c *Client) ListDocuments(ctx context.Context, identity, workspaceID string) ([]domain.Document, error) {
	docs := []domain.Document{}
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "documents"), nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument handles POST /workspaces/{id}/documents. The file content is
// streamed through a pipe and never held in memory as a whole.
func (c *Client) UploadDocument(ctx context.Context, identity, workspaceID string, upload DocumentUpload) (*domain.Document, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUpload(mw, upload)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(workspacePath(workspaceID, "documents"), nil), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var doc domain.Document
	if err := c.send(req, identity, &doc); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &doc, nil
}

func writeUpload(mw *multipart.Writer, upload DocumentUpload) error {
	if err := mw.WriteField("category", string(upload.Category)); err != nil {
		return err
	}
	if upload.Description != "" {
		if err := mw.WriteField("description", upload.Description); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", upload.Filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, upload.Content)
	return err
}

// GetDocumentURL handles GET /workspaces/{id}/documents/{docId}/download-url
func (c *Client) GetDocumentURL(ctx context.Context, identity, workspaceID, documentID string) (*domain.DownloadURL, error) {
	var u domain.DownloadURL
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "documents", documentID, "download-url"), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteDocument handles DELETE /workspaces/{id}/documents/{docId}
func (c *Client) DeleteDocument(ctx context.Context, identity, workspaceID, documentID string) error {
	return c.doJSON(ctx, identity, http.MethodDelete, workspacePath(workspaceID, "documents", documentID), nil, nil, nil)
}
