package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
)

// DocumentAPI is the backend surface for workspace documents
type DocumentAPI interface {
	ListDocuments(ctx context.Context, identity, workspaceID string) ([]domain.Document, error)
	UploadDocument(ctx context.Context, identity, workspaceID string, upload backend.DocumentUpload) (*domain.Document, error)
	GetDocumentURL(ctx context.Context, identity, workspaceID, documentID string) (*domain.DownloadURL, error)
	DeleteDocument(ctx context.Context, identity, workspaceID, documentID string) error
}

// UploadInput is a document to upload. Size is the declared length, or -1
// if unknown.
type UploadInput struct {
	Filename    string
	Category    domain.DocumentCategory
	Description string
	Size        int64
	Content     io.Reader
}

// DocumentService handles the documents tab. Documents have no local cache;
// every call goes to the backend.
type DocumentService struct {
	api       DocumentAPI
	maxUpload int64
	publisher events.Publisher
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(api DocumentAPI, maxUpload int64, publisher events.Publisher) *DocumentService {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return &DocumentService{api: api, maxUpload: maxUpload, publisher: publisher}
}

// MaxUploadBytes is the largest accepted file
func (s *DocumentService) MaxUploadBytes() int64 {
	return s.maxUpload
}

// ListDocuments fetches the document list
func (s *DocumentService) ListDocuments(ctx context.Context, identity, workspaceID string) ([]domain.Document, error) {
	if err := requireScope(identity, workspaceID); err != nil {
		return nil, err
	}
	return s.api.ListDocuments(ctx, identity, workspaceID)
}

// Upload validates and streams a file to the backend
func (s *DocumentService) Upload(ctx context.Context, identity, workspaceID string, in UploadInput) (*domain.Document, error) {
	if err := requireScope(identity, workspaceID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Filename) == "" || in.Content == nil {
		return nil, domain.ErrInvalidInput
	}
	if in.Category == "" {
		in.Category = domain.CategoryGeneral
	}
	if !in.Category.Valid() {
		return nil, domain.ErrInvalidCategory
	}
	if in.Size > s.maxUpload {
		return nil, domain.ErrFileTooLarge
	}

	guard := &sizeGuard{r: in.Content, remaining: s.maxUpload}
	doc, err := s.api.UploadDocument(ctx, identity, workspaceID, backend.DocumentUpload{
		Filename:    in.Filename,
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Content:     guard,
	})
	if guard.exceeded.Load() {
		return nil, domain.ErrFileTooLarge
	}
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.WorkspaceScope(workspaceID), events.NewEvent(events.EventTypeCreated, events.EntityDocument, doc))
	return doc, nil
}

// DownloadURL fetches a short-lived signed URL for a document
func (s *DocumentService) DownloadURL(ctx context.Context, identity, workspaceID, documentID string) (*domain.DownloadURL, error) {
	if err := requireScope(identity, workspaceID); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.api.GetDocumentURL(ctx, identity, workspaceID, documentID)
}

// Delete removes a document
func (s *DocumentService) Delete(ctx context.Context, identity, workspaceID, documentID string) error {
	if err := requireScope(identity, workspaceID); err != nil {
		return err
	}
	if documentID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.api.DeleteDocument(ctx, identity, workspaceID, documentID); err != nil {
		return err
	}
	s.publisher.Publish(events.WorkspaceScope(workspaceID), events.NewEvent(events.EventTypeDeleted, events.EntityDocument, map[string]string{"id": documentID}))
	return nil
}

var errUploadTooLarge = errors.New("upload exceeds size limit")

// sizeGuard fails the stream once more than remaining bytes have been read
type sizeGuard struct {
	r         io.Reader
	remaining int64
	exceeded  atomic.Bool
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	if g.remaining < 0 {
		g.exceeded.Store(true)
		return 0, errUploadTooLarge
	}
	if int64(len(p)) > g.remaining+1 {
		p = p[:g.remaining+1]
	}
	n, err := g.r.Read(p)
	g.remaining -= int64(n)
	if g.remaining < 0 {
		g.exceeded.Store(true)
		return n, errUploadTooLarge
	}
	return n, err
}

func requireScope(identity, workspaceID string) error {
	if identity == "" {
		return domain.ErrIdentityRequired
	}
	if workspaceID == "" {
		return domain.ErrWorkspaceRequired
	}
	return nil
}
