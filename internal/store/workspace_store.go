package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// WorkspaceStore caches a single workspace
type WorkspaceStore struct {
	base
	api       WorkspaceAPI
	workspace *domain.Workspace
}

// NewWorkspaceStore creates a WorkspaceStore bound to scope
func NewWorkspaceStore(api WorkspaceAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *WorkspaceStore {
	return &WorkspaceStore{
		base: newBase(scope, publisher, logger, "workspace_store"),
		api:  api,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *WorkspaceStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.workspace = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// Load fetches the workspace. It is a no-op until the scope is ready.
func (s *WorkspaceStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	ws, err := s.api.GetWorkspace(ctx, scope.Identity, scope.WorkspaceID)
	if err != nil {
		s.failed(t, err)
		return err
	}
	s.fetched(t, func() { s.workspace = ws })
	return nil
}

// Workspace returns a copy of the cached workspace, or nil
func (s *WorkspaceStore) Workspace() *domain.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.workspace == nil {
		return nil
	}
	ws := *s.workspace
	return &ws
}

// Update patches title/stage and replaces the local copy with the response
func (s *WorkspaceStore) Update(ctx context.Context, update domain.WorkspaceUpdate) (*domain.Workspace, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	ws, err := s.api.UpdateWorkspace(ctx, scope.Identity, scope.WorkspaceID, update)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() { s.workspace = ws })
	s.publish(scope, events.EventTypeUpdated, events.EntityWorkspace, ws)
	out := *ws
	return &out, nil
}
