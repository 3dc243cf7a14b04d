package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// RoleStore caches participant roles keyed by user id
type RoleStore struct {
	base
	api   RoleAPI
	roles []domain.Role
}

// NewRoleStore creates a RoleStore bound to scope
func NewRoleStore(api RoleAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *RoleStore {
	return &RoleStore{
		base: newBase(scope, publisher, logger, "role_store"),
		api:  api,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *RoleStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.roles = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// Load fetches roles. It is a no-op until the scope is ready.
func (s *RoleStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	roles, err := s.api.ListRoles(ctx, scope.Identity, scope.WorkspaceID)
	if err != nil {
		s.failed(t, err)
		return err
	}
	s.fetched(t, func() { s.roles = roles })
	return nil
}

// Roles returns a copy of the cached roles
func (s *RoleStore) Roles() []domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Role{}, s.roles...)
}

// Upsert writes the role for userID, replacing or appending locally
func (s *RoleStore) Upsert(ctx context.Context, userID string, in domain.RoleInput) (*domain.Role, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	r, err := s.api.UpsertRole(ctx, scope.Identity, scope.WorkspaceID, userID, in)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		for i := range s.roles {
			if s.roles[i].UserID == r.UserID {
				s.roles[i] = *r
				return
			}
		}
		s.roles = append(s.roles, *r)
	})
	s.publish(scope, events.EventTypeUpdated, events.EntityRole, r)
	return r, nil
}
