package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// CheckinStore caches the newest check-ins, capped to a limit
type CheckinStore struct {
	base
	api      CheckinAPI
	limit    int
	checkins []domain.Checkin
}

// NewCheckinStore creates a CheckinStore bound to scope
func NewCheckinStore(api CheckinAPI, scope Scope, limit int, publisher events.Publisher, logger zerolog.Logger) *CheckinStore {
	if limit <= 0 {
		limit = domain.DefaultCheckinLimit
	}
	return &CheckinStore{
		base:  newBase(scope, publisher, logger, "checkin_store"),
		api:   api,
		limit: limit,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *CheckinStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.checkins = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// SetLimit changes the cap and re-fetches if it changed
func (s *CheckinStore) SetLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = domain.DefaultCheckinLimit
	}
	s.mu.Lock()
	changed := s.limit != limit
	s.limit = limit
	s.mu.Unlock()
	if !changed && s.Loaded() {
		return nil
	}
	return s.Load(ctx)
}

// Limit returns the active cap
func (s *CheckinStore) Limit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limit
}

// Load fetches check-ins. It is a no-op until the scope is ready.
func (s *CheckinStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	limit := s.Limit()
	checkins, err := s.api.ListCheckins(ctx, scope.Identity, scope.WorkspaceID, limit)
	if err != nil {
		s.failed(t, err)
		return err
	}
	if len(checkins) > limit {
		checkins = checkins[:limit]
	}
	s.fetched(t, func() { s.checkins = checkins })
	return nil
}

// Checkins returns a copy of the cached check-ins, newest first
func (s *CheckinStore) Checkins() []domain.Checkin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Checkin{}, s.checkins...)
}

// Create records a check-in, prepends it and trims the list to the limit
func (s *CheckinStore) Create(ctx context.Context, in domain.NewCheckin) (*domain.Checkin, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	ch, err := s.api.CreateCheckin(ctx, scope.Identity, scope.WorkspaceID, in)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		if i := indexByID(s.checkins, ch.ID, checkinID); i >= 0 {
			s.checkins[i] = *ch
			return
		}
		s.checkins = append([]domain.Checkin{*ch}, s.checkins...)
		if len(s.checkins) > s.limit {
			s.checkins = s.checkins[:s.limit]
		}
	})
	s.publish(scope, events.EventTypeCreated, events.EntityCheckin, ch)
	return ch, nil
}

func checkinID(c domain.Checkin) string { return c.ID }
