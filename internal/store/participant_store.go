package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// ParticipantStore caches workspace participants keyed by user id
type ParticipantStore struct {
	base
	api          ParticipantAPI
	participants []domain.Participant
}

// NewParticipantStore creates a ParticipantStore bound to scope
func NewParticipantStore(api ParticipantAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *ParticipantStore {
	return &ParticipantStore{
		base: newBase(scope, publisher, logger, "participant_store"),
		api:  api,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *ParticipantStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.participants = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// Load fetches participants. It is a no-op until the scope is ready.
func (s *ParticipantStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	participants, err := s.api.ListParticipants(ctx, scope.Identity, scope.WorkspaceID)
	if err != nil {
		s.failed(t, err)
		return err
	}
	s.fetched(t, func() { s.participants = participants })
	return nil
}

// Participants returns a copy of the cached participants
func (s *ParticipantStore) Participants() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Participant{}, s.participants...)
}

// Update patches a participant and merges the response into the cached
// entry, so the joined user record survives responses that omit it
func (s *ParticipantStore) Update(ctx context.Context, userID string, update domain.ParticipantUpdate) (*domain.Participant, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	resp, err := s.api.UpdateParticipant(ctx, scope.Identity, scope.WorkspaceID, userID, update)
	if err != nil {
		return nil, err
	}
	merged := *resp
	s.reconcile(t, scope, func() {
		for i := range s.participants {
			if s.participants[i].UserID == userID {
				s.participants[i] = s.participants[i].Merge(*resp)
				merged = s.participants[i]
				return
			}
		}
		s.participants = append(s.participants, *resp)
	})
	s.publish(scope, events.EventTypeUpdated, events.EntityParticipant, merged)
	return &merged, nil
}

// RemoveAdvisor deletes an advisor from the workspace and drops it locally
func (s *ParticipantStore) RemoveAdvisor(ctx context.Context, userID string) error {
	scope, err := s.requireScope()
	if err != nil {
		return err
	}
	t, _ := s.ticket()
	if err := s.api.RemoveAdvisor(ctx, scope.Identity, scope.WorkspaceID, userID); err != nil {
		return err
	}
	s.reconcile(t, scope, func() {
		kept := s.participants[:0:0]
		for _, p := range s.participants {
			if p.UserID != userID {
				kept = append(kept, p)
			}
		}
		s.participants = kept
	})
	s.publish(scope, events.EventTypeDeleted, events.EntityParticipant, map[string]string{"user_id": userID})
	return nil
}
