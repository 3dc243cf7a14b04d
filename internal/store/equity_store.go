package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// EquityStore caches the current scenario and history. Approval state is
// computed by the backend, so every mutator re-fetches instead of merging.
type EquityStore struct {
	base
	api    EquityAPI
	equity *domain.Equity
}

// NewEquityStore creates an EquityStore bound to scope
func NewEquityStore(api EquityAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *EquityStore {
	return &EquityStore{
		base: newBase(scope, publisher, logger, "equity_store"),
		api:  api,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *EquityStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.equity = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// Load fetches equity. It is a no-op until the scope is ready.
func (s *EquityStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	eq, err := s.api.GetEquity(ctx, scope.Identity, scope.WorkspaceID)
	if err != nil {
		s.failed(t, err)
		return err
	}
	domain.SortScenariosNewestFirst(eq.Scenarios)
	s.fetched(t, func() { s.equity = eq })
	return nil
}

// Current returns a copy of the current scenario, or nil
func (s *EquityStore) Current() *domain.EquityScenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.equity == nil || s.equity.Current == nil {
		return nil
	}
	cur := *s.equity.Current
	return &cur
}

// Scenarios returns a copy of all scenarios, newest first
func (s *EquityStore) Scenarios() []domain.EquityScenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.equity == nil {
		return []domain.EquityScenario{}
	}
	return append([]domain.EquityScenario{}, s.equity.Scenarios...)
}

// FindScenario returns the cached scenario with id, or nil
func (s *EquityStore) FindScenario(id string) *domain.EquityScenario {
	for _, sc := range s.Scenarios() {
		if sc.ID == id {
			found := sc
			return &found
		}
	}
	return nil
}

// CreateScenario proposes a scenario. The split must total 100% before
// anything is sent.
func (s *EquityStore) CreateScenario(ctx context.Context, in domain.NewScenario) (*domain.EquityScenario, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	created, err := s.api.CreateScenario(ctx, scope.Identity, scope.WorkspaceID, in)
	if err != nil {
		return nil, err
	}
	return created, s.refetch(ctx, scope, created)
}

// SetCurrent asks the backend to promote a scenario
func (s *EquityStore) SetCurrent(ctx context.Context, scenarioID string) error {
	scope, err := s.requireScope()
	if err != nil {
		return err
	}
	if err := s.api.SetCurrentScenario(ctx, scope.Identity, scope.WorkspaceID, scenarioID); err != nil {
		return err
	}
	return s.refetch(ctx, scope, map[string]string{"scenario_id": scenarioID, "action": "set-current"})
}

// UpdateNote edits the note of a scenario
func (s *EquityStore) UpdateNote(ctx context.Context, scenarioID, note string) error {
	scope, err := s.requireScope()
	if err != nil {
		return err
	}
	if err := s.api.UpdateScenarioNote(ctx, scope.Identity, scenarioID, note); err != nil {
		return err
	}
	return s.refetch(ctx, scope, map[string]string{"scenario_id": scenarioID, "action": "note"})
}

// Approve signs off a pending approval as the counter-party
func (s *EquityStore) Approve(ctx context.Context, approvalID string) (*domain.Approval, error) {
	return s.decide(ctx, approvalID, true)
}

// Reject declines a pending approval as the counter-party
func (s *EquityStore) Reject(ctx context.Context, approvalID string) (*domain.Approval, error) {
	return s.decide(ctx, approvalID, false)
}

func (s *EquityStore) decide(ctx context.Context, approvalID string, approve bool) (*domain.Approval, error) {
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	var a *domain.Approval
	if approve {
		a, err = s.api.ApproveApproval(ctx, scope.Identity, approvalID)
	} else {
		a, err = s.api.RejectApproval(ctx, scope.Identity, approvalID)
	}
	if err != nil {
		return nil, err
	}
	return a, s.refetch(ctx, scope, a)
}

// refetch reloads after a successful mutation and announces the change
func (s *EquityStore) refetch(ctx context.Context, scope Scope, payload any) error {
	s.publish(scope, events.EventTypeChanged, events.EntityEquity, payload)
	return s.Load(ctx)
}
