package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// KPIStore caches the KPIs of a workspace
type KPIStore struct {
	base
	api  KPIAPI
	kpis []domain.KPI
}

// NewKPIStore creates a KPIStore bound to scope
func NewKPIStore(api KPIAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *KPIStore {
	return &KPIStore{
		base: newBase(scope, publisher, logger, "kpi_store"),
		api:  api,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *KPIStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.kpis = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// Load fetches KPIs. It is a no-op until the scope is ready.
func (s *KPIStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	kpis, err := s.api.ListKPIs(ctx, scope.Identity, scope.WorkspaceID)
	if err != nil {
		s.failed(t, err)
		return err
	}
	s.fetched(t, func() { s.kpis = kpis })
	return nil
}

// KPIs returns a copy of the cached KPIs
func (s *KPIStore) KPIs() []domain.KPI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.KPI{}, s.kpis...)
}

// Create adds a KPI and appends it locally
func (s *KPIStore) Create(ctx context.Context, in domain.NewKPI) (*domain.KPI, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	k, err := s.api.CreateKPI(ctx, scope.Identity, scope.WorkspaceID, in)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		if i := indexByID(s.kpis, k.ID, kpiID); i >= 0 {
			s.kpis[i] = *k
			return
		}
		s.kpis = append(s.kpis, *k)
	})
	s.publish(scope, events.EventTypeCreated, events.EntityKPI, k)
	return k, nil
}

// UpdateStatus changes one KPI's status and replaces it locally
func (s *KPIStore) UpdateStatus(ctx context.Context, kpiID string, status domain.KPIStatus) (*domain.KPI, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	k, err := s.api.UpdateKPIStatus(ctx, scope.Identity, kpiID, status)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		for i := range s.kpis {
			if s.kpis[i].ID == k.ID {
				s.kpis[i] = *k
			}
		}
	})
	s.publish(scope, events.EventTypeUpdated, events.EntityKPI, k)
	return k, nil
}

func kpiID(v domain.KPI) string { return v.ID }
