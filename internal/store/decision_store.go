package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// DecisionStore caches one page of the decision log
type DecisionStore struct {
	base
	api       DecisionAPI
	query     domain.DecisionQuery
	decisions []domain.Decision
	total     int
}

// NewDecisionStore creates a DecisionStore bound to scope
func NewDecisionStore(api DecisionAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *DecisionStore {
	return newDecisionStore(api, scope, domain.DecisionQuery{}, publisher, logger, "decision_store")
}

// NewActivityStore creates a DecisionStore pinned to the newest unfiltered
// decisions. The overview reads it so tab filters never skew activity.
func NewActivityStore(api DecisionAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *DecisionStore {
	q := domain.DecisionQuery{Page: domain.DefaultDecisionPage, Limit: domain.ActivityDecisionLimit}
	return newDecisionStore(api, scope, q, publisher, logger, "activity_store")
}

func newDecisionStore(api DecisionAPI, scope Scope, q domain.DecisionQuery, publisher events.Publisher, logger zerolog.Logger, component string) *DecisionStore {
	return &DecisionStore{
		base:  newBase(scope, publisher, logger, component),
		api:   api,
		query: q.Normalize(),
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *DecisionStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() {
		s.decisions = nil
		s.total = 0
	}) {
		return s.Load(ctx)
	}
	return nil
}

// SetQuery changes the tag filter or page and re-fetches if anything changed
func (s *DecisionStore) SetQuery(ctx context.Context, q domain.DecisionQuery) error {
	q = q.Normalize()
	s.mu.Lock()
	changed := s.query != q
	s.query = q
	s.mu.Unlock()
	if !changed && s.Loaded() {
		return nil
	}
	_, err := s.load(ctx, q)
	return err
}

// Fetch switches the store to q and returns the page served for q. The page
// is returned even when an overlapping fetch for another query has since
// taken over the cache.
func (s *DecisionStore) Fetch(ctx context.Context, q domain.DecisionQuery) (*backend.DecisionPage, error) {
	q = q.Normalize()
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	return s.load(ctx, q)
}

// SetTag changes only the tag filter
func (s *DecisionStore) SetTag(ctx context.Context, tag domain.DecisionTag) error {
	q := s.Query()
	q.Tag = tag
	q.Page = domain.DefaultDecisionPage
	return s.SetQuery(ctx, q)
}

// Query returns the active filter
func (s *DecisionStore) Query() domain.DecisionQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Load fetches the current page. It is a no-op until the scope is ready.
func (s *DecisionStore) Load(ctx context.Context) error {
	_, err := s.load(ctx, s.Query())
	return err
}

// load fetches q and caches it only if q is still the active query
func (s *DecisionStore) load(ctx context.Context, q domain.DecisionQuery) (*backend.DecisionPage, error) {
	t, scope := s.ticket()
	if !scope.Ready() {
		return &backend.DecisionPage{Decisions: []domain.Decision{}, Page: q.Page, Limit: q.Limit}, nil
	}
	current := func() bool { return s.query == q }

	page, err := s.api.ListDecisions(ctx, scope.Identity, scope.WorkspaceID, q)
	if err != nil {
		s.failedWhen(t, current, err)
		return nil, err
	}
	s.fetchedWhen(t, current, func() {
		s.decisions = append([]domain.Decision{}, page.Decisions...)
		s.total = page.Total
	})
	return page, nil
}

// Decisions returns a copy of the cached page, newest first
func (s *DecisionStore) Decisions() []domain.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Decision{}, s.decisions...)
}

// Total returns the server-reported total for the active filter
func (s *DecisionStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Create records a decision and prepends it to the first page
func (s *DecisionStore) Create(ctx context.Context, in domain.NewDecision) (*domain.Decision, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	d, err := s.api.CreateDecision(ctx, scope.Identity, scope.WorkspaceID, in)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		if s.query.Tag != "" && s.query.Tag != d.Tag {
			return
		}
		if i := indexByID(s.decisions, d.ID, decisionID); i >= 0 {
			s.decisions[i] = *d
			return
		}
		s.total++
		// Newest first, so only the first page gains the row
		if s.query.Page == domain.DefaultDecisionPage {
			s.decisions = append([]domain.Decision{*d}, s.decisions...)
		}
	})
	s.publish(scope, events.EventTypeCreated, events.EntityDecision, d)
	return d, nil
}

func decisionID(d domain.Decision) string { return d.ID }
