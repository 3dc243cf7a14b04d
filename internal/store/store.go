// Package store holds the per-workspace resource caches the browser reads
// through the gateway. Each store wraps one backend resource, fetches it once
// an identity and workspace are bound, and reconciles mutations locally.
//
// Every fetch and mutation takes a ticket from a per-store monotonic counter.
// A result is applied only if its ticket is newer than the last applied one,
// so a slow response can never overwrite fresher state.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// genericFetchError is shown when a failure carries no usable message
const genericFetchError = "something went wrong, please try again"

// Scope identifies whose view of which workspace a store holds
type Scope struct {
	Identity    string
	WorkspaceID string
}

// Ready reports whether the scope has both an identity and a workspace
func (s Scope) Ready() bool {
	return s.Identity != "" && s.WorkspaceID != ""
}

// base carries the binding, ordering and error state shared by every store
type base struct {
	mu      sync.RWMutex
	scope   Scope
	issued  uint64
	applied uint64
	loaded  bool
	errMsg  string

	publisher events.Publisher
	logger    zerolog.Logger
}

func newBase(scope Scope, publisher events.Publisher, logger zerolog.Logger, component string) base {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return base{
		scope:     scope,
		publisher: publisher,
		logger:    logger.With().Str("component", component).Str("workspace_id", scope.WorkspaceID).Logger(),
	}
}

// ticket reserves the next sequence number for the current scope
func (b *base) ticket() (uint64, Scope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issued++
	return b.issued, b.scope
}

// rebind switches scope, invalidating every outstanding ticket.
// It reports whether the scope actually changed.
func (b *base) rebind(scope Scope, reset func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scope == scope {
		return false
	}
	b.scope = scope
	b.issued++
	b.applied = b.issued
	b.loaded = false
	b.errMsg = ""
	b.logger = b.logger.With().Str("workspace_id", scope.WorkspaceID).Logger()
	reset()
	return true
}

// commit applies fn under the write lock if t is not stale and current,
// when set, still holds. current runs under the lock.
// Callers must not hold b.mu.
func (b *base) commit(t uint64, current func() bool, fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t <= b.applied {
		b.logger.Debug().Uint64("ticket", t).Uint64("applied", b.applied).Msg("Discarding stale response")
		return false
	}
	if current != nil && !current() {
		b.logger.Debug().Uint64("ticket", t).Msg("Discarding response for superseded query")
		return false
	}
	b.applied = t
	fn()
	return true
}

// reconcile merges a mutation result taken under ticket t. Merges always
// apply while the scope is unchanged; they also retire older fetch tickets.
func (b *base) reconcile(t uint64, scope Scope, fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scope != scope {
		return false
	}
	if t > b.applied {
		b.applied = t
	}
	fn()
	return true
}

// fetched records a successful fetch for ticket t
func (b *base) fetched(t uint64, fn func()) bool {
	return b.fetchedWhen(t, nil, fn)
}

// fetchedWhen is fetched for stores whose fetch depends on a query that may
// change while the request is in flight
func (b *base) fetchedWhen(t uint64, current func() bool, fn func()) bool {
	return b.commit(t, current, func() {
		fn()
		b.loaded = true
		b.errMsg = ""
	})
}

// failed records a fetch failure for ticket t, keeping prior data
func (b *base) failed(t uint64, err error) {
	b.failedWhen(t, nil, err)
}

func (b *base) failedWhen(t uint64, current func() bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t <= b.applied || errors.Is(err, context.Canceled) {
		return
	}
	if current != nil && !current() {
		return
	}
	b.errMsg = errorMessage(err)
	b.logger.Warn().Err(err).Msg("Fetch failed")
}

// Err returns the last fetch error message, or "" if the last fetch succeeded
func (b *base) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errMsg
}

// Loaded reports whether at least one fetch has succeeded for the bound scope
func (b *base) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Scope returns the bound scope
func (b *base) Scope() Scope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scope
}

// requireScope returns the bound scope or an error if it is incomplete
func (b *base) requireScope() (Scope, error) {
	s := b.Scope()
	if s.Identity == "" {
		return s, domain.ErrIdentityRequired
	}
	if s.WorkspaceID == "" {
		return s, domain.ErrWorkspaceRequired
	}
	return s, nil
}

func (b *base) publish(scope Scope, eventType events.EventType, entity events.EntityType, payload any) {
	b.publisher.Publish(events.WorkspaceScope(scope.WorkspaceID), events.NewEvent(eventType, entity, payload))
}

// indexByID returns the position of the entry whose id matches, or -1.
// Creates use it so a row that a newer fetch already brought in is
// replaced rather than added twice.
func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i := range items {
		if idOf(items[i]) == id {
			return i
		}
	}
	return -1
}

// errorMessage extracts the user-facing message from err
func errorMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericFetchError
}
