package store

import (
	"sync"
	"time"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// DefaultSweepInterval is how often idle sessions are reaped
const DefaultSweepInterval = time.Minute

// Session bundles every store for one identity viewing one workspace
type Session struct {
	Scope        Scope
	Workspace    *WorkspaceStore
	Decisions    *DecisionStore
	Activity     *DecisionStore
	Equity       *EquityStore
	Roles        *RoleStore
	KPIs         *KPIStore
	Checkins     *CheckinStore
	Participants *ParticipantStore
	Tasks        *TaskStore

	lastSeen time.Time
}

func newSession(api API, scope Scope, publisher events.Publisher, logger zerolog.Logger) *Session {
	return &Session{
		Scope:        scope,
		Workspace:    NewWorkspaceStore(api, scope, publisher, logger),
		Decisions:    NewDecisionStore(api, scope, publisher, logger),
		Activity:     NewActivityStore(api, scope, publisher, logger),
		Equity:       NewEquityStore(api, scope, publisher, logger),
		Roles:        NewRoleStore(api, scope, publisher, logger),
		KPIs:         NewKPIStore(api, scope, publisher, logger),
		Checkins:     NewCheckinStore(api, scope, domain.DefaultCheckinLimit, publisher, logger),
		Participants: NewParticipantStore(api, scope, publisher, logger),
		Tasks:        NewTaskStore(api, scope, publisher, logger),
	}
}

// Registry hands out one Session per (identity, workspace) and evicts
// sessions that have been idle longer than ttl
type Registry struct {
	api       API
	publisher events.Publisher
	logger    zerolog.Logger
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[Scope]*Session
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates an empty Registry. Call Start to begin reaping.
func NewRegistry(api API, publisher events.Publisher, logger zerolog.Logger, ttl time.Duration) *Registry {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return &Registry{
		api:       api,
		publisher: publisher,
		logger:    logger.With().Str("component", "session_registry").Logger(),
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[Scope]*Session),
		stopCh:    make(chan struct{}),
	}
}

// Session returns the session for identity and workspaceID, creating it on
// first use
func (r *Registry) Session(identity, workspaceID string) (*Session, error) {
	scope := Scope{Identity: identity, WorkspaceID: workspaceID}
	if identity == "" {
		return nil, domain.ErrIdentityRequired
	}
	if workspaceID == "" {
		return nil, domain.ErrWorkspaceRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[scope]
	if !ok {
		s = newSession(r.api, scope, r.publisher, r.logger)
		r.sessions[scope] = s
		r.logger.Debug().Str("user_id", identity).Str("workspace_id", workspaceID).Msg("Session created")
	}
	s.lastSeen = r.now()
	return s, nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for scope, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.sessions, scope)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug().Int("removed", removed).Int("remaining", len(r.sessions)).Msg("Swept idle sessions")
	}
	return removed
}

// Start runs Sweep every interval until Stop is called
func (r *Registry) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Sweep(r.now())
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}
