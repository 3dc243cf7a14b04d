// Package resolver decides whether a signed-in identity is an advisor, a
// founder who still has to onboard, a founder with full access, or neither.
//
// Resolution is a small state machine. Each state is handled by a named
// transition function that performs at most one backend query and returns
// the next state, so every branch can be driven with a stub ProfileSource.
package resolver

import (
	"context"
	"time"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/routing"
	"github.com/rs/zerolog"
)

// DefaultRetryDelay is the pause before re-reading an empty advisor profile
const DefaultRetryDelay = 750 * time.Millisecond

// ProfileSource is the backend surface the resolver queries
type ProfileSource interface {
	GetOnboardingStatus(ctx context.Context, identity string) (*domain.OnboardingStatus, error)
	GetAdvisorProfile(ctx context.Context, identity string) (domain.AdvisorProfile, error)
}

// Ensure the HTTP client satisfies ProfileSource
var _ ProfileSource = (*backend.Client)(nil)

// state is a step of the resolution machine
type state int

const (
	stateStart state = iota
	stateAdvisorProfile
	stateAdvisorRecovery
	stateAdvisorRetry
	stateFounderStatus
	stateFounderFallback
	stateDone
)

// Resolver runs the resolution machine
type Resolver struct {
	source     ProfileSource
	retryDelay time.Duration
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a Resolver. A non-positive retryDelay uses DefaultRetryDelay.
func New(source ProfileSource, retryDelay time.Duration, logger zerolog.Logger) *Resolver {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Resolver{
		source:     source,
		retryDelay: retryDelay,
		logger:     logger.With().Str("component", "role_resolver").Logger(),
		sleep:      sleepContext,
	}
}

// Result is the outcome of Resolve
type Result struct {
	Decision
	Path    string `json:"path"`
	Queries int    `json:"-"`
}

// machine carries the working state of one resolution
type machine struct {
	identity string
	path     string
	role     Role
	queries  int
}

// Resolve determines the role of identity for a browser at path and how the
// shell should render it. It only fails if ctx is done.
func (r *Resolver) Resolve(ctx context.Context, identity, path string) (Result, error) {
	if identity == "" {
		return Result{}, domain.ErrIdentityRequired
	}
	m := &machine{identity: identity, path: routing.Clean(path)}

	st := stateStart
	for st != stateDone {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		switch st {
		case stateStart:
			st = r.start(m)
		case stateAdvisorProfile:
			st = r.advisorProfile(ctx, m)
		case stateAdvisorRecovery:
			st = r.advisorRecovery(ctx, m)
		case stateAdvisorRetry:
			st = r.advisorRetry(ctx, m)
		case stateFounderStatus:
			st = r.founderStatus(ctx, m)
		case stateFounderFallback:
			st = r.founderFallback(ctx, m)
		default:
			st = stateDone
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r.logger.Debug().
		Str("user_id", identity).
		Str("path", m.path).
		Str("role", m.role.String()).
		Int("queries", m.queries).
		Msg("Resolved role")

	return Result{Decision: Render(m.role, m.path), Path: m.path, Queries: m.queries}, nil
}

// start routes home paths straight to the flow selector without querying
func (r *Resolver) start(m *machine) state {
	switch routing.Classify(m.path) {
	case routing.AreaHome:
		m.role = RoleUnknown
		return stateDone
	case routing.AreaAdvisor:
		return stateAdvisorProfile
	default:
		return stateFounderStatus
	}
}

// advisorProfile reads the advisor profile on advisor paths
func (r *Resolver) advisorProfile(ctx context.Context, m *machine) state {
	m.queries++
	profile, err := r.source.GetAdvisorProfile(ctx, m.identity)
	switch advisorOutcome(profile, err) {
	case outcomeFound:
		m.role = RoleAdvisorWithProfile
		return stateDone
	case outcomeMissing:
		return stateAdvisorRecovery
	default:
		r.logger.Warn().Err(err).Str("user_id", m.identity).Msg("Advisor profile lookup failed")
		return stateFounderFallback
	}
}

// advisorRecovery checks founder status after an empty advisor profile. A
// completed founder is not waiting on a fresh advisor profile, so no retry.
func (r *Resolver) advisorRecovery(ctx context.Context, m *machine) state {
	m.queries++
	status, err := r.source.GetOnboardingStatus(ctx, m.identity)
	if err == nil && status != nil && status.Complete() {
		m.role = RoleAdvisorNeedsOnboarding
		return stateDone
	}
	return stateAdvisorRetry
}

// advisorRetry waits out replica lag and reads the advisor profile once more
func (r *Resolver) advisorRetry(ctx context.Context, m *machine) state {
	if err := r.sleep(ctx, r.retryDelay); err != nil {
		return stateDone
	}
	m.queries++
	profile, err := r.source.GetAdvisorProfile(ctx, m.identity)
	switch advisorOutcome(profile, err) {
	case outcomeFound:
		m.role = RoleAdvisorWithProfile
	case outcomeMissing:
		m.role = RoleAdvisorNeedsOnboarding
	default:
		r.logger.Warn().Err(err).Str("user_id", m.identity).Msg("Advisor profile retry failed")
		return stateFounderFallback
	}
	return stateDone
}

// founderStatus classifies the identity from its founder onboarding status
func (r *Resolver) founderStatus(ctx context.Context, m *machine) state {
	m.queries++
	status, err := r.source.GetOnboardingStatus(ctx, m.identity)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", m.identity).Msg("Onboarding status lookup failed")
		return stateFounderFallback
	}
	m.role = FounderRole(status)
	return stateDone
}

// founderFallback makes one last founder status attempt after a failure
// and settles on the restricted role if that fails too
func (r *Resolver) founderFallback(ctx context.Context, m *machine) state {
	m.queries++
	status, err := r.source.GetOnboardingStatus(ctx, m.identity)
	if err != nil {
		m.role = RoleFounderNeedsOnboarding
		return stateDone
	}
	m.role = FounderRole(status)
	return stateDone
}

type outcome int

const (
	outcomeFound outcome = iota
	outcomeMissing
	outcomeFailed
)

// advisorOutcome classifies an advisor profile response. A 404 or an empty
// object both mean no profile yet.
func advisorOutcome(profile domain.AdvisorProfile, err error) outcome {
	switch {
	case err == nil && !profile.Empty():
		return outcomeFound
	case err == nil, backend.IsNotFound(err):
		return outcomeMissing
	default:
		return outcomeFailed
	}
}

// FounderRole maps an onboarding status to a founder role
func FounderRole(status *domain.OnboardingStatus) Role {
	switch {
	case status == nil || !status.Exists:
		return RoleNeither
	case status.Complete():
		return RoleFounderWithProfile
	default:
		return RoleFounderNeedsOnboarding
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
