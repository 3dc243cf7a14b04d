package service

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/cofoundry/gateway/internal/resolver"
	"github.com/cofoundry/gateway/internal/routing"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PlanAPI reads the billing plan of an identity
type PlanAPI interface {
	GetMyPlan(ctx context.Context, identity string) (*domain.Plan, error)
}

// RoleResolver resolves the role of an identity on a path
type RoleResolver interface {
	Resolve(ctx context.Context, identity, path string) (resolver.Result, error)
}

// SessionView tells the shell what chrome to render for a path
type SessionView struct {
	Identity  string                  `json:"identity"`
	User      *domain.UserRef         `json:"user,omitempty"`
	Path      string                  `json:"path"`
	Area      routing.Area            `json:"area"`
	Role      resolver.Role           `json:"role"`
	View      resolver.View           `json:"view"`
	Dialog    bool                    `json:"show_onboarding_dialog"`
	Redirect  string                  `json:"redirect,omitempty"`
	Workspace *routing.WorkspaceRoute `json:"workspace,omitempty"`
	Plan      *domain.Plan            `json:"plan"`
}

// SessionService resolves the app shell state and relays notifications
type SessionService struct {
	resolver  RoleResolver
	plans     PlanAPI
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(r RoleResolver, plans PlanAPI, publisher events.Publisher, logger zerolog.Logger) *SessionService {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return &SessionService{
		resolver:  r,
		plans:     plans,
		publisher: publisher,
		logger:    logger.With().Str("component", "session_service").Logger(),
	}
}

// GetSession resolves the role and loads the plan in parallel. A plan
// failure is logged and leaves Plan nil.
func (s *SessionService) GetSession(ctx context.Context, identity, path string) (*SessionView, error) {
	if identity == "" {
		return nil, domain.ErrIdentityRequired
	}

	var (
		res  resolver.Result
		plan *domain.Plan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = s.resolver.Resolve(gctx, identity, path)
		return err
	})
	g.Go(func() error {
		p, err := s.plans.GetMyPlan(gctx, identity)
		if err != nil {
			if gctx.Err() == nil {
				s.logger.Warn().Err(err).Str("user_id", identity).Msg("Plan lookup failed")
			}
			return nil
		}
		plan = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &SessionView{
		Identity: identity,
		Path:     res.Path,
		Area:     routing.Classify(res.Path),
		Role:     res.Role,
		View:     res.View,
		Dialog:   res.ShowOnboardingDialog,
		Redirect: res.Redirect,
		Plan:     plan,
	}
	if route, ok := routing.ParseWorkspacePath(res.Path); ok {
		view.Workspace = &route
	}
	return view, nil
}

// Notify relays a browser notification to every connection of identity
func (s *SessionService) Notify(identity string, topic events.Topic, payload any) error {
	if identity == "" {
		return domain.ErrIdentityRequired
	}
	if !topic.Valid() {
		return domain.ErrInvalidInput
	}
	s.publisher.Publish(events.UserScope(identity), events.Notification(topic, payload))
	return nil
}
