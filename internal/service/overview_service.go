package service

import (
	"context"
	"math"
	"time"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/store"
	"github.com/cofoundry/gateway/internal/util"
	"golang.org/x/sync/errgroup"
)

// Activity windows for the health badge
const (
	HealthyWindowDays = 7
	QuietWindowDays   = 14
	recentDecisions   = 5
)

// Health is the activity badge on the overview tab
type Health string

const (
	HealthHealthy Health = "healthy"
	HealthQuiet   Health = "quiet"
	HealthAtRisk  Health = "at_risk"
)

// FocusKind is the next thing the founders should work on
type FocusKind string

const (
	FocusSetKPIs     FocusKind = "set_kpis"
	FocusAgreeEquity FocusKind = "agree_equity"
	FocusDefineRoles FocusKind = "define_roles"
	FocusAdvanceKPI  FocusKind = "advance_kpi"
	FocusAllComplete FocusKind = "all_complete"
)

// Minimum counts for the setup milestones
const (
	MinRoles = 2
	MinKPIs  = 3
)

// Milestones tracks workspace setup progress
type Milestones struct {
	EquityAgreed bool `json:"equity_agreed"`
	RolesDefined bool `json:"roles_defined"`
	KPIsSet      bool `json:"kpis_set"`
	Percent      int  `json:"percent"`
}

// Focus is the current focus card
type Focus struct {
	Kind FocusKind   `json:"kind"`
	KPI  *domain.KPI `json:"kpi,omitempty"`
}

// WeekActivity counts entries created since the start of the week
type WeekActivity struct {
	Checkins  int `json:"checkins"`
	Decisions int `json:"decisions"`
	Total     int `json:"total"`
}

// Overview is the overview tab payload
type Overview struct {
	Workspace       *domain.Workspace      `json:"workspace"`
	Participants    []domain.Participant   `json:"participants"`
	CurrentEquity   *domain.EquityScenario `json:"current_equity"`
	Roles           []domain.Role          `json:"roles"`
	KPIs            []domain.KPI           `json:"kpis"`
	RecentDecisions []domain.Decision      `json:"recent_decisions"`
	LatestCheckin   *domain.Checkin        `json:"latest_checkin"`
	Milestones      Milestones             `json:"milestones"`
	Focus           Focus                  `json:"focus"`
	Health          Health                 `json:"health"`
	LastActivity    *time.Time             `json:"last_activity"`
	ThisWeek        WeekActivity           `json:"this_week"`
}

// OverviewService assembles the overview tab
type OverviewService struct {
	registry *store.Registry
	now      func() time.Time
	loc      *time.Location
}

// NewOverviewService creates a new OverviewService. Week boundaries are
// computed in loc; nil means time.Local.
func NewOverviewService(registry *store.Registry, loc *time.Location) *OverviewService {
	if loc == nil {
		loc = time.Local
	}
	return &OverviewService{registry: registry, now: time.Now, loc: loc}
}

// GetOverview loads every resource the overview needs in parallel and
// derives the aggregates
func (s *OverviewService) GetOverview(ctx context.Context, identity, workspaceID string) (*Overview, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Workspace.Load(gctx) })
	g.Go(func() error { return sess.Participants.Load(gctx) })
	g.Go(func() error { return sess.Roles.Load(gctx) })
	g.Go(func() error { return sess.KPIs.Load(gctx) })
	g.Go(func() error { return sess.Activity.Load(gctx) })
	g.Go(func() error { return sess.Checkins.Load(gctx) })
	g.Go(func() error { return sess.Equity.Load(gctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildOverview(OverviewInput{
		Workspace:    sess.Workspace.Workspace(),
		Participants: sess.Participants.Participants(),
		Current:      sess.Equity.Current(),
		Roles:        sess.Roles.Roles(),
		KPIs:         sess.KPIs.KPIs(),
		Decisions:    sess.Activity.Decisions(),
		Checkins:     sess.Checkins.Checkins(),
	}, s.now().In(s.loc)), nil
}

// OverviewInput is the raw data the overview is derived from
type OverviewInput struct {
	Workspace    *domain.Workspace
	Participants []domain.Participant
	Current      *domain.EquityScenario
	Roles        []domain.Role
	KPIs         []domain.KPI
	Decisions    []domain.Decision
	Checkins     []domain.Checkin
}

// BuildOverview derives the overview as of now. Decisions and check-ins are
// expected newest first.
func BuildOverview(in OverviewInput, now time.Time) *Overview {
	milestones := ComputeMilestones(in.Current, in.Roles, in.KPIs)
	health, last := ComputeHealth(in.Checkins, in.Decisions, in.KPIs, now)

	recent := in.Decisions
	if len(recent) > recentDecisions {
		recent = recent[:recentDecisions]
	}
	var latest *domain.Checkin
	if len(in.Checkins) > 0 {
		c := in.Checkins[0]
		latest = &c
	}

	return &Overview{
		Workspace:       in.Workspace,
		Participants:    nonNil(in.Participants),
		CurrentEquity:   in.Current,
		Roles:           nonNil(in.Roles),
		KPIs:            nonNil(in.KPIs),
		RecentDecisions: nonNil(recent),
		LatestCheckin:   latest,
		Milestones:      milestones,
		Focus:           ComputeFocus(milestones, in.KPIs),
		Health:          health,
		LastActivity:    last,
		ThisWeek:        CountThisWeek(in.Checkins, in.Decisions, now),
	}
}

// ComputeMilestones checks the three setup milestones
func ComputeMilestones(current *domain.EquityScenario, roles []domain.Role, kpis []domain.KPI) Milestones {
	m := Milestones{
		EquityAgreed: current != nil,
		RolesDefined: rolesDefined(roles),
		KPIsSet:      len(kpis) >= MinKPIs,
	}
	done := 0
	for _, ok := range []bool{m.EquityAgreed, m.RolesDefined, m.KPIsSet} {
		if ok {
			done++
		}
	}
	m.Percent = int(math.Round(float64(done) * 100 / 3))
	return m
}

func rolesDefined(roles []domain.Role) bool {
	if len(roles) < MinRoles {
		return false
	}
	for _, r := range roles {
		if !r.HasTitle() {
			return false
		}
	}
	return true
}

// ComputeFocus picks the first unmet step
func ComputeFocus(m Milestones, kpis []domain.KPI) Focus {
	switch {
	case !m.KPIsSet:
		return Focus{Kind: FocusSetKPIs}
	case !m.EquityAgreed:
		return Focus{Kind: FocusAgreeEquity}
	case !m.RolesDefined:
		return Focus{Kind: FocusDefineRoles}
	}
	for _, k := range kpis {
		if k.Status == domain.KPIInProgress {
			kpi := k
			return Focus{Kind: FocusAdvanceKPI, KPI: &kpi}
		}
	}
	return Focus{Kind: FocusAllComplete}
}

// ComputeHealth rates activity by the most recent check-in, decision or KPI
// update. It also returns that timestamp, or nil if there was none.
func ComputeHealth(checkins []domain.Checkin, decisions []domain.Decision, kpis []domain.KPI, now time.Time) (Health, *time.Time) {
	var last time.Time
	bump := func(t time.Time) {
		if t.After(last) {
			last = t
		}
	}
	for _, c := range checkins {
		bump(c.CreatedAt)
	}
	for _, d := range decisions {
		bump(d.CreatedAt)
	}
	for _, k := range kpis {
		bump(k.UpdatedAt)
	}

	if last.IsZero() {
		return HealthAtRisk, nil
	}
	switch {
	case util.WithinDays(last, now, HealthyWindowDays):
		return HealthHealthy, &last
	case util.WithinDays(last, now, QuietWindowDays):
		return HealthQuiet, &last
	default:
		return HealthAtRisk, &last
	}
}

// CountThisWeek counts check-ins and decisions created at or after the most
// recent Sunday 00:00 in now's location
func CountThisWeek(checkins []domain.Checkin, decisions []domain.Decision, now time.Time) WeekActivity {
	start := util.StartOfWeek(now)
	var w WeekActivity
	for _, c := range checkins {
		if !c.CreatedAt.Before(start) {
			w.Checkins++
		}
	}
	for _, d := range decisions {
		if !d.CreatedAt.Before(start) {
			w.Decisions++
		}
	}
	w.Total = w.Checkins + w.Decisions
	return w
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
