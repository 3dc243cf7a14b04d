package service

import (
	"context"
	"time"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/store"
	"github.com/cofoundry/gateway/internal/util"
)

// AccountabilityView is the accountability tab payload
type AccountabilityView struct {
	Checkins        []domain.Checkin      `json:"checkins"`
	Limit           int                   `json:"limit"`
	LatestStatus    *domain.CheckinStatus `json:"latest_status"`
	AverageProgress *float64              `json:"average_progress"`
	StreakWeeks     int                   `json:"streak_weeks"`
}

// AccountabilityService handles weekly check-ins
type AccountabilityService struct {
	registry *store.Registry
	now      func() time.Time
	loc      *time.Location
}

// NewAccountabilityService creates a new AccountabilityService. Weeks are
// computed in loc; nil means time.Local.
func NewAccountabilityService(registry *store.Registry, loc *time.Location) *AccountabilityService {
	if loc == nil {
		loc = time.Local
	}
	return &AccountabilityService{registry: registry, now: time.Now, loc: loc}
}

// GetAccountability loads up to limit check-ins and derives the summary.
// A non-positive limit keeps the session's current one.
func (s *AccountabilityService) GetAccountability(ctx context.Context, identity, workspaceID string, limit int) (*AccountabilityView, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit != sess.Checkins.Limit() {
		err = sess.Checkins.SetLimit(ctx, limit)
	} else {
		err = sess.Checkins.Load(ctx)
	}
	if err != nil {
		return nil, err
	}
	return BuildAccountability(sess.Checkins.Checkins(), sess.Checkins.Limit(), s.now().In(s.loc)), nil
}

// BuildAccountability summarizes newest-first check-ins as of now
func BuildAccountability(checkins []domain.Checkin, limit int, now time.Time) *AccountabilityView {
	view := &AccountabilityView{
		Checkins:        nonNil(checkins),
		Limit:           limit,
		AverageProgress: AverageProgress(checkins),
		StreakWeeks:     WeekStreak(checkins, now),
	}
	if len(checkins) > 0 {
		st := checkins[0].Status
		view.LatestStatus = &st
	}
	return view
}

// AverageProgress averages the reported progress, ignoring check-ins that
// did not report one. It is nil when none did.
func AverageProgress(checkins []domain.Checkin) *float64 {
	total, n := 0, 0
	for _, c := range checkins {
		if c.ProgressPercent != nil {
			total += *c.ProgressPercent
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(total) / float64(n)
	return &avg
}

// WeekStreak counts consecutive weeks with at least one check-in, ending
// this week. A streak whose last check-in was last week is still running.
func WeekStreak(checkins []domain.Checkin, now time.Time) int {
	weeks := make(map[string]bool, len(checkins))
	for _, c := range checkins {
		weeks[checkinWeek(c, now.Location()).Format(time.DateOnly)] = true
	}
	has := func(t time.Time) bool { return weeks[t.Format(time.DateOnly)] }

	week := util.StartOfWeek(now)
	if !has(week) {
		week = util.PreviousWeek(week)
	}
	streak := 0
	for has(week) {
		streak++
		week = util.PreviousWeek(week)
	}
	return streak
}

// checkinWeek is the Sunday starting the week a check-in reports on
func checkinWeek(c domain.Checkin, loc *time.Location) time.Time {
	if c.WeekStart != "" {
		if d, err := util.ParseDate(c.WeekStart, loc); err == nil {
			return util.StartOfWeek(d)
		}
	}
	return util.StartOfWeek(c.CreatedAt.In(loc))
}

// CreateCheckin records this week's check-in
func (s *AccountabilityService) CreateCheckin(ctx context.Context, identity, workspaceID string, in domain.NewCheckin) (*domain.Checkin, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Checkins.Create(ctx, in)
}
