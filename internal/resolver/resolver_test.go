package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource replays queued responses and counts calls
type stubSource struct {
	mu           sync.Mutex
	profiles     []profileReply
	statuses     []statusReply
	profileCalls int
	statusCalls  int
}

type profileReply struct {
	profile domain.AdvisorProfile
	err     error
}

type statusReply struct {
	status *domain.OnboardingStatus
	err    error
}

func (s *stubSource) GetAdvisorProfile(ctx context.Context, identity string) (domain.AdvisorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileCalls++
	if len(s.profiles) == 0 {
		return nil, &backend.APIError{Status: http.StatusNotFound, Message: "not found"}
	}
	r := s.profiles[0]
	if len(s.profiles) > 1 {
		s.profiles = s.profiles[1:]
	}
	return r.profile, r.err
}

func (s *stubSource) GetOnboardingStatus(ctx context.Context, identity string) (*domain.OnboardingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls++
	if len(s.statuses) == 0 {
		return &domain.OnboardingStatus{}, nil
	}
	r := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	return r.status, r.err
}

var (
	errNetwork   = backend.ErrUnavailable
	completed    = &domain.OnboardingStatus{Exists: true, OnboardingCompleted: true, HasPurpose: true, HasSkills: true}
	halfFinished = &domain.OnboardingStatus{Exists: true, OnboardingCompleted: true, HasPurpose: false, HasSkills: true}
	profile      = domain.AdvisorProfile{"headline": "Fractional CFO"}
)

func newTestResolver(src ProfileSource) *Resolver {
	r := New(src, time.Millisecond, zerolog.Nop())
	r.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return r
}

func TestResolve_HomeShortCircuits(t *testing.T) {
	src := &stubSource{
		profiles: []profileReply{{profile: profile}},
		statuses: []statusReply{{status: halfFinished}},
	}
	r := newTestResolver(src)

	for i := 0; i < 3; i++ {
		res, err := r.Resolve(context.Background(), "user_1", "/home")
		require.NoError(t, err)
		assert.Equal(t, ViewFlowSelector, res.View)
		assert.False(t, res.ShowOnboardingDialog)
		assert.Empty(t, res.Redirect)
	}
	assert.Zero(t, src.profileCalls)
	assert.Zero(t, src.statusCalls)
}

func TestResolve_FounderStates(t *testing.T) {
	tests := []struct {
		name   string
		status *domain.OnboardingStatus
		role   Role
		dialog bool
		view   View
	}{
		{"complete", completed, RoleFounderWithProfile, false, ViewApp},
		{"incomplete", halfFinished, RoleFounderNeedsOnboarding, true, ViewApp},
		{"absent", &domain.OnboardingStatus{}, RoleNeither, false, ViewFlowSelector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{statuses: []statusReply{{status: tt.status}}}
			res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/workspace/ws-1")
			require.NoError(t, err)
			assert.Equal(t, tt.role, res.Role)
			assert.Equal(t, tt.dialog, res.ShowOnboardingDialog)
			assert.Equal(t, tt.view, res.View)
			assert.Zero(t, src.profileCalls)
		})
	}
}

func TestResolve_AdvisorWithProfile(t *testing.T) {
	src := &stubSource{profiles: []profileReply{{profile: profile}}, statuses: []statusReply{{status: halfFinished}}}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleAdvisorWithProfile, res.Role)
	assert.Equal(t, ViewAdvisorDashboard, res.View)
	assert.False(t, res.ShowOnboardingDialog)
	assert.Empty(t, res.Redirect)
	assert.Zero(t, src.statusCalls)
}

func TestResolve_AdvisorWithProfileLeavesOnboarding(t *testing.T) {
	src := &stubSource{profiles: []profileReply{{profile: profile}}}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/onboarding")
	require.NoError(t, err)
	assert.Equal(t, "/advisor/dashboard", res.Redirect)
}

func TestResolve_AdvisorRetryFindsLateProfile(t *testing.T) {
	src := &stubSource{
		profiles: []profileReply{{profile: domain.AdvisorProfile{}}, {profile: profile}},
		statuses: []statusReply{{status: &domain.OnboardingStatus{}}},
	}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleAdvisorWithProfile, res.Role)
	assert.Equal(t, 2, src.profileCalls)
	assert.Equal(t, 1, src.statusCalls)
	assert.Equal(t, 3, res.Queries)
}

func TestResolve_AdvisorNeedsOnboardingAfterRetry(t *testing.T) {
	src := &stubSource{}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleAdvisorNeedsOnboarding, res.Role)
	assert.Equal(t, ViewAdvisorOnboarding, res.View)
	assert.Equal(t, "/advisor/onboarding", res.Redirect)
	assert.Equal(t, 2, src.profileCalls)

	res, err = newTestResolver(&stubSource{}).Resolve(context.Background(), "user_1", "/advisor/onboarding")
	require.NoError(t, err)
	assert.Empty(t, res.Redirect)
}

func TestResolve_CompletedFounderOnAdvisorPathSkipsRetry(t *testing.T) {
	src := &stubSource{statuses: []statusReply{{status: completed}}}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleAdvisorNeedsOnboarding, res.Role)
	assert.Equal(t, 1, src.profileCalls)
}

func TestResolve_AdvisorPathNeverShowsDialog(t *testing.T) {
	src := &stubSource{
		profiles: []profileReply{{err: errNetwork}},
		statuses: []statusReply{{status: halfFinished}},
	}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleFounderNeedsOnboarding, res.Role)
	assert.False(t, res.ShowOnboardingDialog)
}

func TestResolve_NetworkFailureFallsBackToFounderStatus(t *testing.T) {
	src := &stubSource{statuses: []statusReply{{err: errNetwork}, {status: completed}}}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/workspace/ws-1")
	require.NoError(t, err)
	assert.Equal(t, RoleFounderWithProfile, res.Role)
	assert.Equal(t, 2, src.statusCalls)
}

func TestResolve_RepeatedFailureIsRestrictive(t *testing.T) {
	src := &stubSource{
		profiles: []profileReply{{err: errNetwork}},
		statuses: []statusReply{{err: errNetwork}},
	}

	res, err := newTestResolver(src).Resolve(context.Background(), "user_1", "/workspace/ws-1")
	require.NoError(t, err)
	assert.Equal(t, RoleFounderNeedsOnboarding, res.Role)
	assert.True(t, res.ShowOnboardingDialog)

	res, err = newTestResolver(src).Resolve(context.Background(), "user_1", "/advisor/dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleFounderNeedsOnboarding, res.Role)
	assert.False(t, res.ShowOnboardingDialog)
}

func TestResolve_RequiresIdentity(t *testing.T) {
	_, err := newTestResolver(&stubSource{}).Resolve(context.Background(), "", "/home")
	assert.ErrorIs(t, err, domain.ErrIdentityRequired)
}

func TestResolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(&stubSource{}).Resolve(ctx, "user_1", "/workspace/ws-1")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRender_FounderNeedsOnboardingNeverOnAdvisorPaths(t *testing.T) {
	for _, p := range []string{"/advisor/", "/advisor/dashboard", "/advisor/onboarding", "/advisor/clients/42"} {
		d := Render(RoleFounderNeedsOnboarding, p)
		assert.False(t, d.ShowOnboardingDialog, p)
	}
	assert.True(t, Render(RoleFounderNeedsOnboarding, "/workspace/ws-1").ShowOnboardingDialog)
}

func TestRender_AdvisorRolesNeverShowDialog(t *testing.T) {
	for _, role := range []Role{RoleAdvisorWithProfile, RoleAdvisorNeedsOnboarding} {
		for _, p := range []string{"/workspace/ws-1", "/advisor/dashboard", "/"} {
			assert.False(t, Render(role, p).ShowOnboardingDialog)
		}
	}
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "founder_with_profile", RoleFounderWithProfile.String())
	assert.Equal(t, "role(99)", Role(99).String())
	text, err := RoleAdvisorWithProfile.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "advisor_with_profile", string(text))
}

func TestRole_JSONRoundTrip(t *testing.T) {
	for role := range roleNames {
		data, err := json.Marshal(struct {
			Role Role `json:"role"`
		}{role})
		require.NoError(t, err)

		var out struct {
			Role Role `json:"role"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, role, out.Role)
	}

	var r Role
	assert.Error(t, r.UnmarshalText([]byte("astronaut")))
}

func TestResolve_AgainstBackendReplicaLag(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	fake.SetAdvisorProfile("user_adv", profile, 1)
	client := backend.NewClient(fake.URL(), time.Second, zerolog.Nop())

	res, err := newTestResolver(client).Resolve(context.Background(), "user_adv", "/advisor/onboarding")
	require.NoError(t, err)
	assert.Equal(t, RoleAdvisorWithProfile, res.Role)
	assert.Equal(t, "/advisor/dashboard", res.Redirect)
	assert.Equal(t, 2, fake.CountRequests(http.MethodGet, "/advisors/profile"))
	assert.Equal(t, 1, fake.CountRequests(http.MethodGet, "/founders/onboarding-status"))
}
