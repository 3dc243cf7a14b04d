package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenario(label string, alicePct, bobPct float64) domain.NewScenario {
	return domain.NewScenario{
		Label: label,
		Data: domain.ScenarioData{
			Users: []domain.EquityShare{
				{UserID: alice, Percent: decimal.NewFromFloat(alicePct)},
				{UserID: bob, Percent: decimal.NewFromFloat(bobPct)},
			},
			Vesting: domain.Vesting{Years: 4, CliffMonths: 12},
		},
	}
}

func TestEquityFlow_ProposeApproveSetCurrent(t *testing.T) {
	f := newFixture(t)
	svc := NewEquityService(f.registry, f.client)
	ctx := context.Background()

	proposed, err := svc.ProposeScenario(ctx, alice, wsID, scenario("Founders split", 60, 40))
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, proposed.ApprovalStatus)

	aliceView, err := svc.GetEquityView(ctx, alice, wsID)
	require.NoError(t, err)
	require.Len(t, aliceView.Scenarios, 1)
	assert.False(t, aliceView.Scenarios[0].CanDecide)
	assert.False(t, aliceView.Scenarios[0].CanSetCurrent)
	assert.True(t, aliceView.Scenarios[0].TotalPercent.Equal(decimal.NewFromInt(100)))

	bobView, err := svc.GetEquityView(ctx, bob, wsID)
	require.NoError(t, err)
	require.True(t, bobView.Scenarios[0].CanDecide)

	approval, err := svc.Decide(ctx, bob, wsID, proposed.Approval.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, approval.Status)

	aliceView, err = svc.GetEquityView(ctx, alice, wsID)
	require.NoError(t, err)
	assert.True(t, aliceView.Scenarios[0].CanSetCurrent)

	require.NoError(t, svc.SetCurrent(ctx, alice, wsID, proposed.ID))

	aliceView, err = svc.GetEquityView(ctx, alice, wsID)
	require.NoError(t, err)
	require.NotNil(t, aliceView.Current)
	assert.Equal(t, proposed.ID, aliceView.Current.ID)
	assert.False(t, aliceView.Scenarios[0].CanSetCurrent)

	current := 0
	for _, sc := range f.fake.Scenarios(wsID) {
		if sc.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)
}

func TestEquityFlow_RejectsBadTotalBeforeSending(t *testing.T) {
	f := newFixture(t)
	svc := NewEquityService(f.registry, f.client)

	_, err := svc.ProposeScenario(context.Background(), alice, wsID, scenario("Typo", 60, 45))
	assert.ErrorIs(t, err, domain.ErrEquityTotal)
	assert.Empty(t, f.fake.Requests())
}

func TestEquityFlow_AcceptsRoundingWithinTolerance(t *testing.T) {
	f := newFixture(t)
	svc := NewEquityService(f.registry, f.client)

	_, err := svc.ProposeScenario(context.Background(), alice, wsID, scenario("Thirds-ish", 66.667, 33.337))
	assert.NoError(t, err)
}

func TestEquityFlow_EditLock(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.fake.AddScenario(wsID, domain.EquityScenario{ID: "old", Label: "old", Status: domain.ScenarioActive, CreatedAt: now.Add(-2 * time.Hour)})
	f.fake.AddScenario(wsID, domain.EquityScenario{ID: "new", Label: "new", Status: domain.ScenarioActive, CreatedAt: now.Add(-time.Hour)})
	svc := NewEquityService(f.registry, f.client)
	ctx := context.Background()

	assert.ErrorIs(t, svc.UpdateNote(ctx, alice, wsID, "old", "late edit"), domain.ErrScenarioLocked)
	require.NoError(t, svc.UpdateNote(ctx, alice, wsID, "new", "looks fair"))
	assert.ErrorIs(t, svc.UpdateNote(ctx, alice, wsID, "missing", "?"), domain.ErrNotFound)

	view, err := svc.GetEquityView(ctx, alice, wsID)
	require.NoError(t, err)
	assert.True(t, view.Scenarios[0].Editable)
	assert.False(t, view.Scenarios[1].Editable)
	assert.Equal(t, "looks fair", view.Scenarios[0].Note)
}

func TestEquityFlow_CurrentAndCanceledAreLocked(t *testing.T) {
	f := newFixture(t)
	f.fake.AddScenario(wsID, domain.EquityScenario{ID: "cur", IsCurrent: true, ApprovalStatus: domain.ApprovalApproved, Status: domain.ScenarioActive, CreatedAt: time.Now()})
	svc := NewEquityService(f.registry, f.client)
	ctx := context.Background()
	assert.ErrorIs(t, svc.UpdateNote(ctx, alice, wsID, "cur", "x"), domain.ErrScenarioLocked)

	f2 := newFixture(t)
	f2.fake.AddScenario(wsID, domain.EquityScenario{ID: "gone", Status: domain.ScenarioCanceled, CreatedAt: time.Now()})
	svc2 := NewEquityService(f2.registry, f2.client)
	assert.ErrorIs(t, svc2.UpdateNote(ctx, alice, wsID, "gone", "x"), domain.ErrScenarioLocked)
}

func TestEquityFlow_SetCurrentNeedsApproval(t *testing.T) {
	f := newFixture(t)
	svc := NewEquityService(f.registry, f.client)
	ctx := context.Background()

	proposed, err := svc.ProposeScenario(ctx, alice, wsID, scenario("Pending", 50, 50))
	require.NoError(t, err)

	err = svc.SetCurrent(ctx, alice, wsID, proposed.ID)
	assert.Equal(t, http.StatusConflict, backend.StatusOf(err))
}

func TestDecide_WithoutWorkspaceGoesDirect(t *testing.T) {
	f := newFixture(t)
	svc := NewEquityService(f.registry, f.client)
	ctx := context.Background()

	proposed, err := svc.ProposeScenario(ctx, alice, wsID, scenario("Split", 70, 30))
	require.NoError(t, err)

	a, err := svc.Decide(ctx, bob, "", proposed.Approval.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalRejected, a.Status)

	_, err = svc.Decide(ctx, "", "", proposed.Approval.ID, true)
	assert.ErrorIs(t, err, domain.ErrIdentityRequired)
	_, err = svc.Decide(ctx, bob, "", "", true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpsertRole(t *testing.T) {
	f := newFixture(t)
	svc := NewEquityService(f.registry, f.client)

	r, err := svc.UpsertRole(context.Background(), alice, wsID, bob, domain.RoleInput{RoleTitle: "CTO", Responsibilities: "platform"})
	require.NoError(t, err)
	assert.Equal(t, bob, r.UserID)

	_, err = svc.UpsertRole(context.Background(), alice, wsID, "", domain.RoleInput{RoleTitle: "CTO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
