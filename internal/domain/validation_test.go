package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDecision_Validate(t *testing.T) {
	assert.ErrorIs(t, NewDecision{Content: "  ", Tag: TagEquity}.Validate(), ErrContentRequired)
	assert.ErrorIs(t, NewDecision{Content: "Split 50/50", Tag: "vibes"}.Validate(), ErrInvalidTag)
	assert.NoError(t, NewDecision{Content: "Split 50/50", Tag: TagEquity}.Validate())
}

func TestDecisionQuery_Normalize(t *testing.T) {
	q := DecisionQuery{}.Normalize()
	assert.Equal(t, DefaultDecisionPage, q.Page)
	assert.Equal(t, DefaultDecisionSize, q.Limit)

	q = DecisionQuery{Page: 3, Limit: 5, Tag: TagMoney}.Normalize()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 5, q.Limit)
}

func TestNewCheckin_Validate(t *testing.T) {
	over := 101
	half := 50
	assert.ErrorIs(t, NewCheckin{Summary: "", Status: CheckinOnTrack}.Validate(), ErrSummaryRequired)
	assert.ErrorIs(t, NewCheckin{Summary: "ok", Status: "great"}.Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, NewCheckin{Summary: "ok", Status: CheckinOnTrack, ProgressPercent: &over}.Validate(), ErrInvalidProgress)
	assert.ErrorIs(t, NewCheckin{Summary: "ok", Status: CheckinOnTrack, WeekStart: "last week"}.Validate(), ErrInvalidInput)
	assert.NoError(t, NewCheckin{Summary: "ok", Status: CheckinOffTrack, ProgressPercent: &half, WeekStart: "2026-10-11"}.Validate())
	assert.NoError(t, NewCheckin{Summary: "ok", Status: CheckinSlightlyBehind}.Validate())
}

func TestWorkspaceUpdate_Validate(t *testing.T) {
	blank := " "
	stage := Stage("series-z")
	mvp := StageMVP
	assert.ErrorIs(t, WorkspaceUpdate{Title: &blank}.Validate(), ErrTitleRequired)
	assert.ErrorIs(t, WorkspaceUpdate{Stage: &stage}.Validate(), ErrInvalidStage)
	assert.NoError(t, WorkspaceUpdate{Stage: &mvp}.Validate())
}

func TestNewKPIAndTask_Validate(t *testing.T) {
	assert.ErrorIs(t, NewKPI{}.Validate(), ErrLabelRequired)
	assert.ErrorIs(t, NewKPI{Label: "MRR", TargetDate: "soon"}.Validate(), ErrInvalidInput)
	assert.NoError(t, NewKPI{Label: "MRR", TargetDate: "2027-01-01"}.Validate())

	assert.ErrorIs(t, NewTask{}.Validate(), ErrTitleRequired)
	assert.NoError(t, NewTask{Title: "Incorporate", DueDate: "2026-12-01"}.Validate())
}

func TestRoleInputAndOnboarding(t *testing.T) {
	assert.ErrorIs(t, RoleInput{RoleTitle: ""}.Validate(), ErrTitleRequired)
	assert.True(t, Role{RoleTitle: "CTO"}.HasTitle())
	assert.False(t, Role{RoleTitle: "   "}.HasTitle())

	assert.True(t, OnboardingStatus{Exists: true, OnboardingCompleted: true, HasPurpose: true, HasSkills: true}.Complete())
	assert.False(t, OnboardingStatus{Exists: true, OnboardingCompleted: true, HasPurpose: true}.Complete())
	assert.True(t, AdvisorProfile{}.Empty())
	assert.False(t, AdvisorProfile{"id": "a1"}.Empty())
}

func TestDocumentCategory_Valid(t *testing.T) {
	assert.True(t, CategoryLegal.Valid())
	assert.False(t, DocumentCategory("Memes").Valid())
}
