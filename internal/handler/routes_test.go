package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/cofoundry/gateway/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", "")
	requireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoutes_RequireIdentity(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/session?path=/home", "", "")
	requireStatus(t, rec, http.StatusUnauthorized)
	assert.Empty(t, s.fake.Requests())
}

func TestGetSession_Home(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/session?path=/home", alice, "")
	requireStatus(t, rec, http.StatusOK)

	view := decode[map[string]any](t, rec)
	assert.Equal(t, "flow_selector", view["view"])
	assert.Equal(t, false, view["show_onboarding_dialog"])
	assert.Equal(t, "home", view["area"])
	// only the plan is fetched on home
	assert.Equal(t, 0, s.fake.CountRequests(http.MethodGet, "/founders/onboarding-status"))
	assert.Equal(t, 0, s.fake.CountRequests(http.MethodGet, "/advisors/profile"))
}

func TestGetSession_FounderNeedsOnboarding(t *testing.T) {
	s := newTestServer(t)
	s.fake.SetOnboarding(alice, domain.OnboardingStatus{Exists: true})

	rec := s.do(http.MethodGet, "/api/v1/session?path=/workspace/ws-1/tasks", alice, "")
	requireStatus(t, rec, http.StatusOK)

	view := decode[service.SessionView](t, rec)
	assert.True(t, view.Dialog)
	require.NotNil(t, view.Workspace)
	assert.Equal(t, "tasks", view.Workspace.Tab.Slug)
}

func TestGetSession_AdvisorPathNeverShowsDialog(t *testing.T) {
	s := newTestServer(t)
	s.fake.FailWith(http.MethodGet, "/advisors/profile", http.StatusInternalServerError)
	s.fake.FailWith(http.MethodGet, "/founders/onboarding-status", http.StatusInternalServerError)

	rec := s.do(http.MethodGet, "/api/v1/session?path=/advisor/dashboard", alice, "")
	requireStatus(t, rec, http.StatusOK)

	view := decode[service.SessionView](t, rec)
	assert.False(t, view.Dialog)
	assert.Empty(t, view.Redirect)
}

// tokenValidator accepts "good" as alice's token
type tokenValidator struct{}

func (tokenValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: alice},
		CustomClaims:     &middleware.CustomClaims{Email: "alice@example.com", Name: "Alice"},
	}, nil
}

func TestGetSession_UserFromTokenClaims(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	s := newTestServerWithAuth(t, fake, fake.URL(), middleware.NewAuthMiddlewareWithValidator(tokenValidator{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session?path=/home", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)

	view := decode[service.SessionView](t, rec)
	assert.Equal(t, alice, view.Identity)
	require.NotNil(t, view.User)
	assert.Equal(t, "Alice", view.User.Name)
	assert.Equal(t, "alice@example.com", view.User.Email)

	// header identities carry no profile
	view = decode[service.SessionView](t, newTestServer(t).do(http.MethodGet, "/api/v1/session?path=/home", alice, ""))
	assert.Nil(t, view.User)
}

func TestGetTab(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/routes/tab?path=/workspace/ws-1/equity-roles", alice, "")
	requireStatus(t, rec, http.StatusOK)
	tab := decode[TabResponse](t, rec)
	assert.Equal(t, "ws-1", tab.WorkspaceID)
	assert.Equal(t, "equity-roles", tab.Tab.Slug)
	require.NotEmpty(t, tab.Tabs)
	assert.Equal(t, "/workspace/ws-1", tab.Tabs[0].Path)

	rec = s.do(http.MethodGet, "/api/v1/routes/tab?path=/projects", alice, "")
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestNotify(t *testing.T) {
	s := newTestServer(t)
	sub := s.hub.Subscribe(1, "user:"+alice)
	defer s.hub.Unregister(sub)

	rec := s.do(http.MethodPost, "/api/v1/notifications/creditsUpdated", alice, `{"credits":4}`)
	requireStatus(t, rec, http.StatusAccepted)

	data := <-sub.C()
	assert.Contains(t, string(data), `"creditsUpdated"`)
	assert.Contains(t, string(data), `"credits":4`)

	rec = s.do(http.MethodPost, "/api/v1/notifications/spam", alice, "")
	requireStatus(t, rec, http.StatusBadRequest)
	problem := decode[ProblemDetails](t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "topic", problem.Errors[0].Field)

	rec = s.do(http.MethodPost, "/api/v1/notifications/creditsUpdated", alice, `{not json`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestEquityApprovalOverHTTP(t *testing.T) {
	s := newTestServer(t)
	base := "/api/v1/workspaces/" + wsID

	rec := s.do(http.MethodPost, base+"/equity-scenarios", alice,
		`{"label":"Even-ish","data":{"users":[{"userId":"user_alice","percent":60},{"userId":"user_bob","percent":45}],"vesting":{"years":4,"cliffMonths":12}}}`)
	requireStatus(t, rec, http.StatusBadRequest)
	problem := decode[ProblemDetails](t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "data.users", problem.Errors[0].Field)

	rec = s.do(http.MethodPost, base+"/equity-scenarios", alice,
		`{"label":"60/40","data":{"users":[{"userId":"user_alice","percent":60},{"userId":"user_bob","percent":40}],"vesting":{"years":4,"cliffMonths":12}}}`)
	requireStatus(t, rec, http.StatusCreated)

	view := decode[service.EquityView](t, s.do(http.MethodGet, base+"/equity", bob, ""))
	require.Len(t, view.Scenarios, 1)
	require.NotNil(t, view.Scenarios[0].Approval)
	assert.True(t, view.Scenarios[0].CanDecide)
	approvalID := view.Scenarios[0].Approval.ID
	scenarioID := view.Scenarios[0].ID

	rec = s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/approve?workspace="+wsID, bob, "")
	requireStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodPost, base+"/equity-scenarios/"+scenarioID+"/set-current", alice, "")
	requireStatus(t, rec, http.StatusNoContent)

	view = decode[service.EquityView](t, s.do(http.MethodGet, base+"/equity", alice, ""))
	require.NotNil(t, view.Current)
	assert.Equal(t, scenarioID, view.Current.ID)

	rec = s.do(http.MethodPatch, base+"/equity-scenarios/"+scenarioID, alice, `{"note":"too late"}`)
	requireStatus(t, rec, http.StatusConflict)
}

func TestBackendErrorsPassThrough(t *testing.T) {
	s := newTestServer(t)
	s.fake.FailWith(http.MethodGet, "/workspaces/"+wsID+"/kpis", http.StatusForbidden)

	rec := s.do(http.MethodGet, "/api/v1/workspaces/"+wsID+"/kpis", alice, "")
	requireStatus(t, rec, http.StatusForbidden)
	problem := decode[ProblemDetails](t, rec)
	assert.Equal(t, "forced failure 403", problem.Detail)
	assert.Equal(t, ErrorTypeForbidden, problem.Type)

	rec = s.do(http.MethodGet, "/api/v1/workspaces/missing", alice, "")
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "workspace not found", decode[ProblemDetails](t, rec).Detail)
}

func TestBackendUnavailable(t *testing.T) {
	s := newTestServerWithBackend(t, testutil.NewFakeBackend(t), closedServerURL(t))

	rec := s.do(http.MethodGet, "/api/v1/workspaces/"+wsID+"/tasks", alice, "")
	requireStatus(t, rec, http.StatusBadGateway)
	assert.Equal(t, ErrorTypeUpstream, decode[ProblemDetails](t, rec).Type)
}

func TestDecisionsAndKPIs(t *testing.T) {
	s := newTestServer(t)
	base := "/api/v1/workspaces/" + wsID

	requireStatus(t, s.do(http.MethodPost, base+"/decisions", alice, `{"content":"Ship weekly","tag":"timeline"}`), http.StatusCreated)
	requireStatus(t, s.do(http.MethodPost, base+"/decisions", alice, `{"content":"","tag":"timeline"}`), http.StatusBadRequest)
	requireStatus(t, s.do(http.MethodGet, base+"/decisions?page=0", alice, ""), http.StatusBadRequest)

	rec := s.do(http.MethodGet, base+"/decisions?tag=timeline&limit=5", alice, "")
	requireStatus(t, rec, http.StatusOK)
	page := decode[service.DecisionPage](t, rec)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 5, page.Limit)

	rec = s.do(http.MethodPost, base+"/kpis", alice, `{"label":"Pilots signed","target_value":"3"}`)
	requireStatus(t, rec, http.StatusCreated)
	kpi := decode[domain.KPI](t, rec)

	rec = s.do(http.MethodPatch, base+"/kpis/"+kpi.ID, alice, `{"status":"finished"}`)
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "status", decode[ProblemDetails](t, rec).Errors[0].Field)

	rec = s.do(http.MethodPatch, base+"/kpis/"+kpi.ID, alice, `{"status":"in_progress"}`)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, domain.KPIInProgress, decode[domain.KPI](t, rec).Status)
}

func TestOverviewRoute(t *testing.T) {
	s := newTestServer(t)
	s.fake.AddWorkspace(domain.Workspace{ID: wsID, Title: "Acme", Stage: domain.StageMVP})

	rec := s.do(http.MethodGet, "/api/v1/workspaces/"+wsID+"/overview", alice, "")
	requireStatus(t, rec, http.StatusOK)
	overview := decode[map[string]any](t, rec)
	assert.Contains(t, overview, "milestones")
	assert.Contains(t, overview, "health")
}

func TestTeamRoutes(t *testing.T) {
	s := newTestServer(t)
	s.fake.AddParticipant(wsID, domain.Participant{UserID: alice, Role: domain.ParticipantFounder})
	s.fake.AddParticipant(wsID, domain.Participant{UserID: "user_adv", Role: domain.ParticipantAdvisor})
	base := "/api/v1/workspaces/" + wsID

	requireStatus(t, s.do(http.MethodGet, base+"/commitments", alice, ""), http.StatusOK)
	requireStatus(t, s.do(http.MethodPatch, base+"/participants/"+alice, alice, `{"weekly_commitment_hours":200}`), http.StatusBadRequest)
	requireStatus(t, s.do(http.MethodPatch, base+"/participants/"+alice, alice, `{"weekly_commitment_hours":30}`), http.StatusOK)
	requireStatus(t, s.do(http.MethodDelete, base+"/advisors/"+alice, alice, ""), http.StatusForbidden)
	requireStatus(t, s.do(http.MethodDelete, base+"/advisors/user_adv", alice, ""), http.StatusNoContent)

	rec := s.do(http.MethodPost, base+"/tasks", alice, `{"title":"Draft SAFE"}`)
	requireStatus(t, rec, http.StatusCreated)
	task := decode[domain.Task](t, rec)
	requireStatus(t, s.do(http.MethodPatch, base+"/tasks/"+task.ID, alice, `{"status":"done"}`), http.StatusOK)
	board := decode[service.TaskBoard](t, s.do(http.MethodGet, base+"/tasks", alice, ""))
	assert.Equal(t, 100, board.CompletionPercent)

	requireStatus(t, s.do(http.MethodPost, base+"/checkins", alice, `{"summary":"Good week","status":"on_track","progress_percent":101}`), http.StatusBadRequest)
	requireStatus(t, s.do(http.MethodPost, base+"/checkins", alice, `{"summary":"Good week","status":"on_track","progress_percent":80}`), http.StatusCreated)
	requireStatus(t, s.do(http.MethodGet, base+"/checkins?limit=abc", alice, ""), http.StatusBadRequest)

	rec = s.do(http.MethodGet, base+"/checkins?limit=4", alice, "")
	requireStatus(t, rec, http.StatusOK)
	view := decode[service.AccountabilityView](t, rec)
	assert.Equal(t, 4, view.Limit)
	assert.Len(t, view.Checkins, 1)
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentRoutes(t *testing.T) {
	s := newTestServer(t)
	base := "/api/v1/workspaces/" + wsID + "/documents"

	upload := func(filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, filename, content, fields)
		req := httptest.NewRequest(http.MethodPost, base, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(middleware.IdentityHeader, alice)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("plan.pdf", []byte("%PDF-1.7"), map[string]string{"category": "Product", "description": "roadmap"})
	requireStatus(t, rec, http.StatusCreated)
	doc := decode[domain.Document](t, rec)
	assert.Equal(t, domain.CategoryProduct, doc.Category)
	assert.Equal(t, int64(8), doc.SizeBytes)

	requireStatus(t, upload("x.txt", []byte("x"), map[string]string{"category": "Gossip"}), http.StatusBadRequest)
	requireStatus(t, upload("big.bin", make([]byte, 2048), nil), http.StatusRequestEntityTooLarge)

	docs := decode[[]domain.Document](t, s.do(http.MethodGet, base, alice, ""))
	require.Len(t, docs, 1)

	rec = s.do(http.MethodGet, base+"/"+doc.ID+"/download-url", alice, "")
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, decode[domain.DownloadURL](t, rec).URL, doc.ID)

	requireStatus(t, s.do(http.MethodDelete, base+"/"+doc.ID, alice, ""), http.StatusNoContent)
	requireStatus(t, s.do(http.MethodDelete, base+"/"+doc.ID, alice, ""), http.StatusNotFound)
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/v1/workspaces/"+wsID+"/documents", alice, `{}`)
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "file", decode[ProblemDetails](t, rec).Errors[0].Field)
}
