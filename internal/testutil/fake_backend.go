package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RecordedRequest is a request observed by the FakeBackend
type RecordedRequest struct {
	Method      string
	Path        string
	Query       string
	Identity    string
	ContentType string
}

type fakeApproval struct {
	workspaceID string
	scenarioID  string
	approval    domain.Approval
}

// FakeBackend is an in-memory stand-in for the external REST API
type FakeBackend struct {
	Server *httptest.Server
	Now    func() time.Time

	mu              sync.Mutex
	workspaces      map[string]*domain.Workspace
	participants    map[string][]domain.Participant
	decisions       map[string][]domain.Decision
	scenarios       map[string][]domain.EquityScenario
	approvals       map[string]*fakeApproval
	roles           map[string][]domain.Role
	kpis            map[string][]domain.KPI
	checkins        map[string][]domain.Checkin
	tasks           map[string][]domain.Task
	documents       map[string][]domain.Document
	onboarding      map[string]*domain.OnboardingStatus
	advisorProfiles map[string]domain.AdvisorProfile
	advisorDelay    map[string]int
	plans           map[string]*domain.Plan
	failures        map[string]int
	delays          map[string]chan struct{}
	requests        []RecordedRequest
}

// NewFakeBackend starts a FakeBackend that is shut down when the test ends
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		Now:             time.Now,
		workspaces:      make(map[string]*domain.Workspace),
		participants:    make(map[string][]domain.Participant),
		decisions:       make(map[string][]domain.Decision),
		scenarios:       make(map[string][]domain.EquityScenario),
		approvals:       make(map[string]*fakeApproval),
		roles:           make(map[string][]domain.Role),
		kpis:            make(map[string][]domain.KPI),
		checkins:        make(map[string][]domain.Checkin),
		tasks:           make(map[string][]domain.Task),
		documents:       make(map[string][]domain.Document),
		onboarding:      make(map[string]*domain.OnboardingStatus),
		advisorProfiles: make(map[string]domain.AdvisorProfile),
		advisorDelay:    make(map[string]int),
		plans:           make(map[string]*domain.Plan),
		failures:        make(map[string]int),
		delays:          make(map[string]chan struct{}),
	}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake backend
func (f *FakeBackend) URL() string {
	return f.Server.URL
}

// AddWorkspace seeds a workspace
func (f *FakeBackend) AddWorkspace(ws domain.Workspace) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workspaces[ws.ID] = &ws
}

// AddParticipant seeds a participant in a workspace
func (f *FakeBackend) AddParticipant(workspaceID string, p domain.Participant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants[workspaceID] = append(f.participants[workspaceID], p)
}

// AddDecision seeds a decision
func (f *FakeBackend) AddDecision(workspaceID string, d domain.Decision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions[workspaceID] = append(f.decisions[workspaceID], d)
}

// AddScenario seeds an equity scenario
func (f *FakeBackend) AddScenario(workspaceID string, s domain.EquityScenario) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scenarios[workspaceID] = append(f.scenarios[workspaceID], s)
}

// AddRole seeds a role
func (f *FakeBackend) AddRole(workspaceID string, r domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[workspaceID] = append(f.roles[workspaceID], r)
}

// AddKPI seeds a KPI
func (f *FakeBackend) AddKPI(workspaceID string, k domain.KPI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kpis[workspaceID] = append(f.kpis[workspaceID], k)
}

// AddCheckin seeds a check-in
func (f *FakeBackend) AddCheckin(workspaceID string, c domain.Checkin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkins[workspaceID] = append(f.checkins[workspaceID], c)
}

// AddTask seeds a task
func (f *FakeBackend) AddTask(workspaceID string, t domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[workspaceID] = append(f.tasks[workspaceID], t)
}

// AddDocument seeds a document
func (f *FakeBackend) AddDocument(workspaceID string, d domain.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents[workspaceID] = append(f.documents[workspaceID], d)
}

// SetOnboarding sets the founder onboarding status for identity
func (f *FakeBackend) SetOnboarding(identity string, status domain.OnboardingStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onboarding[identity] = &status
}

// SetAdvisorProfile sets the advisor profile for identity. The profile only
// becomes visible after hiddenReads reads, simulating replica lag.
func (f *FakeBackend) SetAdvisorProfile(identity string, profile domain.AdvisorProfile, hiddenReads int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advisorProfiles[identity] = profile
	f.advisorDelay[identity] = hiddenReads
}

// SetPlan sets the billing plan for identity
func (f *FakeBackend) SetPlan(identity string, plan domain.Plan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[identity] = &plan
}

// FailWith forces every request matching method and path to return status
func (f *FakeBackend) FailWith(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// ClearFailures removes all forced failures
func (f *FakeBackend) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = make(map[string]int)
}

// Hold blocks the next requests matching method and path until the returned
// release function is called
func (f *FakeBackend) Hold(method, path string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.delays[method+" "+path] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.delays[method+" "+path] == ch {
				delete(f.delays, method+" "+path)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns a copy of every request observed so far
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// CountRequests returns how many requests matched method and path
func (f *FakeBackend) CountRequests(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Scenarios returns the stored scenarios of a workspace
func (f *FakeBackend) Scenarios(workspaceID string) []domain.EquityScenario {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EquityScenario, len(f.scenarios[workspaceID]))
	copy(out, f.scenarios[workspaceID])
	return out
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func (f *FakeBackend) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		identity := req.Header.Get("X-Clerk-User-Id")
		key := req.Method + " " + req.URL.Path

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:      req.Method,
			Path:        req.URL.Path,
			Query:       req.URL.RawQuery,
			Identity:    identity,
			ContentType: req.Header.Get("Content-Type"),
		})
		status, failing := f.failures[key]
		hold := f.delays[key]
		f.mu.Unlock()

		if hold != nil {
			<-hold
		}
		if identity == "" {
			return fail(c, http.StatusUnauthorized, "missing identity")
		}
		if failing {
			return fail(c, status, fmt.Sprintf("forced failure %d", status))
		}
		return next(c)
	}
}

func (f *FakeBackend) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(f.middleware)

	e.GET("/workspaces/:id", f.getWorkspace)
	e.PATCH("/workspaces/:id", f.patchWorkspace)
	e.GET("/workspaces/:id/decisions", f.listDecisions)
	e.POST("/workspaces/:id/decisions", f.createDecision)
	e.GET("/workspaces/:id/equity", f.getEquity)
	e.POST("/workspaces/:id/equity-scenarios", f.createScenario)
	e.POST("/workspaces/:id/equity-scenarios/:sid/set-current", f.setCurrent)
	e.PATCH("/workspaces/equity-scenarios/:sid", f.patchScenario)
	e.GET("/workspaces/:id/roles", f.listRoles)
	e.PUT("/workspaces/:id/roles/:userId", f.putRole)
	e.GET("/workspaces/:id/kpis", f.listKPIs)
	e.POST("/workspaces/:id/kpis", f.createKPI)
	e.PATCH("/workspaces/kpis/:kpiId", f.patchKPI)
	e.GET("/workspaces/:id/checkins", f.listCheckins)
	e.POST("/workspaces/:id/checkins", f.createCheckin)
	e.GET("/workspaces/:id/participants", f.listParticipants)
	e.PATCH("/workspaces/:id/participants/:userId", f.patchParticipant)
	e.DELETE("/workspaces/:id/advisors/:userId", f.deleteAdvisor)
	e.GET("/workspaces/:id/tasks", f.listTasks)
	e.POST("/workspaces/:id/tasks", f.createTask)
	e.PATCH("/workspaces/tasks/:taskId", f.patchTask)
	e.GET("/workspaces/:id/documents", f.listDocuments)
	e.POST("/workspaces/:id/documents", f.uploadDocument)
	e.GET("/workspaces/:id/documents/:docId/download-url", f.documentURL)
	e.DELETE("/workspaces/:id/documents/:docId", f.deleteDocument)
	e.POST("/approvals/:aid/approve", f.decideApproval(domain.ApprovalApproved))
	e.POST("/approvals/:aid/reject", f.decideApproval(domain.ApprovalRejected))
	e.GET("/founders/onboarding-status", f.onboardingStatus)
	e.GET("/advisors/profile", f.advisorProfile)
	e.GET("/billing/my-plan", f.myPlan)

	return e
}

func (f *FakeBackend) getWorkspace(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.workspaces[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "workspace not found")
	}
	return c.JSON(http.StatusOK, ws)
}

func (f *FakeBackend) patchWorkspace(c echo.Context) error {
	var update domain.WorkspaceUpdate
	if err := c.Bind(&update); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.workspaces[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "workspace not found")
	}
	if update.Title != nil {
		ws.Title = *update.Title
	}
	if update.Stage != nil {
		ws.Stage = *update.Stage
	}
	ws.UpdatedAt = f.Now()
	return c.JSON(http.StatusOK, ws)
}

func (f *FakeBackend) listDecisions(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := domain.DecisionTag(c.QueryParam("tag"))
	out := []domain.Decision{}
	for _, d := range f.decisions[c.Param("id")] {
		if tag == "" || d.Tag == tag {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	page, limit := 1, 20
	fmt.Sscan(c.QueryParam("page"), &page)
	fmt.Sscan(c.QueryParam("limit"), &limit)
	total := len(out)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, map[string]any{
		"decisions": out[start:end],
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (f *FakeBackend) createDecision(c echo.Context) error {
	var in domain.NewDecision
	if err := c.Bind(&in); err != nil || in.Content == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID := c.Param("id")
	for i := range f.decisions[wsID] {
		if f.decisions[wsID][i].Tag == in.Tag {
			f.decisions[wsID][i].IsActive = false
		}
	}
	d := domain.Decision{
		ID:        uuid.NewString(),
		Content:   in.Content,
		Tag:       in.Tag,
		IsActive:  true,
		Creator:   &domain.UserRef{ID: c.Request().Header.Get("X-Clerk-User-Id")},
		CreatedAt: f.Now(),
	}
	f.decisions[wsID] = append(f.decisions[wsID], d)
	return c.JSON(http.StatusCreated, d)
}

func (f *FakeBackend) getEquity(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	scenarios := make([]domain.EquityScenario, len(f.scenarios[c.Param("id")]))
	copy(scenarios, f.scenarios[c.Param("id")])
	domain.SortScenariosNewestFirst(scenarios)

	eq := domain.Equity{Scenarios: scenarios}
	for i := range scenarios {
		if scenarios[i].IsCurrent {
			cur := scenarios[i]
			eq.Current = &cur
		}
	}
	return c.JSON(http.StatusOK, eq)
}

func (f *FakeBackend) createScenario(c echo.Context) error {
	var in domain.NewScenario
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID := c.Param("id")
	s := domain.EquityScenario{
		ID:             uuid.NewString(),
		Label:          in.Label,
		Data:           in.Data,
		ApprovalStatus: domain.ApprovalPending,
		Status:         domain.ScenarioActive,
		Note:           in.Note,
		CreatedAt:      f.Now(),
	}
	approval := domain.Approval{
		ID:         uuid.NewString(),
		EntityType: "equity_scenario",
		EntityID:   s.ID,
		Proposer:   &domain.UserRef{ID: c.Request().Header.Get("X-Clerk-User-Id")},
		Status:     domain.ApprovalPending,
	}
	s.Approval = &approval
	f.approvals[approval.ID] = &fakeApproval{workspaceID: wsID, scenarioID: s.ID, approval: approval}
	f.scenarios[wsID] = append(f.scenarios[wsID], s)
	return c.JSON(http.StatusCreated, s)
}

func (f *FakeBackend) setCurrent(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID, sid := c.Param("id"), c.Param("sid")
	list := f.scenarios[wsID]
	idx := -1
	for i := range list {
		if list[i].ID == sid {
			idx = i
		}
	}
	if idx < 0 {
		return fail(c, http.StatusNotFound, "scenario not found")
	}
	if list[idx].ApprovalStatus != domain.ApprovalApproved {
		return fail(c, http.StatusConflict, "scenario must be approved first")
	}
	for i := range list {
		list[i].IsCurrent = i == idx
	}
	return c.JSON(http.StatusOK, list[idx])
}

func (f *FakeBackend) patchScenario(c echo.Context) error {
	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for wsID, list := range f.scenarios {
		for i := range list {
			if list[i].ID == c.Param("sid") {
				f.scenarios[wsID][i].Note = body.Note
				return c.JSON(http.StatusOK, f.scenarios[wsID][i])
			}
		}
	}
	return fail(c, http.StatusNotFound, "scenario not found")
}

func (f *FakeBackend) decideApproval(status domain.ApprovalStatus) echo.HandlerFunc {
	return func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		a, ok := f.approvals[c.Param("aid")]
		if !ok {
			return fail(c, http.StatusNotFound, "approval not found")
		}
		if a.approval.Proposer != nil && a.approval.Proposer.ID == c.Request().Header.Get("X-Clerk-User-Id") {
			return fail(c, http.StatusForbidden, "proposer cannot approve their own scenario")
		}
		a.approval.Status = status
		list := f.scenarios[a.workspaceID]
		for i := range list {
			if list[i].ID == a.scenarioID {
				list[i].ApprovalStatus = status
				approval := a.approval
				list[i].Approval = &approval
			}
		}
		return c.JSON(http.StatusOK, a.approval)
	}
}

func (f *FakeBackend) listRoles(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Role{}, f.roles[c.Param("id")]...)
	return c.JSON(http.StatusOK, out)
}

func (f *FakeBackend) putRole(c echo.Context) error {
	var in domain.RoleInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID, userID := c.Param("id"), c.Param("userId")
	r := domain.Role{UserID: userID, RoleTitle: in.RoleTitle, Responsibilities: in.Responsibilities}
	for i := range f.roles[wsID] {
		if f.roles[wsID][i].UserID == userID {
			f.roles[wsID][i] = r
			return c.JSON(http.StatusOK, r)
		}
	}
	f.roles[wsID] = append(f.roles[wsID], r)
	return c.JSON(http.StatusOK, r)
}

func (f *FakeBackend) listKPIs(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.KPI{}, f.kpis[c.Param("id")]...)
	return c.JSON(http.StatusOK, out)
}

func (f *FakeBackend) createKPI(c echo.Context) error {
	var in domain.NewKPI
	if err := c.Bind(&in); err != nil || in.Label == "" {
		return fail(c, http.StatusBadRequest, "label is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := domain.KPI{
		ID:          uuid.NewString(),
		Label:       in.Label,
		TargetValue: in.TargetValue,
		TargetDate:  in.TargetDate,
		OwnerUserID: in.OwnerUserID,
		Status:      domain.KPINotStarted,
		UpdatedAt:   f.Now(),
	}
	f.kpis[c.Param("id")] = append(f.kpis[c.Param("id")], k)
	return c.JSON(http.StatusCreated, k)
}

func (f *FakeBackend) patchKPI(c echo.Context) error {
	var body struct {
		Status domain.KPIStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for wsID := range f.kpis {
		for i := range f.kpis[wsID] {
			if f.kpis[wsID][i].ID == c.Param("kpiId") {
				f.kpis[wsID][i].Status = body.Status
				f.kpis[wsID][i].UpdatedAt = f.Now()
				return c.JSON(http.StatusOK, f.kpis[wsID][i])
			}
		}
	}
	return fail(c, http.StatusNotFound, "kpi not found")
}

func (f *FakeBackend) listCheckins(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Checkin{}, f.checkins[c.Param("id")]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := 0
	fmt.Sscan(c.QueryParam("limit"), &limit)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return c.JSON(http.StatusOK, out)
}

func (f *FakeBackend) createCheckin(c echo.Context) error {
	var in domain.NewCheckin
	if err := c.Bind(&in); err != nil || in.Summary == "" {
		return fail(c, http.StatusBadRequest, "summary is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	week := in.WeekStart
	if week == "" {
		week = now.AddDate(0, 0, -int(now.Weekday())).Format(time.DateOnly)
	}
	ch := domain.Checkin{
		ID:              uuid.NewString(),
		WeekStart:       week,
		Summary:         in.Summary,
		Status:          in.Status,
		ProgressPercent: in.ProgressPercent,
		Creator:         &domain.UserRef{ID: c.Request().Header.Get("X-Clerk-User-Id")},
		CreatedAt:       now,
	}
	f.checkins[c.Param("id")] = append(f.checkins[c.Param("id")], ch)
	return c.JSON(http.StatusCreated, ch)
}

func (f *FakeBackend) listParticipants(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Participant{}, f.participants[c.Param("id")]...)
	return c.JSON(http.StatusOK, out)
}

// patchParticipant mirrors the real update endpoint, which does not return
// the joined user record
func (f *FakeBackend) patchParticipant(c echo.Context) error {
	var update domain.ParticipantUpdate
	if err := c.Bind(&update); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID, userID := c.Param("id"), c.Param("userId")
	for i := range f.participants[wsID] {
		p := &f.participants[wsID][i]
		if p.UserID != userID {
			continue
		}
		if update.WeeklyCommitmentHours != nil {
			p.WeeklyCommitmentHours = update.WeeklyCommitmentHours
		}
		if update.Timezone != nil {
			p.Timezone = *update.Timezone
		}
		resp := *p
		resp.User = nil
		return c.JSON(http.StatusOK, resp)
	}
	return fail(c, http.StatusNotFound, "participant not found")
}

func (f *FakeBackend) deleteAdvisor(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID, userID := c.Param("id"), c.Param("userId")
	list := f.participants[wsID]
	for i := range list {
		if list[i].UserID == userID && list[i].Role == domain.ParticipantAdvisor {
			f.participants[wsID] = append(list[:i:i], list[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return fail(c, http.StatusNotFound, "advisor not found")
}

func (f *FakeBackend) listTasks(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Task{}, f.tasks[c.Param("id")]...)
	return c.JSON(http.StatusOK, out)
}

func (f *FakeBackend) createTask(c echo.Context) error {
	var in domain.NewTask
	if err := c.Bind(&in); err != nil || in.Title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	t := domain.Task{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Status:         domain.TaskTodo,
		AssigneeUserID: in.AssigneeUserID,
		DueDate:        in.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.tasks[c.Param("id")] = append(f.tasks[c.Param("id")], t)
	return c.JSON(http.StatusCreated, t)
}

func (f *FakeBackend) patchTask(c echo.Context) error {
	var body struct {
		Status domain.TaskStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for wsID := range f.tasks {
		for i := range f.tasks[wsID] {
			if f.tasks[wsID][i].ID == c.Param("taskId") {
				f.tasks[wsID][i].Status = body.Status
				f.tasks[wsID][i].UpdatedAt = f.Now()
				return c.JSON(http.StatusOK, f.tasks[wsID][i])
			}
		}
	}
	return fail(c, http.StatusNotFound, "task not found")
}

func (f *FakeBackend) listDocuments(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Document{}, f.documents[c.Param("id")]...)
	return c.JSON(http.StatusOK, out)
}

func (f *FakeBackend) uploadDocument(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()
	size, err := io.Copy(io.Discard, src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable file")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	doc := domain.Document{
		ID:               uuid.NewString(),
		OriginalFilename: fh.Filename,
		Category:         domain.DocumentCategory(c.FormValue("category")),
		Description:      c.FormValue("description"),
		SizeBytes:        size,
		CreatedAt:        f.Now(),
	}
	f.documents[c.Param("id")] = append(f.documents[c.Param("id")], doc)
	return c.JSON(http.StatusCreated, doc)
}

func (f *FakeBackend) documentURL(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.documents[c.Param("id")] {
		if d.ID == c.Param("docId") {
			return c.JSON(http.StatusOK, domain.DownloadURL{URL: "https://files.example.com/" + d.ID + "?sig=test"})
		}
	}
	return fail(c, http.StatusNotFound, "document not found")
}

func (f *FakeBackend) deleteDocument(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wsID := c.Param("id")
	list := f.documents[wsID]
	for i := range list {
		if list[i].ID == c.Param("docId") {
			f.documents[wsID] = append(list[:i:i], list[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return fail(c, http.StatusNotFound, "document not found")
}

func (f *FakeBackend) onboardingStatus(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.onboarding[c.Request().Header.Get("X-Clerk-User-Id")]
	if !ok {
		return c.JSON(http.StatusOK, domain.OnboardingStatus{})
	}
	return c.JSON(http.StatusOK, status)
}

func (f *FakeBackend) advisorProfile(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity := c.Request().Header.Get("X-Clerk-User-Id")
	profile, ok := f.advisorProfiles[identity]
	if !ok {
		return fail(c, http.StatusNotFound, "advisor profile not found")
	}
	if f.advisorDelay[identity] > 0 {
		f.advisorDelay[identity]--
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, profile)
}

func (f *FakeBackend) myPlan(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[c.Request().Header.Get("X-Clerk-User-Id")]
	if !ok {
		return c.JSON(http.StatusOK, domain.Plan{Plan: "free"})
	}
	return c.JSON(http.StatusOK, plan)
}
