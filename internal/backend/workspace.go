package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cofoundry/gateway/internal/domain"
)

// GetWorkspace handles GET /workspaces/{id}
func (c *Client) GetWorkspace(ctx context.Context, identity, workspaceID string) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID), nil, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// UpdateWorkspace handles PATCH /workspaces/{id}
func (c *Client) UpdateWorkspace(ctx context.Context, identity, workspaceID string, update domain.WorkspaceUpdate) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := c.doJSON(ctx, identity, http.MethodPatch, workspacePath(workspaceID), nil, update, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// DecisionPage is one page of the decision log
type DecisionPage struct {
	Decisions []domain.Decision `json:"decisions"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

// ListDecisions handles GET /workspaces/{id}/decisions
func (c *Client) ListDecisions(ctx context.Context, identity, workspaceID string, q domain.DecisionQuery) (*DecisionPage, error) {
	q = q.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Tag != "" {
		query.Set("tag", string(q.Tag))
	}

	var page DecisionPage
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "decisions"), query, &page); err != nil {
		return nil, err
	}
	if page.Decisions == nil {
		page.Decisions = []domain.Decision{}
	}
	return &page, nil
}

// CreateDecision handles POST /workspaces/{id}/decisions
func (c *Client) CreateDecision(ctx context.Context, identity, workspaceID string, in domain.NewDecision) (*domain.Decision, error) {
	var d domain.Decision
	if err := c.doJSON(ctx, identity, http.MethodPost, workspacePath(workspaceID, "decisions"), nil, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListRoles handles GET /workspaces/{id}/roles
func (c *Client) ListRoles(ctx context.Context, identity, workspaceID string) ([]domain.Role, error) {
	roles := []domain.Role{}
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "roles"), nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// UpsertRole handles PUT /workspaces/{id}/roles/{userId}
func (c *Client) UpsertRole(ctx context.Context, identity, workspaceID, userID string, in domain.RoleInput) (*domain.Role, error) {
	var r domain.Role
	if err := c.doJSON(ctx, identity, http.MethodPut, workspacePath(workspaceID, "roles", userID), nil, in, &r); err != nil {
		return nil, err
	}
	if r.UserID == "" {
		r.UserID = userID
	}
	return &r, nil
}

// ListKPIs handles GET /workspaces/{id}/kpis
func (c *Client) ListKPIs(ctx context.Context, identity, workspaceID string) ([]domain.KPI, error) {
	kpis := []domain.KPI{}
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "kpis"), nil, &kpis); err != nil {
		return nil, err
	}
	return kpis, nil
}

// CreateKPI handles POST /workspaces/{id}/kpis
func (c *Client) CreateKPI(ctx context.Context, identity, workspaceID string, in domain.NewKPI) (*domain.KPI, error) {
	var k domain.KPI
	if err := c.doJSON(ctx, identity, http.MethodPost, workspacePath(workspaceID, "kpis"), nil, in, &k); err != nil {
		return nil, err
	}
	return &k, nil
}

// UpdateKPIStatus handles PATCH /workspaces/kpis/{id}
func (c *Client) UpdateKPIStatus(ctx context.Context, identity, kpiID string, status domain.KPIStatus) (*domain.KPI, error) {
	var k domain.KPI
	body := map[string]domain.KPIStatus{"status": status}
	if err := c.doJSON(ctx, identity, http.MethodPatch, "/workspaces/kpis/"+url.PathEscape(kpiID), nil, body, &k); err != nil {
		return nil, err
	}
	return &k, nil
}

// ListCheckins handles GET /workspaces/{id}/checkins
func (c *Client) ListCheckins(ctx context.Context, identity, workspaceID string, limit int) ([]domain.Checkin, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	checkins := []domain.Checkin{}
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "checkins"), query, &checkins); err != nil {
		return nil, err
	}
	return checkins, nil
}

// CreateCheckin handles POST /workspaces/{id}/checkins
func (c *Client) CreateCheckin(ctx context.Context, identity, workspaceID string, in domain.NewCheckin) (*domain.Checkin, error) {
	var ch domain.Checkin
	if err := c.doJSON(ctx, identity, http.MethodPost, workspacePath(workspaceID, "checkins"), nil, in, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// ListParticipants handles GET /workspaces/{id}/participants
func (c *Client) ListParticipants(ctx context.Context, identity, workspaceID string) ([]domain.Participant, error) {
	participants := []domain.Participant{}
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "participants"), nil, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// UpdateParticipant handles PATCH /workspaces/{id}/participants/{userId}
func (c *Client) UpdateParticipant(ctx context.Context, identity, workspaceID, userID string, update domain.ParticipantUpdate) (*domain.Participant, error) {
	var p domain.Participant
	if err := c.doJSON(ctx, identity, http.MethodPatch, workspacePath(workspaceID, "participants", userID), nil, update, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}

// RemoveAdvisor handles DELETE /workspaces/{id}/advisors/{userId}
func (c *Client) RemoveAdvisor(ctx context.Context, identity, workspaceID, userID string) error {
	return c.doJSON(ctx, identity, http.MethodDelete, workspacePath(workspaceID, "advisors", userID), nil, nil, nil)
}

// ListTasks handles GET /workspaces/{id}/tasks
func (c *Client) ListTasks(ctx context.Context, identity, workspaceID string) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "tasks"), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask handles POST /workspaces/{id}/tasks
func (c *Client) CreateTask(ctx context.Context, identity, workspaceID string, in domain.NewTask) (*domain.Task, error) {
	var t domain.Task
	if err := c.doJSON(ctx, identity, http.MethodPost, workspacePath(workspaceID, "tasks"), nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTaskStatus handles PATCH /workspaces/tasks/{id}
func (c *Client) UpdateTaskStatus(ctx context.Context, identity, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	var t domain.Task
	body := map[string]domain.TaskStatus{"status": status}
	if err := c.doJSON(ctx, identity, http.MethodPatch, "/workspaces/tasks/"+url.PathEscape(taskID), nil, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
