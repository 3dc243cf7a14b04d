package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cofoundry/gateway/internal/domain"
)

// GetEquity handles GET /workspaces/{id}/equity
func (c *Client) GetEquity(ctx context.Context, identity, workspaceID string) (*domain.Equity, error) {
	var eq domain.Equity
	if err := c.getJSON(ctx, identity, workspacePath(workspaceID, "equity"), nil, &eq); err != nil {
		return nil, err
	}
	if eq.Scenarios == nil {
		eq.Scenarios = []domain.EquityScenario{}
	}
	return &eq, nil
}

// CreateScenario handles POST /workspaces/{id}/equity-scenarios
func (c *Client) CreateScenario(ctx context.Context, identity, workspaceID string, in domain.NewScenario) (*domain.EquityScenario, error) {
	var s domain.EquityScenario
	if err := c.doJSON(ctx, identity, http.MethodPost, workspacePath(workspaceID, "equity-scenarios"), nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetCurrentScenario handles POST /workspaces/{id}/equity-scenarios/{sid}/set-current
func (c *Client) SetCurrentScenario(ctx context.Context, identity, workspaceID, scenarioID string) error {
	return c.doJSON(ctx, identity, http.MethodPost, workspacePath(workspaceID, "equity-scenarios", scenarioID, "set-current"), nil, struct{}{}, nil)
}

// UpdateScenarioNote handles PATCH /workspaces/equity-scenarios/{sid}
func (c *Client) UpdateScenarioNote(ctx context.Context, identity, scenarioID, note string) error {
	body := map[string]string{"note": note}
	return c.doJSON(ctx, identity, http.MethodPatch, "/workspaces/equity-scenarios/"+url.PathEscape(scenarioID), nil, body, nil)
}

// ApproveApproval handles POST /approvals/{id}/approve
func (c *Client) ApproveApproval(ctx context.Context, identity, approvalID string) (*domain.Approval, error) {
	return c.decideApproval(ctx, identity, approvalID, "approve")
}

// RejectApproval handles POST /approvals/{id}/reject
func (c *Client) RejectApproval(ctx context.Context, identity, approvalID string) (*domain.Approval, error) {
	return c.decideApproval(ctx, identity, approvalID, "reject")
}

func (c *Client) decideApproval(ctx context.Context, identity, approvalID, action string) (*domain.Approval, error) {
	var a domain.Approval
	path := "/approvals/" + url.PathEscape(approvalID) + "/" + action
	if err := c.doJSON(ctx, identity, http.MethodPost, path, nil, struct{}{}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
