package service

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/store"
)

// DecisionPage is the decisions tab payload
type DecisionPage struct {
	Decisions []domain.Decision  `json:"decisions"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
	Tag       domain.DecisionTag `json:"tag,omitempty"`
}

// WorkspaceService handles the workspace record, decisions and KPIs
type WorkspaceService struct {
	registry *store.Registry
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(registry *store.Registry) *WorkspaceService {
	return &WorkspaceService{registry: registry}
}

// GetWorkspace fetches the workspace record
func (s *WorkspaceService) GetWorkspace(ctx context.Context, identity, workspaceID string) (*domain.Workspace, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := sess.Workspace.Load(ctx); err != nil {
		return nil, err
	}
	return sess.Workspace.Workspace(), nil
}

// UpdateWorkspace patches title and stage
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, identity, workspaceID string, update domain.WorkspaceUpdate) (*domain.Workspace, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Workspace.Update(ctx, update)
}

// ListDecisions fetches one filtered page of decisions
func (s *WorkspaceService) ListDecisions(ctx context.Context, identity, workspaceID string, q domain.DecisionQuery) (*DecisionPage, error) {
	if q.Tag != "" && !q.Tag.Valid() {
		return nil, domain.ErrInvalidTag
	}
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}

	q = q.Normalize()
	page, err := sess.Decisions.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	return &DecisionPage{
		Decisions: page.Decisions,
		Total:     page.Total,
		Page:      q.Page,
		Limit:     q.Limit,
		Tag:       q.Tag,
	}, nil
}

// CreateDecision records a decision
func (s *WorkspaceService) CreateDecision(ctx context.Context, identity, workspaceID string, in domain.NewDecision) (*domain.Decision, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Decisions.Create(ctx, in)
}

// ListKPIs fetches every KPI of the workspace
func (s *WorkspaceService) ListKPIs(ctx context.Context, identity, workspaceID string) ([]domain.KPI, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := sess.KPIs.Load(ctx); err != nil {
		return nil, err
	}
	return sess.KPIs.KPIs(), nil
}

// CreateKPI adds a KPI
func (s *WorkspaceService) CreateKPI(ctx context.Context, identity, workspaceID string, in domain.NewKPI) (*domain.KPI, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.KPIs.Create(ctx, in)
}

// UpdateKPIStatus moves a KPI to status
func (s *WorkspaceService) UpdateKPIStatus(ctx context.Context, identity, workspaceID, kpiID string, status domain.KPIStatus) (*domain.KPI, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.KPIs.UpdateStatus(ctx, kpiID, status)
}

// ListRoles fetches every role of the workspace
func (s *WorkspaceService) ListRoles(ctx context.Context, identity, workspaceID string) ([]domain.Role, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := sess.Roles.Load(ctx); err != nil {
		return nil, err
	}
	return sess.Roles.Roles(), nil
}
