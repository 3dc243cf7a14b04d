package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
)

// WorkspaceAPI is the backend surface WorkspaceStore needs
type WorkspaceAPI interface {
	GetWorkspace(ctx context.Context, identity, workspaceID string) (*domain.Workspace, error)
	UpdateWorkspace(ctx context.Context, identity, workspaceID string, update domain.WorkspaceUpdate) (*domain.Workspace, error)
}

// DecisionAPI is the backend surface DecisionStore needs
type DecisionAPI interface {
	ListDecisions(ctx context.Context, identity, workspaceID string, q domain.DecisionQuery) (*backend.DecisionPage, error)
	CreateDecision(ctx context.Context, identity, workspaceID string, in domain.NewDecision) (*domain.Decision, error)
}

// EquityAPI is the backend surface EquityStore needs
type EquityAPI interface {
	GetEquity(ctx context.Context, identity, workspaceID string) (*domain.Equity, error)
	CreateScenario(ctx context.Context, identity, workspaceID string, in domain.NewScenario) (*domain.EquityScenario, error)
	SetCurrentScenario(ctx context.Context, identity, workspaceID, scenarioID string) error
	UpdateScenarioNote(ctx context.Context, identity, scenarioID, note string) error
	ApproveApproval(ctx context.Context, identity, approvalID string) (*domain.Approval, error)
	RejectApproval(ctx context.Context, identity, approvalID string) (*domain.Approval, error)
}

// RoleAPI is the backend surface RoleStore needs
type RoleAPI interface {
	ListRoles(ctx context.Context, identity, workspaceID string) ([]domain.Role, error)
	UpsertRole(ctx context.Context, identity, workspaceID, userID string, in domain.RoleInput) (*domain.Role, error)
}

// KPIAPI is the backend surface KPIStore needs
type KPIAPI interface {
	ListKPIs(ctx context.Context, identity, workspaceID string) ([]domain.KPI, error)
	CreateKPI(ctx context.Context, identity, workspaceID string, in domain.NewKPI) (*domain.KPI, error)
	UpdateKPIStatus(ctx context.Context, identity, kpiID string, status domain.KPIStatus) (*domain.KPI, error)
}

// CheckinAPI is the backend surface CheckinStore needs
type CheckinAPI interface {
	ListCheckins(ctx context.Context, identity, workspaceID string, limit int) ([]domain.Checkin, error)
	CreateCheckin(ctx context.Context, identity, workspaceID string, in domain.NewCheckin) (*domain.Checkin, error)
}

// ParticipantAPI is the backend surface ParticipantStore needs
type ParticipantAPI interface {
	ListParticipants(ctx context.Context, identity, workspaceID string) ([]domain.Participant, error)
	UpdateParticipant(ctx context.Context, identity, workspaceID, userID string, update domain.ParticipantUpdate) (*domain.Participant, error)
	RemoveAdvisor(ctx context.Context, identity, workspaceID, userID string) error
}

// TaskAPI is the backend surface TaskStore needs
type TaskAPI interface {
	ListTasks(ctx context.Context, identity, workspaceID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, identity, workspaceID string, in domain.NewTask) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, identity, taskID string, status domain.TaskStatus) (*domain.Task, error)
}

// API is everything a Session needs from the backend
type API interface {
	WorkspaceAPI
	DecisionAPI
	EquityAPI
	RoleAPI
	KPIAPI
	CheckinAPI
	ParticipantAPI
	TaskAPI
}

// Ensure the HTTP client satisfies API
var _ API = (*backend.Client)(nil)
