package service

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ApprovalAPI decides approvals that are not tied to a loaded workspace
type ApprovalAPI interface {
	ApproveApproval(ctx context.Context, identity, approvalID string) (*domain.Approval, error)
	RejectApproval(ctx context.Context, identity, approvalID string) (*domain.Approval, error)
}

// ScenarioView is a scenario plus the actions the viewer may take on it
type ScenarioView struct {
	domain.EquityScenario
	TotalPercent  decimal.Decimal `json:"total_percent"`
	Editable      bool            `json:"editable"`
	CanSetCurrent bool            `json:"can_set_current"`
	CanDecide     bool            `json:"can_decide"`
}

// EquityView is the equity and roles tab payload
type EquityView struct {
	Current      *ScenarioView        `json:"current"`
	Scenarios    []ScenarioView       `json:"scenarios"`
	Roles        []domain.Role        `json:"roles"`
	Participants []domain.Participant `json:"participants"`
}

// EquityService handles the equity scenario approval flow and roles
type EquityService struct {
	registry  *store.Registry
	approvals ApprovalAPI
}

// NewEquityService creates a new EquityService
func NewEquityService(registry *store.Registry, approvals ApprovalAPI) *EquityService {
	return &EquityService{registry: registry, approvals: approvals}
}

// GetEquityView loads scenarios, roles and participants
func (s *EquityService) GetEquityView(ctx context.Context, identity, workspaceID string) (*EquityView, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Equity.Load(gctx) })
	g.Go(func() error { return sess.Roles.Load(gctx) })
	g.Go(func() error { return sess.Participants.Load(gctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildEquityView(identity, sess.Equity.Current(), sess.Equity.Scenarios(), sess.Roles.Roles(), sess.Participants.Participants()), nil
}

// BuildEquityView annotates newest-first scenarios with what identity may do
func BuildEquityView(identity string, current *domain.EquityScenario, scenarios []domain.EquityScenario, roles []domain.Role, participants []domain.Participant) *EquityView {
	view := &EquityView{
		Scenarios:    make([]ScenarioView, 0, len(scenarios)),
		Roles:        nonNil(roles),
		Participants: nonNil(participants),
	}
	for i, sc := range scenarios {
		view.Scenarios = append(view.Scenarios, ScenarioView{
			EquityScenario: sc,
			TotalPercent:   sc.Data.TotalPercent(),
			Editable:       domain.ScenarioEditable(scenarios, i),
			CanSetCurrent:  sc.CanSetCurrent(),
			CanDecide:      canDecide(identity, sc),
		})
	}
	if current != nil {
		view.Current = &ScenarioView{
			EquityScenario: *current,
			TotalPercent:   current.Data.TotalPercent(),
		}
	}
	return view
}

// canDecide reports whether identity is the counter-party of a pending approval
func canDecide(identity string, sc domain.EquityScenario) bool {
	a := sc.Approval
	if a == nil || a.Status != domain.ApprovalPending || sc.Status == domain.ScenarioCanceled {
		return false
	}
	return a.Proposer == nil || a.Proposer.ID != identity
}

// ProposeScenario validates the split and submits it for approval
func (s *EquityService) ProposeScenario(ctx context.Context, identity, workspaceID string, in domain.NewScenario) (*domain.EquityScenario, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Equity.CreateScenario(ctx, in)
}

// SetCurrent promotes a scenario. The backend rejects unapproved ones.
func (s *EquityService) SetCurrent(ctx context.Context, identity, workspaceID, scenarioID string) error {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return err
	}
	return sess.Equity.SetCurrent(ctx, scenarioID)
}

// UpdateNote edits the note of the newest scenario while it is still open
func (s *EquityService) UpdateNote(ctx context.Context, identity, workspaceID, scenarioID, note string) error {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return err
	}
	if err := sess.Equity.Load(ctx); err != nil {
		return err
	}

	scenarios := sess.Equity.Scenarios()
	for i := range scenarios {
		if scenarios[i].ID != scenarioID {
			continue
		}
		if !domain.ScenarioEditable(scenarios, i) {
			return domain.ErrScenarioLocked
		}
		return sess.Equity.UpdateNote(ctx, scenarioID, note)
	}
	return domain.ErrNotFound
}

// Decide approves or rejects an approval. With a workspace the equity view is
// refreshed afterwards.
func (s *EquityService) Decide(ctx context.Context, identity, workspaceID, approvalID string, approve bool) (*domain.Approval, error) {
	if approvalID == "" {
		return nil, domain.ErrInvalidInput
	}
	if workspaceID != "" {
		sess, err := s.registry.Session(identity, workspaceID)
		if err != nil {
			return nil, err
		}
		if approve {
			return sess.Equity.Approve(ctx, approvalID)
		}
		return sess.Equity.Reject(ctx, approvalID)
	}

	if identity == "" {
		return nil, domain.ErrIdentityRequired
	}
	if approve {
		return s.approvals.ApproveApproval(ctx, identity, approvalID)
	}
	return s.approvals.RejectApproval(ctx, identity, approvalID)
}

// UpsertRole sets the role of one participant
func (s *EquityService) UpsertRole(ctx context.Context, identity, workspaceID, userID string, in domain.RoleInput) (*domain.Role, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Roles.Upsert(ctx, userID, in)
}
