package handler

import (
	"net/http"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// EquityHandler handles equity scenarios, approvals and roles
type EquityHandler struct {
	equityService    *service.EquityService
	workspaceService *service.WorkspaceService
}

// NewEquityHandler creates a new EquityHandler
func NewEquityHandler(equityService *service.EquityService, workspaceService *service.WorkspaceService) *EquityHandler {
	return &EquityHandler{
		equityService:    equityService,
		workspaceService: workspaceService,
	}
}

// GetEquity handles GET /api/v1/workspaces/:id/equity
func (h *EquityHandler) GetEquity(c echo.Context) error {
	view, err := h.equityService.GetEquityView(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to load equity")
	}
	return c.JSON(http.StatusOK, view)
}

// ProposeScenario handles POST /api/v1/workspaces/:id/equity-scenarios
func (h *EquityHandler) ProposeScenario(c echo.Context) error {
	var req domain.NewScenario
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", []ValidationError{
			{Field: "data.users", Message: "Percent must be a number"},
		})
	}

	identity, workspaceID := middleware.GetIdentity(c), c.Param("id")
	s, err := h.equityService.ProposeScenario(c.Request().Context(), identity, workspaceID, req)
	if err != nil {
		return respondError(c, err, "Failed to propose scenario")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Str("scenario_id", s.ID).Msg("Equity scenario proposed")
	return c.JSON(http.StatusCreated, s)
}

// SetCurrent handles POST /api/v1/workspaces/:id/equity-scenarios/:sid/set-current
func (h *EquityHandler) SetCurrent(c echo.Context) error {
	identity, workspaceID, scenarioID := middleware.GetIdentity(c), c.Param("id"), c.Param("sid")
	if err := h.equityService.SetCurrent(c.Request().Context(), identity, workspaceID, scenarioID); err != nil {
		return respondError(c, err, "Failed to set current scenario")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Str("scenario_id", scenarioID).Msg("Equity scenario set current")
	return c.NoContent(http.StatusNoContent)
}

// NoteRequest is the body of the scenario note route
type NoteRequest struct {
	Note string `json:"note"`
}

// UpdateNote handles PATCH /api/v1/workspaces/:id/equity-scenarios/:sid
func (h *EquityHandler) UpdateNote(c echo.Context) error {
	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.equityService.UpdateNote(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), c.Param("sid"), req.Note); err != nil {
		return respondError(c, err, "Failed to update note")
	}
	return c.NoContent(http.StatusNoContent)
}

// Approve handles POST /api/v1/approvals/:id/approve?workspace=
func (h *EquityHandler) Approve(c echo.Context) error {
	return h.decide(c, true)
}

// Reject handles POST /api/v1/approvals/:id/reject?workspace=
func (h *EquityHandler) Reject(c echo.Context) error {
	return h.decide(c, false)
}

func (h *EquityHandler) decide(c echo.Context, approve bool) error {
	identity, approvalID := middleware.GetIdentity(c), c.Param("id")
	approval, err := h.equityService.Decide(c.Request().Context(), identity, c.QueryParam("workspace"), approvalID, approve)
	if err != nil {
		return respondError(c, err, "Failed to decide approval")
	}

	log.Info().Str("user_id", identity).Str("approval_id", approvalID).Bool("approved", approve).Msg("Approval decided")
	return c.JSON(http.StatusOK, approval)
}

// ListRoles handles GET /api/v1/workspaces/:id/roles
func (h *EquityHandler) ListRoles(c echo.Context) error {
	roles, err := h.workspaceService.ListRoles(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to list roles")
	}
	return c.JSON(http.StatusOK, roles)
}

// UpsertRole handles PUT /api/v1/workspaces/:id/roles/:userId
func (h *EquityHandler) UpsertRole(c echo.Context) error {
	var req domain.RoleInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	role, err := h.equityService.UpsertRole(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), c.Param("userId"), req)
	if err != nil {
		return respondError(c, err, "Failed to save role")
	}
	return c.JSON(http.StatusOK, role)
}
