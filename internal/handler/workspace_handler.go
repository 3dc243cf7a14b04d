package handler

import (
	"net/http"
	"strconv"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WorkspaceHandler handles the overview, workspace, decisions and KPI routes
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	overviewService  *service.OverviewService
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService, overviewService *service.OverviewService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		overviewService:  overviewService,
	}
}

// GetOverview handles GET /api/v1/workspaces/:id/overview
func (h *WorkspaceHandler) GetOverview(c echo.Context) error {
	overview, err := h.overviewService.GetOverview(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to load overview")
	}
	return c.JSON(http.StatusOK, overview)
}

// GetWorkspace handles GET /api/v1/workspaces/:id
func (h *WorkspaceHandler) GetWorkspace(c echo.Context) error {
	ws, err := h.workspaceService.GetWorkspace(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to load workspace")
	}
	return c.JSON(http.StatusOK, ws)
}

// UpdateWorkspace handles PATCH /api/v1/workspaces/:id
func (h *WorkspaceHandler) UpdateWorkspace(c echo.Context) error {
	var req domain.WorkspaceUpdate
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	identity, workspaceID := middleware.GetIdentity(c), c.Param("id")
	ws, err := h.workspaceService.UpdateWorkspace(c.Request().Context(), identity, workspaceID, req)
	if err != nil {
		return respondError(c, err, "Failed to update workspace")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Msg("Workspace updated")
	return c.JSON(http.StatusOK, ws)
}

// ListDecisions handles GET /api/v1/workspaces/:id/decisions?tag=&page=&limit=
func (h *WorkspaceHandler) ListDecisions(c echo.Context) error {
	q := domain.DecisionQuery{Tag: domain.DecisionTag(c.QueryParam("tag"))}
	var errs []ValidationError
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			errs = append(errs, ValidationError{Field: "page", Message: "Must be a positive integer"})
		}
		q.Page = page
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			errs = append(errs, ValidationError{Field: "limit", Message: "Must be a positive integer"})
		}
		q.Limit = limit
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query", errs)
	}

	page, err := h.workspaceService.ListDecisions(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), q)
	if err != nil {
		return respondError(c, err, "Failed to list decisions")
	}
	return c.JSON(http.StatusOK, page)
}

// CreateDecision handles POST /api/v1/workspaces/:id/decisions
func (h *WorkspaceHandler) CreateDecision(c echo.Context) error {
	var req domain.NewDecision
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	identity, workspaceID := middleware.GetIdentity(c), c.Param("id")
	d, err := h.workspaceService.CreateDecision(c.Request().Context(), identity, workspaceID, req)
	if err != nil {
		return respondError(c, err, "Failed to create decision")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Str("decision_id", d.ID).Msg("Decision recorded")
	return c.JSON(http.StatusCreated, d)
}

// ListKPIs handles GET /api/v1/workspaces/:id/kpis
func (h *WorkspaceHandler) ListKPIs(c echo.Context) error {
	kpis, err := h.workspaceService.ListKPIs(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to list KPIs")
	}
	return c.JSON(http.StatusOK, kpis)
}

// CreateKPI handles POST /api/v1/workspaces/:id/kpis
func (h *WorkspaceHandler) CreateKPI(c echo.Context) error {
	var req domain.NewKPI
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	k, err := h.workspaceService.CreateKPI(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to create KPI")
	}
	return c.JSON(http.StatusCreated, k)
}

// StatusRequest is the body of the status update routes
type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateKPIStatus handles PATCH /api/v1/workspaces/:id/kpis/:kpiId
func (h *WorkspaceHandler) UpdateKPIStatus(c echo.Context) error {
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	k, err := h.workspaceService.UpdateKPIStatus(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), c.Param("kpiId"), domain.KPIStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to update KPI")
	}
	return c.JSON(http.StatusOK, k)
}
