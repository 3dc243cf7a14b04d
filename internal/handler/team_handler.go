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

// TeamHandler handles the commitments, tasks and accountability tabs
type TeamHandler struct {
	commitmentService     *service.CommitmentService
	taskService           *service.TaskService
	accountabilityService *service.AccountabilityService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(commitmentService *service.CommitmentService, taskService *service.TaskService, accountabilityService *service.AccountabilityService) *TeamHandler {
	return &TeamHandler{
		commitmentService:     commitmentService,
		taskService:           taskService,
		accountabilityService: accountabilityService,
	}
}

// GetCommitments handles GET /api/v1/workspaces/:id/commitments
func (h *TeamHandler) GetCommitments(c echo.Context) error {
	sum, err := h.commitmentService.GetCommitments(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to load commitments")
	}
	return c.JSON(http.StatusOK, sum)
}

// UpdateCommitment handles PATCH /api/v1/workspaces/:id/participants/:userId
func (h *TeamHandler) UpdateCommitment(c echo.Context) error {
	var req domain.ParticipantUpdate
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	p, err := h.commitmentService.UpdateCommitment(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), c.Param("userId"), req)
	if err != nil {
		return respondError(c, err, "Failed to update commitment")
	}
	return c.JSON(http.StatusOK, p)
}

// RemoveAdvisor handles DELETE /api/v1/workspaces/:id/advisors/:userId
func (h *TeamHandler) RemoveAdvisor(c echo.Context) error {
	identity, workspaceID, userID := middleware.GetIdentity(c), c.Param("id"), c.Param("userId")
	if err := h.commitmentService.RemoveAdvisor(c.Request().Context(), identity, workspaceID, userID); err != nil {
		return respondError(c, err, "Failed to remove advisor")
	}

	log.Info().Str("user_id", identity).Str("workspace_id", workspaceID).Str("advisor_id", userID).Msg("Advisor removed")
	return c.NoContent(http.StatusNoContent)
}

// GetTasks handles GET /api/v1/workspaces/:id/tasks
func (h *TeamHandler) GetTasks(c echo.Context) error {
	board, err := h.taskService.GetBoard(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to load tasks")
	}
	return c.JSON(http.StatusOK, board)
}

// CreateTask handles POST /api/v1/workspaces/:id/tasks
func (h *TeamHandler) CreateTask(c echo.Context) error {
	var req domain.NewTask
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	t, err := h.taskService.CreateTask(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to create task")
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTaskStatus handles PATCH /api/v1/workspaces/:id/tasks/:taskId
func (h *TeamHandler) UpdateTaskStatus(c echo.Context) error {
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	t, err := h.taskService.UpdateTaskStatus(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), c.Param("taskId"), domain.TaskStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to update task")
	}
	return c.JSON(http.StatusOK, t)
}

// GetAccountability handles GET /api/v1/workspaces/:id/checkins?limit=
func (h *TeamHandler) GetAccountability(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return NewValidationError(c, "Invalid query", []ValidationError{
				{Field: "limit", Message: "Must be a positive integer"},
			})
		}
		limit = n
	}

	view, err := h.accountabilityService.GetAccountability(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), limit)
	if err != nil {
		return respondError(c, err, "Failed to load check-ins")
	}
	return c.JSON(http.StatusOK, view)
}

// CreateCheckin handles POST /api/v1/workspaces/:id/checkins
func (h *TeamHandler) CreateCheckin(c echo.Context) error {
	var req domain.NewCheckin
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	ch, err := h.accountabilityService.CreateCheckin(c.Request().Context(), middleware.GetIdentity(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to record check-in")
	}
	return c.JSON(http.StatusCreated, ch)
}
