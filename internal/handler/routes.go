package handler

import (
	"net/http"

	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every route handler of the gateway
type Handlers struct {
	Session   *SessionHandler
	Workspace *WorkspaceHandler
	Equity    *EquityHandler
	Team      *TeamHandler
	Document  *DocumentHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API version 1
	api := e.Group("/api/v1")

	// WebSocket accepts query credentials since browsers cannot set headers on upgrade
	api.GET("/ws", h.WebSocket.HandleWS, authMiddleware.AuthenticateQuery())

	protected := api.Group("", authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))

	// Shell routes
	protected.GET("/session", h.Session.GetSession)
	protected.GET("/routes/tab", h.Session.GetTab)
	protected.POST("/notifications/:topic", h.Session.Notify)

	// Approvals
	protected.POST("/approvals/:id/approve", h.Equity.Approve)
	protected.POST("/approvals/:id/reject", h.Equity.Reject)

	// Workspace routes
	ws := protected.Group("/workspaces/:id")
	ws.GET("", h.Workspace.GetWorkspace)
	ws.PATCH("", h.Workspace.UpdateWorkspace)
	ws.GET("/overview", h.Workspace.GetOverview)
	ws.GET("/decisions", h.Workspace.ListDecisions)
	ws.POST("/decisions", h.Workspace.CreateDecision)
	ws.GET("/kpis", h.Workspace.ListKPIs)
	ws.POST("/kpis", h.Workspace.CreateKPI)
	ws.PATCH("/kpis/:kpiId", h.Workspace.UpdateKPIStatus)

	// Equity and roles
	ws.GET("/equity", h.Equity.GetEquity)
	ws.POST("/equity-scenarios", h.Equity.ProposeScenario)
	ws.PATCH("/equity-scenarios/:sid", h.Equity.UpdateNote)
	ws.POST("/equity-scenarios/:sid/set-current", h.Equity.SetCurrent)
	ws.GET("/roles", h.Equity.ListRoles)
	ws.PUT("/roles/:userId", h.Equity.UpsertRole)

	// Team
	ws.GET("/commitments", h.Team.GetCommitments)
	ws.PATCH("/participants/:userId", h.Team.UpdateCommitment)
	ws.DELETE("/advisors/:userId", h.Team.RemoveAdvisor)
	ws.GET("/tasks", h.Team.GetTasks)
	ws.POST("/tasks", h.Team.CreateTask)
	ws.PATCH("/tasks/:taskId", h.Team.UpdateTaskStatus)
	ws.GET("/checkins", h.Team.GetAccountability)
	ws.POST("/checkins", h.Team.CreateCheckin)

	// Documents
	ws.GET("/documents", h.Document.ListDocuments)
	ws.POST("/documents", h.Document.UploadDocument)
	ws.GET("/documents/:docId/download-url", h.Document.GetDownloadURL)
	ws.DELETE("/documents/:docId", h.Document.DeleteDocument)
}
