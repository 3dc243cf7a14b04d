package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/routing"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/labstack/echo/v4"
)

// maxNotificationBytes bounds a relayed notification payload
const maxNotificationBytes = 16 << 10

// SessionHandler serves the app shell: role resolution, tab routing and
// cross-page notifications
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// GetSession handles GET /api/v1/session?path=
func (h *SessionHandler) GetSession(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		path = routing.HomePath
	}

	view, err := h.sessionService.GetSession(c.Request().Context(), middleware.GetIdentity(c), path)
	if err != nil {
		return respondError(c, err, "Failed to resolve session")
	}
	if claims := middleware.GetCustomClaims(c); claims != nil {
		view.User = &domain.UserRef{ID: view.Identity, Name: claims.Name, Email: claims.Email}
	}
	return c.JSON(http.StatusOK, view)
}

// TabResponse describes the workspace tab for a path
type TabResponse struct {
	WorkspaceID string      `json:"workspace_id"`
	Tab         routing.Tab `json:"tab"`
	Path        string      `json:"path"`
	Tabs        []TabLink   `json:"tabs"`
}

// TabLink is one entry of the workspace tab bar
type TabLink struct {
	Index int    `json:"index"`
	Slug  string `json:"slug"`
	Path  string `json:"path"`
}

// GetTab handles GET /api/v1/routes/tab?path=
func (h *SessionHandler) GetTab(c echo.Context) error {
	route, ok := routing.ParseWorkspacePath(c.QueryParam("path"))
	if !ok {
		return NewValidationError(c, "Not a workspace path", []ValidationError{
			{Field: "path", Message: "Must start with " + routing.WorkspacePrefix + "/{id}"},
		})
	}

	links := make([]TabLink, len(routing.Tabs))
	for i, tab := range routing.Tabs {
		links[i] = TabLink{Index: tab.Index, Slug: tab.Slug, Path: routing.TabPath(route.WorkspaceID, tab.Index)}
	}
	return c.JSON(http.StatusOK, TabResponse{
		WorkspaceID: route.WorkspaceID,
		Tab:         route.Tab,
		Path:        route.Path,
		Tabs:        links,
	})
}

// Notify handles POST /api/v1/notifications/:topic. The optional JSON body
// is relayed as the payload to every connection of the caller.
func (h *SessionHandler) Notify(c echo.Context) error {
	topic := events.Topic(c.Param("topic"))

	var payload json.RawMessage
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxNotificationBytes+1))
	if err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(body) > maxNotificationBytes {
		return NewTooLargeError(c, "Notification payload too large")
	}
	if len(body) > 0 {
		if !json.Valid(body) {
			return NewValidationError(c, "Invalid request body", nil)
		}
		payload = body
	}

	if err := h.sessionService.Notify(middleware.GetIdentity(c), topic, payload); err != nil {
		if !topic.Valid() {
			return NewValidationError(c, "Unknown notification topic", []ValidationError{
				{Field: "topic", Message: "Must be one of: projectCreated, interestAccepted, interestsViewed, creditsUpdated"},
			})
		}
		return respondError(c, err, "Failed to send notification")
	}
	return c.NoContent(http.StatusAccepted)
}
