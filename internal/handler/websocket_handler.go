package handler

import (
	"context"
	"net/http"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/cofoundry/gateway/internal/middleware"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WorkspaceChecker confirms an identity may see a workspace
type WorkspaceChecker interface {
	GetWorkspace(ctx context.Context, identity, workspaceID string) (*domain.Workspace, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *events.Hub
	workspaces     WorkspaceChecker
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *events.Hub, workspaces WorkspaceChecker, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		workspaces:     workspaces,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /api/v1/ws.
// The connection receives the caller's notifications and, with a
// workspace query parameter, that workspace's entity events.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	identity := middleware.GetIdentity(c)
	if identity == "" {
		return NewUnauthorizedError(c, "Identity required")
	}

	scopes := []string{events.UserScope(identity)}
	if workspaceID := c.QueryParam("workspace"); workspaceID != "" {
		if _, err := h.workspaces.GetWorkspace(c.Request().Context(), identity, workspaceID); err != nil {
			log.Debug().Err(err).Str("user_id", identity).Str("workspace_id", workspaceID).Msg("WebSocket connection rejected: workspace not accessible")
			return respondError(c, err, "Failed to check workspace")
		}
		scopes = append(scopes, events.WorkspaceScope(workspaceID))
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	// Create client and register with hub
	client := events.NewClient(conn, h.hub, scopes...)
	h.hub.Register(client)

	log.Info().
		Str("user_id", identity).
		Strs("scopes", scopes).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump()

	return nil
}
