package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/resolver"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/cofoundry/gateway/internal/store"
	"github.com/cofoundry/gateway/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	alice = "user_alice"
	bob   = "user_bob"
	wsID  = "ws-1"
)

var testAllowedOrigins = []string{"http://localhost:3000", "https://cofoundry.app"}

type testServer struct {
	e    *echo.Echo
	fake *testutil.FakeBackend
	hub  *events.Hub
}

// newTestServer wires the full gateway against a fake backend
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fake := testutil.NewFakeBackend(t)
	return newTestServerWithBackend(t, fake, fake.URL())
}

func newTestServerWithBackend(t *testing.T, fake *testutil.FakeBackend, baseURL string) *testServer {
	t.Helper()
	return newTestServerWithAuth(t, fake, baseURL, middleware.NewAuthMiddleware())
}

func newTestServerWithAuth(t *testing.T, fake *testutil.FakeBackend, baseURL string, auth *middleware.AuthMiddleware) *testServer {
	t.Helper()
	logger := zerolog.Nop()
	client := backend.NewClient(baseURL, 5*time.Second, logger)
	hub := events.NewHub()

	registry := store.NewRegistry(client, hub, logger, time.Minute)
	r := resolver.New(client, time.Millisecond, logger)
	workspaceService := service.NewWorkspaceService(registry)

	rl := middleware.NewRateLimiterWithConfig(6000, 1000)
	t.Cleanup(rl.Stop)

	team := NewTeamHandler(
		service.NewCommitmentService(registry),
		service.NewTaskService(registry),
		service.NewAccountabilityService(registry, time.UTC),
	)

	e := echo.New()
	RegisterRoutes(e, auth, rl, Handlers{
		Session:   NewSessionHandler(service.NewSessionService(r, client, hub, logger)),
		Workspace: NewWorkspaceHandler(workspaceService, service.NewOverviewService(registry, time.UTC)),
		Equity:    NewEquityHandler(service.NewEquityService(registry, client), workspaceService),
		Team:      team,
		Document:  NewDocumentHandler(service.NewDocumentService(client, 1024, hub)),
		WebSocket: NewWebSocketHandler(hub, client, testAllowedOrigins),
	})

	return &testServer{e: e, fake: fake, hub: hub}
}

// do sends a JSON request as identity; an empty identity sends no header
func (s *testServer) do(method, path, identity, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if identity != "" {
		req.Header.Set(middleware.IdentityHeader, identity)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

func closedServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
