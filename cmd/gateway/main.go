package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/config"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/cofoundry/gateway/internal/handler"
	"github.com/cofoundry/gateway/internal/middleware"
	"github.com/cofoundry/gateway/internal/resolver"
	"github.com/cofoundry/gateway/internal/service"
	"github.com/cofoundry/gateway/internal/store"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Backend client and event fan-out
	client := backend.NewClient(cfg.APIBase, cfg.BackendTimeout, log.Logger)
	hub := events.NewHub()
	log.Info().Str("api_base", cfg.APIBase).Msg("Using backend")

	// Per-identity workspace sessions
	registry := store.NewRegistry(client, hub, log.Logger, cfg.SessionTTL)
	registry.Start(store.DefaultSweepInterval)
	defer registry.Stop()

	// Initialize services
	roleResolver := resolver.New(client, cfg.AdvisorRetryDelay, log.Logger)
	sessionService := service.NewSessionService(roleResolver, client, hub, log.Logger)
	workspaceService := service.NewWorkspaceService(registry)
	overviewService := service.NewOverviewService(registry, time.Local)
	equityService := service.NewEquityService(registry, client)
	commitmentService := service.NewCommitmentService(registry)
	taskService := service.NewTaskService(registry)
	accountabilityService := service.NewAccountabilityService(registry, time.Local)
	documentService := service.NewDocumentService(client, cfg.MaxUploadBytes, hub)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware()
	if cfg.JWTEnabled() {
		authMiddleware, err = middleware.NewJWTAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
		log.Info().Str("domain", cfg.Auth0Domain).Msg("Bearer token validation enabled")
	} else {
		log.Warn().Msg("AUTH0_DOMAIN not set, trusting " + middleware.IdentityHeader + " header")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.IdentityHeader},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handler.Handlers{
		Session:   handler.NewSessionHandler(sessionService),
		Workspace: handler.NewWorkspaceHandler(workspaceService, overviewService),
		Equity:    handler.NewEquityHandler(equityService, workspaceService),
		Team:      handler.NewTeamHandler(commitmentService, taskService, accountabilityService),
		Document:  handler.NewDocumentHandler(documentService),
		WebSocket: handler.NewWebSocketHandler(hub, client, cfg.CORSOrigins),
	})

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting gateway")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Int("sessions", registry.Len()).Msg("Gateway exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("user_id", middleware.GetIdentity(c)).
				Msg("request")

			return nil
		}
	}
}
