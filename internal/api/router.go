package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/workdesk/accounts-api/docs"
	"github.com/workdesk/accounts-api/internal/api/handler"
	"github.com/workdesk/accounts-api/internal/api/middleware"
	"github.com/workdesk/accounts-api/internal/core/ports"
	"github.com/workdesk/accounts-api/internal/core/service"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Resolver ports.IdentityResolver
	// Checks are the readiness probes keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	reg := deps.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "accounts",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users)
	userHandler := handler.NewUserHandler(deps.Users)
	adminHandler := handler.NewAdminHandler(deps.Users)

	// Every gate shares the resolution step and adds its own policies.
	signedIn := service.NewGuard(deps.Resolver)
	authenticate := middleware.Authorize(signedIn)
	activeOnly := middleware.Authorize(signedIn.Then(service.RequireActive))
	collaboratorOnly := middleware.Authorize(signedIn.Then(service.RequireCollaborator))
	adminOnly := middleware.Authorize(signedIn.Then(service.RequireAdmin))

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/token", authHandler.Login)

	// --- Self-service routes ---
	users := e.Group("/users")
	users.GET("/me", userHandler.Me, authenticate)
	users.PATCH("/me", userHandler.UpdateMe, activeOnly)
	users.PUT("/me/password", userHandler.ChangePassword, authenticate)
	users.GET("/collaborators", userHandler.Collaborators, middleware.OptionalAuthenticate(deps.Resolver))
	users.GET("/collaborator/ping", userHandler.CollaboratorPing, collaboratorOnly)

	// --- Admin routes ---
	admin := e.Group("/admin", adminOnly)
	admin.GET("/users", adminHandler.List)
	admin.DELETE("/users/:id", adminHandler.Delete)
	admin.PATCH("/users/:id/status", adminHandler.SetStatus)
	admin.PATCH("/users/:id/role", adminHandler.SetRole)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
