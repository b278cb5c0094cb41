package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/parcel-portal/docs"
	"github.com/99minutos/parcel-portal/internal/api/handler"
	"github.com/99minutos/parcel-portal/internal/api/middleware"
	"github.com/99minutos/parcel-portal/internal/api/session"
	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Log           zerolog.Logger
	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool

	Sessions       *session.Store
	Auth           ports.AuthService
	Verification   ports.VerificationService
	ParcelRequests handler.ParcelRequests
	HealthChecks   map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("parcel_portal"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	homeHandler := handler.NewHomeHandler()
	signInHandler := handler.NewSignInHandler(d.TokenTTL, d.SecureCookies)
	requestHandler := handler.NewRequestFormHandler(d.ParcelRequests, d.Log)
	verifyHandler := handler.NewVerifyHandler(d.Verification)
	apiRequestHandler := handler.NewParcelRequestHandler(d.ParcelRequests)

	// --- JSON auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- JSON request API (bearer token) ---
	apiGroup := e.Group("/api", middleware.Auth(d.JWTSecret), middleware.RBAC(domain.RoleClient, domain.RoleAdmin))
	apiGroup.GET("/requests", apiRequestHandler.List)
	apiGroup.GET("/requests/:reference", apiRequestHandler.Get)

	// --- Pages ---
	pages := e.Group("", session.Middleware(d.Sessions, d.SecureCookies), middleware.PageClaims(d.JWTSecret))
	pages.GET("/", homeHandler.Show)
	pages.GET("/signin", signInHandler.Show)
	pages.POST("/signin", signInHandler.Submit)
	pages.POST("/signin/resend", signInHandler.Resend)
	pages.POST("/signin/password-visibility", signInHandler.TogglePassword)
	pages.GET("/signout", signInHandler.SignOut)
	pages.GET("/verify", verifyHandler.Verify)

	requests := pages.Group("/requests",
		middleware.AuthPage(d.JWTSecret, "/signin"),
		middleware.RBAC(domain.RoleClient, domain.RoleAdmin),
	)
	requests.GET("/new", requestHandler.Show)
	requests.POST("/new/field", requestHandler.Field)
	requests.POST("", requestHandler.Submit)
	requests.POST("/cancel", requestHandler.Cancel)

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// requestLogger writes one zerolog line per request.
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
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
