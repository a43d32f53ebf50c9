package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/auth-api/docs"
	"github.com/99minutos/auth-api/internal/api/handler"
	"github.com/99minutos/auth-api/internal/api/middleware"
	"github.com/99minutos/auth-api/internal/core/ports"
)

// Options are the HTTP-level settings taken from configuration.
type Options struct {
	// ExposeErrors adds error details to error responses; off in production.
	ExposeErrors bool
	CORSOrigin   string
	// BodyLimit caps request bodies, in echo's size notation.
	BodyLimit string
}

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Logger         zerolog.Logger
	AuthService    ports.AuthService
	UserService    ports.UserService
	Tokens         ports.TokenVerifier
	Users          middleware.UserLookup
	RateLimitStore echomiddleware.RateLimiterStore
	HealthChecks   map[string]handler.Check

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, opts.ExposeErrors)

	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "10K"
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.CORS(opts.CORSOrigin))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)
	authMiddleware := middleware.Auth(deps.Tokens, deps.Users)

	// --- API routes (rate limited) ---
	apiGroup := e.Group("/api")
	if deps.RateLimitStore != nil {
		apiGroup.Use(middleware.RateLimit(deps.RateLimitStore))
	}

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	usersGroup := apiGroup.Group("/users")
	usersGroup.POST("", userHandler.Create)
	usersGroup.GET("", userHandler.List)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)       // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
