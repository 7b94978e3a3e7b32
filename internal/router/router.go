package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/finance-tracker/internal/config"
	"github.com/iliyamo/finance-tracker/internal/handler"
	"github.com/iliyamo/finance-tracker/internal/log"
	"github.com/iliyamo/finance-tracker/internal/middleware"
	"github.com/iliyamo/finance-tracker/internal/utils"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Profiles     *handler.ProfileHandler
	Categories   *handler.CategoryHandler
	Transactions *handler.TransactionHandler
}

// Options configures the shared middleware stack.
type Options struct {
	CORSOrigin string
	RateLimit  config.RateLimitConfig
	Redis      *redis.Client // nil selects the in-memory limiter
	Tokens     utils.TokenService
	Logger     *log.Logger
}

// New builds the echo instance with middleware, error handling and every
// route registered.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Logger)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: []string{origin}}))
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Logger))

	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, opts.Tokens)
	RegisterAPI(e, h, opts.Tokens)
	e.RouteNotFound("/*", handler.NotFoundRoute)
	return e
}

// RegisterRoutes registers the unauthenticated health checks.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/api/health", handler.Health)
}

// RegisterAuth registers registration and session routes.  Register,
// login and refresh are public; logout needs an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens utils.TokenService) {
	e.POST("/api/users/register", a.Register)

	g := e.Group("/api/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(tokens))
}
