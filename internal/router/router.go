// Package router builds the echo instance: global middleware, the error
// handler, the query routes and the system routes.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/query-params-practice/internal/config"
	"github.com/iliyamo/query-params-practice/internal/handler"
	"github.com/iliyamo/query-params-practice/internal/middleware"
	"github.com/iliyamo/query-params-practice/internal/service"
)

// Deps is everything New needs.  Redis, Limiter and Audit may be nil.
type Deps struct {
	Logger    zerolog.Logger
	Service   *service.QueryService
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Limiter   *middleware.LocalLimiterStore
	Audit     middleware.AuditSink
}

// New returns a fully wired echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(
		middleware.RequestID(),
		middleware.ContextLogger(d.Logger),
		middleware.RequestLogger(),
		echomw.Recover(),
		middleware.Metrics(),
	)

	RegisterSystem(e)
	RegisterRoutes(e, handler.NewQueryHandler(d.Service),
		middleware.Audit(d.Audit),
		middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Limiter),
		middleware.NewRedisCache(d.Cache, d.Redis),
	)
	return e
}

// RegisterRoutes maps the query endpoints.  mw wraps each of them, in
// order, and does not apply to the system routes.
func RegisterRoutes(e *echo.Echo, q *handler.QueryHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/", q.Index, mw...)
	e.GET("/filter", q.FilterNumbers, mw...)
	e.GET("/search", q.SearchProducts, mw...)
	e.GET("/products/:id", q.GetProduct, mw...)
	e.GET("/users/:id/posts", q.GetUserPosts, mw...)
	e.GET("/flights/:origin/:destination", q.SearchFlights, mw...)
	e.GET("/cinemas/:cinema_id/movies/:movie_id/showtimes", q.GetShowtimes, mw...)
}

// RegisterSystem maps health, metrics and documentation endpoints.
func RegisterSystem(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/openapi.json", handler.OpenAPI)
	e.GET("/docs", handler.Docs)
	e.GET("/redoc", handler.Redoc)
}
