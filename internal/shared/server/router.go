package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/extract"
	"outreach-backend/internal/generations"
	"outreach-backend/internal/outreach"
	"outreach-backend/internal/payments"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/services/health"
	"outreach-backend/internal/shared/auth"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

// RouterDeps holds the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	Verifier          auth.Verifier
	Health            *health.Service
	OutreachHandler   *outreach.Handler
	ProfilesHandler   *profiles.Handler
	GenerationHandler *generations.Handler
	PaymentsHandler   *payments.Handler
	ExtractHandler    *extract.Handler
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
	})

	r.GET("/metrics", metrics.Handler())
	r.GET("/api/v1/health", func(c *gin.Context) {
		ok, body := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	})

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: deps.RateLimiter,
		GroupFor: func(*gin.Context) string {
			return middleware.RateLimitGroupGenerate
		},
		Rules: map[string]middleware.RateLimitRule{
			middleware.RateLimitGroupGenerate: middleware.PerMinute(
				deps.Config.RateLimitGeneratePerMin,
				deps.Config.RateLimitGenerateBurst,
			),
		},
	})

	api := r.Group("/api/v1", middleware.Auth(deps.Verifier))
	if deps.OutreachHandler != nil {
		deps.OutreachHandler.RegisterRoutes(api.Group("", limit))
		// Path used by clients of the hosted edge function.
		deps.OutreachHandler.RegisterRoutes(r.Group("/functions/v1", middleware.Auth(deps.Verifier), limit))
	}
	if deps.ProfilesHandler != nil {
		deps.ProfilesHandler.RegisterRoutes(api)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api)
	}
	if deps.PaymentsHandler != nil {
		deps.PaymentsHandler.RegisterRoutes(api)
	}
	if deps.ExtractHandler != nil {
		deps.ExtractHandler.RegisterRoutes(api)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	if deps.ProfilesHandler != nil {
		deps.ProfilesHandler.RegisterAdminRoutes(admin)
	}
	if deps.PaymentsHandler != nil {
		deps.PaymentsHandler.RegisterAdminRoutes(admin)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
