package server

import (
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/analyses"
	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/quotes"
	"cutquote-backend/internal/shared/config"
	"cutquote-backend/internal/shared/metrics"
	"cutquote-backend/internal/shared/server/middleware"
	"cutquote-backend/internal/training"
)

const (
	apiPrefix         = "/api/v1"
	analyzeRateGroup  = "ANALYZE"
	analyzeRatePerSec = 2
	analyzeRateBurst  = 10
)

// RouterDeps carries the handlers and services the router mounts.
type RouterDeps struct {
	Config          config.Config
	DB              *sql.DB
	Pricing         *pricing.Service
	AnalysisHandler *analyses.Handler
	PricingHandler  *pricing.Handler
	QuoteHandler    *quotes.Handler
	TrainingHandler *training.Handler
	// RateLimiter is shared across routers when set; tests inject a clock.
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				analyzeRateGroup: {Rate: analyzeRatePerSec, Burst: analyzeRateBurst},
			},
			GroupFor: rateGroup,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	registerHealthRoutes(api, deps)
	api.GET("/metrics", metrics.Handler())
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.PricingHandler != nil {
		deps.PricingHandler.RegisterRoutes(api)
	}
	if deps.QuoteHandler != nil {
		deps.QuoteHandler.RegisterRoutes(api)
	}
	if deps.TrainingHandler != nil {
		deps.TrainingHandler.RegisterRoutes(api)
	}

	return r
}

func rateGroup(c *gin.Context) string {
	if strings.HasPrefix(c.Request.URL.Path, apiPrefix+"/analyze") {
		return analyzeRateGroup
	}
	return ""
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
