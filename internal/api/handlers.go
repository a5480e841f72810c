package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/internal/metrics"
	"github.com/pageza/recipegen/internal/middleware"
	"github.com/pageza/recipegen/internal/types"
)

// Version is reported by the health endpoint
const Version = "v1.0.0"

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "RecipeGen proxy is running",
		"version": Version,
	})
}

// MethodNotAllowed answers a known path requested with the wrong method
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, types.ErrorResponse{Error: "Method not allowed"})
}

// RouteConfig carries what RegisterRoutes wires together
type RouteConfig struct {
	// BasicAuthPass is the shared password, plain or bcrypt
	BasicAuthPass string
	Generate      *GenerateHandler
	// Limiter is optional; nil disables rate limiting
	Limiter middleware.Limiter
	// Metrics is optional; nil disables /metrics
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// RegisterRoutes registers all API routes. The engine must have
// HandleMethodNotAllowed enabled for the 405 answer.
func RegisterRoutes(router *gin.Engine, cfg RouteConfig) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	if cfg.Metrics != nil {
		router.GET("/metrics", cfg.Metrics.Handler())
	}

	handlers := []gin.HandlerFunc{middleware.BasicAuth(cfg.BasicAuthPass, log)}
	if cfg.Limiter != nil {
		handlers = append(handlers, middleware.RateLimit(cfg.Limiter, log))
	}
	handlers = append(handlers, cfg.Generate.Generate)

	router.POST("/api/generate", handlers...)
	router.NoMethod(MethodNotAllowed)
}
