package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/config"
	"github.com/pageza/recipegen/internal/api"
	"github.com/pageza/recipegen/internal/gemini"
	"github.com/pageza/recipegen/internal/metrics"
	"github.com/pageza/recipegen/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	http    *http.Server
	redis   *redis.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	cfg     *config.Config
}

// Option customises a Server during New
type Option func(*options)

type options struct {
	generator    api.Generator
	generatorSet bool
}

// WithGenerator replaces the Gemini client, mainly for tests
func WithGenerator(g api.Generator) Option {
	return func(o *options) {
		o.generator = g
		o.generatorSet = true
	}
}

// New builds the gin engine with all middleware and routes
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	// client IPs key the rate limiter, so forwarding headers count only from known proxies
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("ignoring invalid trusted proxies", zap.Strings("trusted_proxies", cfg.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	m := metrics.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		m.Instrument(),
		middleware.AccessLog(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	generator := o.generator
	if !o.generatorSet && cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(cfg.GeminiAPIKey,
			gemini.WithModel(cfg.GeminiModel),
			gemini.WithBaseURL(cfg.GeminiURL),
			gemini.WithLogger(logger.Named("gemini")),
		)
	}

	// Initialize Redis for rate limiting
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := NewRedisClient(cfg.RedisURL, logger)
		if err != nil {
			// Continue with in-process rate limiting if Redis is not available
			logger.Warn("redis unavailable, using in-process rate limiting", zap.Error(err))
		} else {
			redisClient = client
		}
	}

	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	api.RegisterRoutes(router, api.RouteConfig{
		BasicAuthPass: cfg.BasicAuthPass,
		Generate:      api.NewGenerateHandler(generator, m, logger.Named("generate")),
		Limiter:       middleware.NewGenerateLimiter(redisClient, cfg.RateLimitPerMinute),
		Metrics:       m,
		Logger:        logger,
	})

	return &Server{
		router:  router,
		redis:   redisClient,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
	}
}

// Handler returns the engine, for adapters such as the Lambda proxy
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Start listens on the configured address and blocks until the server stops
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases Redis
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
