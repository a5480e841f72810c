package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/recipegen/internal/types"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// KeyPrefix namespaces Redis keys
	KeyPrefix string
}

// Decision is the outcome of a single limiter check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimiter is a fixed-window limiter shared through Redis, so every
// proxy instance (or Lambda container) counts against the same window
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter creates a new Redis rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// Allow increments the caller's counter for the current window
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(rl.config.Window),
	}, nil
}

// LocalLimiter is a per-key token bucket kept in process memory. Buckets idle
// for a full window are dropped, since they would have refilled anyway.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	config    RateLimitConfig
	now       func() time.Time
	lastPrune time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*LocalLimiter)(nil)

// NewLocalLimiter allows config.Limit requests per config.Window per key,
// with bursts up to config.Limit. A non-positive limit is treated as 1 and
// a non-positive window as one minute.
func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	if config.Limit <= 0 {
		config.Limit = 1
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &LocalLimiter{
		buckets: make(map[string]*localBucket),
		config:  config,
		now:     time.Now,
	}
}

// Allow takes one token from the caller's bucket
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	bucket, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.config.Window / time.Duration(l.config.Limit))
		bucket = &localBucket{limiter: rate.NewLimiter(every, l.config.Limit)}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now

	allowed := bucket.limiter.AllowN(now, 1)
	remaining := int(bucket.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(l.config.Window),
	}, nil
}

// prune runs at most once per window; callers hold l.mu
func (l *LocalLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.config.Window {
		return
	}
	l.lastPrune = now
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeen) >= l.config.Window {
			delete(l.buckets, key)
		}
	}
}

// RateLimit enforces limiter per client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limit check failed", zap.Error(err), zap.String("request_id", GetRequestID(c)))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{Error: "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// NewGenerateLimiter picks the Redis limiter when a client is given and the
// in-process one otherwise. perMinute <= 0 disables limiting.
func NewGenerateLimiter(redisClient *redis.Client, perMinute int) Limiter {
	if perMinute <= 0 {
		return nil
	}
	cfg := RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:generate",
	}
	if redisClient != nil {
		return NewRateLimiter(redisClient, cfg)
	}
	return NewLocalLimiter(cfg)
}
