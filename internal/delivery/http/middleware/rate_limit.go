package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Key prefix for Redis
	KeyPrefix string
	// Custom key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// GlobalRateLimitConfig limits every route per client IP.
func GlobalRateLimitConfig(limit, windowSeconds int) RateLimitConfig {
	if limit <= 0 {
		limit = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return RateLimitConfig{
		Limit:     limit,
		Window:    time.Duration(windowSeconds) * time.Second,
		KeyPrefix: "rl:ip:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// fixedWindow is the per-process fallback used when Redis is not configured
// or errors. Counts are not shared between instances.
type fixedWindow struct {
	mu        sync.Mutex
	entries   map[string]*windowEntry
	nextSweep time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func newFixedWindow() *fixedWindow {
	return &fixedWindow{entries: make(map[string]*windowEntry)}
}

func (w *fixedWindow) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.After(w.nextSweep) {
		for k, e := range w.entries {
			if now.After(e.resetAt) {
				delete(w.entries, k)
			}
		}
		w.nextSweep = now.Add(5 * time.Minute)
	}

	e, ok := w.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &windowEntry{resetAt: now.Add(window)}
		w.entries[key] = e
	}
	e.count++
	return e.count, e.resetAt
}

// RateLimit applies a fixed-window limit, counting in Redis when a client is
// available and in process memory otherwise. Redis errors never block traffic.
func RateLimit(client *goredis.Client, config RateLimitConfig, audit *security.AuditLogger) gin.HandlerFunc {
	fallback := newFixedWindow()

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var (
			count   int
			resetAt time.Time
		)
		if client != nil {
			var err error
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, key, config)
			if err != nil {
				logger.Log.Warn("Rate limiter falling back to memory", "error", err)
				count, resetAt = fallback.hit(key, config.Window, now)
			}
		} else {
			count, resetAt = fallback.hit(key, config.Window, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			audit.Log(c.Request.Context(), security.AuditEvent{
				Event:    security.EventRateLimitTriggered,
				Resource: "route",
				TargetID: c.FullPath(),
				Details:  map[string]interface{}{"ip_hash": security.HashValue(c.ClientIP())},
			})

			abort(c, apperror.RateLimited("Rate limit exceeded. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// UploadRateLimit applies the per-IP and per-candidate resume upload quotas.
// It must run after Authenticate.
func UploadRateLimit(limiter *security.UploadLimiter, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := GetPrincipal(c)

		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP(), principal.ID)
		if err != nil {
			logger.Log.Debug("Upload limiter unavailable, allowing request", "error", err)
		}
		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
			audit.Log(c.Request.Context(), security.AuditEvent{
				Event:    security.EventRateLimitTriggered,
				ActorID:  principal.ID,
				Resource: "resume",
				TargetID: c.FullPath(),
			})
			abort(c, apperror.RateLimited("Too many uploads. Please try again later."))
			return
		}
		c.Next()
	}
}
