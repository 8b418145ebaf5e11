package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter throttles resume uploads with Redis sliding windows: a short
// window per client IP and a daily window per candidate.
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int
	maxPerDay    int
}

// KEYS[1] = window key, ARGV = limit, window seconds, now (unix millis).
// Returns 1 when the hit was recorded, 0 when the window is full.
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`

// LimitDecision tells the caller whether to proceed and, if not, when to retry.
type LimitDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// NewUploadLimiter defaults to 10 uploads/min per IP and 50/day per candidate.
// A nil client disables limiting.
func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{client: client, maxPerMinute: perMin, maxPerDay: perDay}
}

// Allow records an upload attempt. Without Redis it fails open and returns an
// error so the caller can log that limiting is off.
func (ul *UploadLimiter) Allow(ctx context.Context, ip, candidateID string) (LimitDecision, error) {
	if ul == nil || ul.client == nil {
		return LimitDecision{Allowed: true}, fmt.Errorf("upload limiter disabled: redis not connected")
	}

	now := time.Now().UnixMilli()

	ok, err := ul.hit(ctx, "ratelimit:upload:ip:"+ip, ul.maxPerMinute, 60, now)
	if err != nil {
		return LimitDecision{Allowed: true}, fmt.Errorf("upload limit check: %w", err)
	}
	if !ok {
		return LimitDecision{RetryAfter: time.Minute}, nil
	}

	if candidateID != "" {
		ok, err = ul.hit(ctx, "ratelimit:upload:user:"+candidateID, ul.maxPerDay, 86400, now)
		if err != nil {
			return LimitDecision{Allowed: true}, fmt.Errorf("upload limit check: %w", err)
		}
		if !ok {
			return LimitDecision{RetryAfter: time.Hour}, nil
		}
	}

	return LimitDecision{Allowed: true}, nil
}

func (ul *UploadLimiter) hit(ctx context.Context, key string, limit, windowSeconds int, now int64) (bool, error) {
	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, windowSeconds, now).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
