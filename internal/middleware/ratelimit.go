package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/query-params-practice/internal/config"
	"github.com/iliyamo/query-params-practice/internal/errs"
)

// limiterScript refills the bucket stored at KEYS[1] and takes one token.
// It returns {allowed, remaining tokens, retry after ms}.
var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// verdict is the outcome of taking one token from a bucket.
type verdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// NewTokenBucket limits requests per key (see buildRateKey) with a token
// bucket of cfg.Capacity tokens refilled by cfg.RefillTokens every
// cfg.RefillInterval.  Buckets live in Redis when rdb is non-nil; local
// serves when rdb is nil or a Redis call fails.  With neither available
// the middleware passes through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, local *LocalLimiterStore) echo.MiddlewareFunc {
	if !cfg.Enabled || (rdb == nil && local == nil) {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)

			var (
				v       verdict
				backend string
				ok      bool
			)
			if rdb != nil {
				v, ok = takeRedis(c, cfg, rdb, key)
				backend = "redis"
			}
			if !ok && local != nil {
				v, ok = takeLocal(local, key), true
				backend = "local"
			}
			if !ok {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}

			if !v.allowed {
				secs := max(0, int(math.Ceil(v.retry.Seconds())))
				h.Set("Retry-After", strconv.Itoa(secs))
				rateLimitRejects.WithLabelValues(backend).Inc()
				if cfg.Debug {
					GetLogger(c).Debug().
						Str("key", key).
						Str("backend", backend).
						Dur("retry", v.retry).
						Msg("rate limited")
				}
				return errs.NewTooManyRequestsError("rate limit exceeded")
			}
			return next(c)
		}
	}
}

// takeRedis runs the bucket script.  ok is false when Redis could not
// answer.
func takeRedis(c echo.Context, cfg config.RateLimitConfig, rdb *redis.Client, key string) (verdict, bool) {
	args := []any{
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL / time.Second),
	}
	vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
	if err != nil {
		GetLogger(c).Warn().Err(err).Str("key", key).Msg("rate limit script failed")
		return verdict{}, false
	}
	arr, ok := vals.([]any)
	if !ok || len(arr) != 3 {
		GetLogger(c).Warn().Str("key", key).Str("result", fmt.Sprintf("%#v", vals)).Msg("unexpected rate limit script result")
		return verdict{}, false
	}
	return verdict{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, true
}

func takeLocal(store *LocalLimiterStore, key string) verdict {
	lim := store.Get(key)
	now := time.Now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return verdict{}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return verdict{retry: delay}
	}
	return verdict{allowed: true, remaining: int64(lim.TokensAt(now))}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// buildRateKey derives the bucket key from the client ip and/or the
// route template, depending on cfg.KeyStrategy.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default: // ip_route
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
