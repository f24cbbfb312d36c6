package config

import "time"

// RateLimitConfig configures the token bucket limiter.  The bucket lives
// in Redis when a client is available and in process memory otherwise.
type RateLimitConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Capacity       int           `koanf:"capacity"`
	RefillTokens   int           `koanf:"refill_tokens"`
	RefillInterval time.Duration `koanf:"refill_interval"`
	TTL            time.Duration `koanf:"ttl"`
	KeyStrategy    string        `koanf:"key_strategy" validate:"oneof=ip route ip_route"`
	Prefix         string        `koanf:"prefix" validate:"required"`
	Debug          bool          `koanf:"debug"`
}

// LoadRateLimitConfig reads RATE_LIMIT_ variables and clamps them to
// usable values.
func LoadRateLimitConfig() (RateLimitConfig, error) {
	cfg := RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	if err := loadEnv("RATE_LIMIT_", &cfg); err != nil {
		return RateLimitConfig{}, err
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// keys must outlive at least a few refill periods or buckets reset early
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg, nil
}

// RefillRate is the sustained rate in tokens per second.
func (c RateLimitConfig) RefillRate() float64 {
	return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}
