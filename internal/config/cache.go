package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Methods lists the HTTP methods to cache (e.g. GET, HEAD).
// TTL defines the lifetime of cache entries.  KeyStrategy determines
// which parts of the request contribute to the cache key.  Prefix and
// MaxBodyBytes control namespacing and the largest response cached.
type CacheConfig struct {
	Enabled      bool            `koanf:"enabled"`
	MethodList   string          `koanf:"methods"`
	Methods      map[string]bool `koanf:"-"`
	TTL          time.Duration   `koanf:"ttl" validate:"gte=0"`
	KeyStrategy  string          `koanf:"key_strategy" validate:"oneof=route route_query method_route method_route_query"`
	Prefix       string          `koanf:"prefix" validate:"required"`
	MaxBodyBytes int             `koanf:"max_body_bytes" validate:"gte=0"`
}

// LoadCacheConfig reads CACHE_ variables.  All methods are upper-cased.
func LoadCacheConfig() (CacheConfig, error) {
	cfg := CacheConfig{
		Enabled:      true,
		MethodList:   "GET",
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
	if err := loadEnv("CACHE_", &cfg); err != nil {
		return CacheConfig{}, err
	}
	cfg.Methods = parseMethods(cfg.MethodList)
	return cfg, nil
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
