package config

// This file defines the Redis client constructor.  Redis backs the
// response cache and the distributed rate limiter.  If the server cannot
// be reached at startup the constructor returns nil and both middlewares
// degrade gracefully.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds REDIS_ variables.
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr" validate:"required_if=Enabled true"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
	TLS      bool   `koanf:"tls"`
}

// LoadRedisConfig reads REDIS_ variables.  Redis is off unless
// REDIS_ENABLED is set.
func LoadRedisConfig() (RedisConfig, error) {
	cfg := RedisConfig{Addr: "localhost:6379"}
	if err := loadEnv("REDIS_", &cfg); err != nil {
		return RedisConfig{}, err
	}
	return cfg, nil
}

// NewRedisClient instantiates a Redis client and pings it with a short
// timeout.  The returned client is nil when Redis is disabled or cannot
// be reached.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
