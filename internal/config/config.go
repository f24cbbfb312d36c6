// Package config loads application configuration from environment
// variables.  Each concern has its own loader and its own variable
// prefix (APP_, CATALOG_, DB_, CACHE_, RATE_LIMIT_, REDIS_, AUDIT_).
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the HTTP server settings (APP_ prefix).
//
// RangeMaxSpan defaults to 0, which leaves GET /filter unbounded: a request
// such as min=0&max=10000000000 allocates the whole range and can exhaust
// memory, which Recover cannot catch.  Public deployments should set
// APP_RANGE_MAX_SPAN (for example 100000).
type Config struct {
	Env             string        `koanf:"env" validate:"required,oneof=dev test prod"`
	Port            string        `koanf:"port" validate:"required,numeric"`
	LogLevel        string        `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RangeMaxSpan    int           `koanf:"range_max_span" validate:"gte=0"` // 0 = unbounded
}

// CatalogConfig selects where the reference tables come from (CATALOG_ prefix).
type CatalogConfig struct {
	Source string `koanf:"source" validate:"oneof=embedded file mysql"`
	File   string `koanf:"file" validate:"required_if=Source file"`
}

// DBConfig holds MySQL connection settings (DB_ prefix).  Only used when
// the catalog source is mysql.
type DBConfig struct {
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	Name string `koanf:"name"`
}

// Load reads the server settings.  Unset variables keep their defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:             "dev",
		Port:            "8000",
		LogLevel:        "info",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
	if err := loadEnv("APP_", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadCatalogConfig reads the catalog source settings.
func LoadCatalogConfig() (CatalogConfig, error) {
	cfg := CatalogConfig{Source: "embedded"}
	if err := loadEnv("CATALOG_", &cfg); err != nil {
		return CatalogConfig{}, err
	}
	return cfg, nil
}

// LoadDBConfig reads the MySQL settings.
func LoadDBConfig() (DBConfig, error) {
	cfg := DBConfig{Host: "localhost", Port: "3306"}
	if err := loadEnv("DB_", &cfg); err != nil {
		return DBConfig{}, err
	}
	return cfg, nil
}

// Validate checks that every field required by a mysql catalog is set.
func (c DBConfig) Validate() error {
	var missing []string
	for k, v := range map[string]string{"DB_USER": c.User, "DB_HOST": c.Host, "DB_PORT": c.Port, "DB_NAME": c.Name} {
		if v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// loadEnv maps every variable starting with prefix onto out, then runs
// struct validation.  PREFIX_SOME_KEY maps to the koanf key "some_key".
func loadEnv(prefix string, out any) error {
	k := koanf.New(".")
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return fmt.Errorf("load %s env vars: %w", prefix, err)
	}
	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("decode %s env vars: %w", prefix, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s config: %w", prefix, err)
	}
	return nil
}
