// Package config loads service configuration from environment variables
// and an optional config.yaml, environment taking precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the service.
type Config struct {
	// DatabaseURL is the PostgreSQL DSN.
	DatabaseURL string `mapstructure:"database_url"`

	// AppPort is the HTTP listen port.
	AppPort string `mapstructure:"app_port"`

	// AppEnv is "development" or "production".
	AppEnv string `mapstructure:"app_env"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`

	// JWTSecret signs API tokens.
	JWTSecret string `mapstructure:"jwt_secret"`

	// InactivateAPIAuth bypasses the authentication middleware on the
	// dynamic-column read endpoint when true. Authentication itself is an
	// external concern; this flag only disables its enforcement.
	InactivateAPIAuth bool `mapstructure:"inactivate_api_auth"`
}

// Load reads configuration from config.yaml (if present in the given
// directory or the working directory) and the environment.
func Load(configDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app_port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("inactivate_api_auth", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// A missing config.yaml is not an error; env vars suffice.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (set DATABASE_URL)")
	}
	if cfg.JWTSecret == "" && !cfg.InactivateAPIAuth {
		return nil, fmt.Errorf("jwt_secret is required unless inactivate_api_auth is set")
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
