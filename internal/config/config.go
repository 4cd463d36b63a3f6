// Package config loads service configuration from FOODLOGR_-prefixed
// environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the food log service.
// Environment variables are parsed from the FOODLOGR_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// BaseURL is the externally visible URL, used in the registration
	// setup command.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Database selection. "auto" picks postgres when a DSN is set and
	// falls back to the local sqlite file otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/foodlogr.db"`

	// AllowedOrigins is the explicit CORS allow-list.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// MCPEnabled mounts the MCP tool server at /mcp.
	MCPEnabled bool `envconfig:"MCP_ENABLED" default:"true"`

	ShutdownTimeoutSeconds int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
}

// ResolveDefaults derives DBDriver when set to "auto" or empty and
// rejects unsupported drivers.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("DB_DRIVER=sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: FOODLOGR_HTTP_PORT, FOODLOGR_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FOODLOGR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("mcp_enabled", cfg.MCPEnabled).
		Msg("Configuration loaded")

	return &cfg, nil
}
