package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, applies defaults, and validates.
// An empty path or a missing file yields the default configuration: the
// gateway is a local development tool and must start without any setup.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration and applies HERMOD_* environment
// variable overrides. Environment variables always take precedence over
// file-based configuration.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies HERMOD_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("HERMOD_GATEWAY_LISTEN_ADDRESS"); val != "" {
		cfg.Gateway.ListenAddress = val
	}
	if val := os.Getenv("HERMOD_BACKEND_HOST"); val != "" {
		cfg.Backend.Host = val
	}
	if val := os.Getenv("HERMOD_BACKEND_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Backend.Port = port
		}
	}
	if val := os.Getenv("HERMOD_BACKEND_MAX_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Backend.MaxAttempts = n
		}
	}
	if val := os.Getenv("HERMOD_BACKEND_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Backend.RequestTimeout = d
		}
	}
	if val := os.Getenv("HERMOD_DISCOVERY_PORT_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Discovery.PortCount = n
		}
	}
	if val := os.Getenv("HERMOD_DISCOVERY_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Discovery.Interval = d
		}
	}
	if val := os.Getenv("HERMOD_SETTINGS_PATH"); val != "" {
		cfg.Settings.Path = val
	}
	if val := os.Getenv("HERMOD_WINDOW_PROCESS_NAME"); val != "" {
		cfg.Window.ProcessName = val
	}
	if val := os.Getenv("HERMOD_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("HERMOD_LOGGING_FILE"); val != "" {
		cfg.Telemetry.Logging.File = val
	}
	if val := os.Getenv("HERMOD_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
