package config

import (
	"fmt"
	"net"
	"strconv"
)

// Validate checks the configuration for values the gateway cannot run with.
func Validate(cfg *Config) error {
	if cfg.Gateway.ListenAddress == "" {
		return fmt.Errorf("gateway.listen_address must not be empty")
	}
	if _, portStr, err := net.SplitHostPort(cfg.Gateway.ListenAddress); err != nil {
		return fmt.Errorf("gateway.listen_address %q is not a valid host:port: %w", cfg.Gateway.ListenAddress, err)
	} else if _, err := strconv.Atoi(portStr); err != nil {
		return fmt.Errorf("gateway.listen_address %q has a non-numeric port", cfg.Gateway.ListenAddress)
	}

	if cfg.Backend.Host == "" {
		return fmt.Errorf("backend.host must not be empty")
	}
	if cfg.Backend.Port < 1 || cfg.Backend.Port > 65535 {
		return fmt.Errorf("backend.port %d is out of range (1-65535)", cfg.Backend.Port)
	}
	if cfg.Backend.ProbeTimeout <= 0 {
		return fmt.Errorf("backend.probe_timeout must be positive")
	}
	if cfg.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("backend.request_timeout must be positive")
	}
	if cfg.Backend.MaxAttempts < 1 {
		return fmt.Errorf("backend.max_attempts must be at least 1")
	}
	if cfg.Backend.RetryDelay < 0 {
		return fmt.Errorf("backend.retry_delay must not be negative")
	}

	if cfg.Discovery.PortCount < 0 {
		return fmt.Errorf("discovery.port_count must not be negative")
	}
	if cfg.Discovery.StartPort < 0 || cfg.Discovery.StartPort > 65535 {
		return fmt.Errorf("discovery.start_port %d is out of range", cfg.Discovery.StartPort)
	}
	if cfg.Discovery.Interval <= 0 {
		return fmt.Errorf("discovery.interval must be positive")
	}

	if cfg.Settings.Path == "" {
		return fmt.Errorf("settings.path must not be empty")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not one of debug, info, warn, error", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not one of json, text", cfg.Telemetry.Logging.Format)
	}

	return nil
}
