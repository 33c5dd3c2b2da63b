package config

import "time"

// Default values. The probe and retry constants mirror the backend's
// behavior during an editor reload: the listener is torn down and re-created
// within seconds, and a single request may take up to 30s of backend time, so
// a forwarding attempt waits twice that before giving up on it.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultBackendHost     = "127.0.0.1"
	DefaultBackendPort     = 8081
	DefaultProbeTimeout    = 2 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxAttempts     = 30
	DefaultRetryDelay      = 1 * time.Second
	DefaultDiscoveryPorts  = 10
	DefaultRefreshInterval = 5 * time.Second
	DefaultSettingsPath    = ".hermod_settings.json"
	DefaultProcessName     = "Unity.exe"
	DefaultMetricsPath     = "/metrics"
)

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Gateway.ListenAddress == "" {
		cfg.Gateway.ListenAddress = DefaultListenAddress
	}
	if cfg.Gateway.ReadTimeout == 0 {
		cfg.Gateway.ReadTimeout = 30 * time.Second
	}
	if cfg.Gateway.IdleTimeout == 0 {
		cfg.Gateway.IdleTimeout = 120 * time.Second
	}
	if cfg.Gateway.ShutdownTimeout == 0 {
		cfg.Gateway.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Backend.Host == "" {
		cfg.Backend.Host = DefaultBackendHost
	}
	if cfg.Backend.Port == 0 {
		cfg.Backend.Port = DefaultBackendPort
	}
	if cfg.Backend.ProbeTimeout == 0 {
		cfg.Backend.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Backend.MaxAttempts == 0 {
		cfg.Backend.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backend.RetryDelay == 0 {
		cfg.Backend.RetryDelay = DefaultRetryDelay
	}

	if cfg.Discovery.PortCount == 0 {
		cfg.Discovery.PortCount = DefaultDiscoveryPorts
	}
	if cfg.Discovery.Interval == 0 {
		cfg.Discovery.Interval = DefaultRefreshInterval
	}

	if cfg.Settings.Path == "" {
		cfg.Settings.Path = DefaultSettingsPath
	}

	if cfg.Window.ProcessName == "" {
		cfg.Window.ProcessName = DefaultProcessName
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "text"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
