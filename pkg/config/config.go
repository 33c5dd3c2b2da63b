// Package config defines the gateway configuration, loaded from an optional
// YAML file with defaults, HERMOD_* environment overrides, and validation.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration for the gateway process.
type Config struct {
	// Gateway configures the stable-address HTTP listener.
	Gateway GatewayConfig `yaml:"gateway"`

	// Backend configures the primary backend address and forwarding policy.
	Backend BackendConfig `yaml:"backend"`

	// Discovery configures the periodic scan for additional backend instances.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Settings configures the persisted gateway settings file.
	Settings SettingsConfig `yaml:"settings"`

	// Window configures the window-focus capability.
	Window WindowConfig `yaml:"window"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GatewayConfig configures the HTTP listener.
//
// The server deliberately has no write timeout: a forwarded request may
// legitimately block for attempts x (timeout + delay) while the backend
// restarts, and the gateway must never time out a request the backend is
// still working on.
type GatewayConfig struct {
	// ListenAddress is the stable address clients connect to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading of an inbound request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// IdleTimeout bounds idle keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// BackendConfig configures the primary backend and the forwarding engine.
type BackendConfig struct {
	// Host is the backend host, shared by all discovery candidates.
	Host string `yaml:"host"`

	// Port is the primary backend port.
	Port int `yaml:"port"`

	// ProbeTimeout bounds a single liveness probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// RequestTimeout bounds a single forwarding attempt. It must exceed the
	// backend's own worst-case processing time.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxAttempts is the number of forwarding attempts before giving up.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the fixed delay between forwarding attempts.
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Address returns the dialable primary backend address.
func (c BackendConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DiscoveryConfig configures instance discovery.
type DiscoveryConfig struct {
	// StartPort is the first candidate port. Zero derives it as one above
	// the gateway's own listening port.
	StartPort int `yaml:"start_port"`

	// PortCount is the size of the contiguous candidate range.
	PortCount int `yaml:"port_count"`

	// Interval is both the refresh timer period and the minimum spacing
	// between refreshes triggered by status queries.
	Interval time.Duration `yaml:"interval"`
}

// SettingsConfig configures the persisted settings file.
type SettingsConfig struct {
	// Path is the settings file location.
	Path string `yaml:"path"`

	// Watch reloads the file when it is edited outside the gateway.
	Watch bool `yaml:"watch"`
}

// WindowConfig configures the window-focus capability.
type WindowConfig struct {
	// ProcessName is the executable name whose main window the focus action
	// targets.
	ProcessName string `yaml:"process_name"`
}

// TelemetryConfig groups logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// File is an optional log destination written in addition to stderr.
	File string `yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CandidateAddresses returns the ordered discovery range: PortCount
// contiguous ports on the backend host, starting at StartPort (or one above
// the gateway's listening port when StartPort is zero).
func (c *Config) CandidateAddresses() []string {
	start := c.Discovery.StartPort
	if start == 0 {
		if _, portStr, err := net.SplitHostPort(c.Gateway.ListenAddress); err == nil {
			if port, err := strconv.Atoi(portStr); err == nil {
				start = port + 1
			}
		}
	}
	if start == 0 {
		start = c.Backend.Port
	}

	addrs := make([]string, 0, c.Discovery.PortCount)
	for i := 0; i < c.Discovery.PortCount; i++ {
		addrs = append(addrs, net.JoinHostPort(c.Backend.Host, strconv.Itoa(start+i)))
	}
	return addrs
}
