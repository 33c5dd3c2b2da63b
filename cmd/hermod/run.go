package main

import (
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"hermod-hq/hermod/pkg/backend"
	"hermod-hq/hermod/pkg/config"
	"hermod-hq/hermod/pkg/editor"
	"hermod-hq/hermod/pkg/gateway"
	"hermod-hq/hermod/pkg/settings"
	"hermod-hq/hermod/pkg/telemetry/logging"
	"hermod-hq/hermod/pkg/telemetry/metrics"
	"hermod-hq/hermod/pkg/window"
)

var runFlags struct {
	listenAddress  string
	backendAddress string
	logFile        string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway on its stable listen address.

The gateway forwards JSON-RPC requests to the backend, retrying through
reload gaps, answers window-focus actions locally, and serves connectivity
on /status.

Examples:
  # Start with default config
  hermod run

  # Start with custom config
  hermod run --config /etc/hermod/config.yaml

  # Override the backend address
  hermod run --backend 127.0.0.1:8085`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.backendAddress, "backend", "", "override backend address (host:port)")
	runCmd.Flags().StringVar(&runFlags.logFile, "log-file", "", "append logs to this file in addition to stderr")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Gateway.ListenAddress = runFlags.listenAddress
	}
	if runFlags.backendAddress != "" {
		host, portStr, err := net.SplitHostPort(runFlags.backendAddress)
		if err != nil {
			return fmt.Errorf("invalid --backend address %q: %w", runFlags.backendAddress, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid --backend port %q: %w", portStr, err)
		}
		cfg.Backend.Host = host
		cfg.Backend.Port = port
	}
	if runFlags.logFile != "" {
		cfg.Telemetry.Logging.File = runFlags.logFile
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closeLog, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
		File:   cfg.Telemetry.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLog()

	slog.Info("starting hermod",
		"version", Version,
		"listen", cfg.Gateway.ListenAddress,
		"backend", cfg.Backend.Address(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings, persisted across restarts.
	store := settings.NewStore(cfg.Settings.Path)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if cfg.Settings.Watch {
		go func() {
			if err := settings.Watch(ctx, store); err != nil {
				slog.Warn("settings watcher exited", "error", err)
			}
		}()
	}

	// Metrics are optional; a nil collector disables recording everywhere.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector("hermod")
	}

	// Discovery: the registry tracks backend instances, the refresher drives
	// it on a timer.
	prober := backend.NewHTTPProber(cfg.Backend.ProbeTimeout)
	registry := backend.NewRegistry(prober, cfg.Backend.Address(), cfg.CandidateAddresses(), cfg.Discovery.Interval, collector)
	refresher := backend.NewRefresher(registry, cfg.Discovery.Interval)
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}
	defer refresher.Stop()

	// Forwarding and local actions.
	forwarder := backend.NewForwarder(cfg.Backend.Address(), backend.ForwarderConfig{
		RequestTimeout: cfg.Backend.RequestTimeout,
		MaxAttempts:    cfg.Backend.MaxAttempts,
		RetryDelay:     cfg.Backend.RetryDelay,
	}, collector)
	handler := editor.NewHandler(window.New(), cfg.Window.ProcessName, store)
	router := gateway.NewRouter(forwarder, handler, collector)

	srv := gateway.NewServer(cfg, router, registry, store, collector)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("gateway exited: %w", err)
	}

	slog.Info("hermod stopped")
	return nil
}
