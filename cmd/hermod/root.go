package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hermod",
	Short: "Hermod - resilient JSON-RPC forwarding gateway",
	Long: `Hermod is a forwarding gateway for JSON-RPC backends that restart often.

It keeps a long-lived client connected across backend reloads by:
  - Retrying requests that land in a reload gap
  - Answering editor window-focus actions locally
  - Discovering backend instances on adjacent ports
  - Reporting connectivity on a status endpoint`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
