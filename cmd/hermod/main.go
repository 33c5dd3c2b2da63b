// Hermod is a forwarding gateway that sits between a long-lived client and
// an intermittently available JSON-RPC backend.
//
// It keeps the client's connection stable while the backend restarts or
// reloads: requests that hit a reload gap are retried quietly, window-focus
// actions are answered locally, and additional backend instances on adjacent
// ports are discovered and reported.
//
// Usage:
//
//	# Start the gateway with default configuration
//	hermod run
//
//	# Start with a custom configuration file
//	hermod run --config /path/to/config.yaml
//
//	# Override the backend address
//	hermod run --backend 127.0.0.1:8085
//
//	# Show version information
//	hermod version
package main

func main() {
	Execute()
}
