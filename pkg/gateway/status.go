package gateway

import (
	"hermod-hq/hermod/pkg/backend"
	"hermod-hq/hermod/pkg/settings"
)

// Status is the gateway's self-report, served on the status path for
// dashboards and health checks.
type Status struct {
	Gateway          string             `json:"gateway"`
	BackendConnected bool               `json:"backend_connected"`
	BackendAddress   string             `json:"backend_address"`
	Preference       bool               `json:"preference"`
	Instances        []backend.Instance `json:"instances"`
}

// BuildStatus assembles the status document from the registry's latest
// snapshot and the persisted preference.
func BuildStatus(registry *backend.Registry, store *settings.Store) Status {
	instances, connected := registry.Snapshot()
	if instances == nil {
		instances = []backend.Instance{}
	}

	return Status{
		Gateway:          "running",
		BackendConnected: connected,
		BackendAddress:   registry.Primary(),
		Preference:       store.AutoFocus(),
		Instances:        instances,
	}
}
