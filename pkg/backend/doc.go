// Package backend tracks and talks to the editor backend.
//
// It contains the three pieces that deal with the backend's intermittent
// availability:
//
//   - Prober: a minimal liveness round-trip against a single address.
//   - Registry: periodic discovery of backend instances across a port range,
//     with connectivity tracking and transition logging.
//   - Forwarder: relays raw request envelopes to the primary address,
//     retrying through reload gaps where the backend's listener is briefly
//     torn down.
//
// The registry is the only writer of instance membership; the status path
// reads it through Snapshot. Refreshes are driven both by a cron schedule
// (Refresher) and by status queries, and are rate-limited internally so the
// two sources cannot double-probe.
package backend
