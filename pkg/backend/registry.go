package backend

import (
	"context"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"hermod-hq/hermod/pkg/telemetry/metrics"
)

// Instance is a discovered backend instance as reported on the status path.
type Instance struct {
	Address   string `json:"address"`
	Connected bool   `json:"connected"`
	Label     string `json:"label"`
}

// Registry maintains the membership and connectivity of backend instances.
//
// Membership is mutated only by Refresh. Snapshot may be called concurrently
// with Refresh: probing happens outside the state lock and the new membership
// is swapped in at the end of a cycle.
type Registry struct {
	prober      Prober
	primary     string
	candidates  []string
	minInterval time.Duration
	metrics     *metrics.Collector

	// refreshMu serializes refresh cycles and guards lastRefresh.
	refreshMu   sync.Mutex
	lastRefresh time.Time

	// mu guards instances.
	mu        sync.RWMutex
	instances map[string]bool

	// now is replaceable in tests.
	now func() time.Time
}

// NewRegistry creates a registry probing the primary address and the given
// candidate range. minInterval rate-limits Refresh regardless of how often it
// is called; mc may be nil.
func NewRegistry(prober Prober, primary string, candidates []string, minInterval time.Duration, mc *metrics.Collector) *Registry {
	return &Registry{
		prober:      prober,
		primary:     primary,
		candidates:  candidates,
		minInterval: minInterval,
		metrics:     mc,
		instances:   make(map[string]bool),
		now:         time.Now,
	}
}

// Primary returns the primary backend address.
func (r *Registry) Primary() string {
	return r.primary
}

// Refresh runs one discovery cycle: probe the primary and every candidate,
// then replace the membership.
//
// It is a no-op when called again before minInterval has elapsed since the
// previous cycle, so the cron timer and status queries cannot compound into
// a probe storm.
//
// Membership rule: an address is kept if it is reachable now, or if it was
// present and connected in the previous cycle — a vanished backend is still
// reported, stale, for exactly one more cycle. The primary address is always
// present regardless of reachability.
func (r *Registry) Refresh(ctx context.Context) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	now := r.now()
	if !r.lastRefresh.IsZero() && now.Sub(r.lastRefresh) < r.minInterval {
		return
	}
	r.lastRefresh = now

	primaryUp := r.prober.Probe(ctx, r.primary)
	r.metrics.RecordProbe()

	results := map[string]bool{r.primary: primaryUp}
	for _, addr := range r.candidates {
		if addr == r.primary {
			// Reuse the primary's result rather than probing it twice.
			continue
		}
		results[addr] = r.prober.Probe(ctx, addr)
		r.metrics.RecordProbe()
	}

	r.mu.RLock()
	prev := make(map[string]bool, len(r.instances))
	for addr, up := range r.instances {
		prev[addr] = up
	}
	r.mu.RUnlock()

	next := make(map[string]bool)
	for addr, up := range results {
		prevUp, seen := prev[addr]
		switch {
		case addr == r.primary:
			next[addr] = up
		case up:
			next[addr] = true
		case seen && prevUp:
			// One-cycle grace: report the vanished instance once, stale.
			next[addr] = false
		}
	}

	r.logTransitions(prev, next)
	r.metrics.SetBackendConnected(primaryUp)

	r.mu.Lock()
	r.instances = next
	r.mu.Unlock()
}

// Snapshot returns the current instances sorted by address, plus whether the
// primary backend is currently connected.
func (r *Registry) Snapshot() ([]Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return labelled(r.instances), r.instances[r.primary]
}

// Connected reports the primary backend's connectivity as of the last cycle.
func (r *Registry) Connected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[r.primary]
}

// logTransitions emits one log line per connectivity change, including the
// first observation of an address. Steady state stays quiet.
func (r *Registry) logTransitions(prev, next map[string]bool) {
	labels := make(map[string]string)
	for _, inst := range labelled(next) {
		labels[inst.Address] = inst.Label
	}

	for addr, up := range next {
		prevUp, seen := prev[addr]
		if seen && prevUp == up {
			continue
		}
		if up {
			slog.Info("backend connected", "label", labels[addr], "address", addr)
		} else {
			slog.Warn("backend disconnected", "label", labels[addr], "address", addr)
		}
		r.metrics.RecordTransition(up)
	}
}

// labelled converts a membership map into a sorted, labelled instance list.
// The lowest-numbered address is "Host"; the rest are "Clone 0", "Clone 1",
// ... in ascending address order.
func labelled(m map[string]bool) []Instance {
	addrs := make([]string, 0, len(m))
	for addr := range m {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		pi, pj := addrPort(addrs[i]), addrPort(addrs[j])
		if pi != pj {
			return pi < pj
		}
		return addrs[i] < addrs[j]
	})

	instances := make([]Instance, 0, len(addrs))
	for i, addr := range addrs {
		label := "Host"
		if i > 0 {
			label = "Clone " + strconv.Itoa(i-1)
		}
		instances = append(instances, Instance{
			Address:   addr,
			Connected: m[addr],
			Label:     label,
		})
	}
	return instances
}

// addrPort extracts the numeric port from host:port for ordering.
func addrPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
