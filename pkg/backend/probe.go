package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// probeBody is the minimal liveness request. The backend answers tools/list
// cheaply and without side effects, which makes it a usable ping.
var probeBody = []byte(`{"jsonrpc":"2.0","method":"tools/list","id":"_health"}`)

// Prober reports whether a single backend address is currently responsive.
type Prober interface {
	// Probe issues one liveness round-trip. It never fails loudly: every
	// transport error collapses to false.
	Probe(ctx context.Context, address string) bool
}

// HTTPProber probes a backend address with a short-timeout JSON-RPC request.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober whose round-trips are bounded by timeout.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
	}
}

// Probe implements Prober. Any completed HTTP exchange counts as reachable;
// the response content is irrelevant.
func (p *HTTPProber) Probe(ctx context.Context, address string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+address+"/", bytes.NewReader(probeBody))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return true
}
