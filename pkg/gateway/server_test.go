package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hermod-hq/hermod/pkg/backend"
	"hermod-hq/hermod/pkg/config"
	"hermod-hq/hermod/pkg/editor"
	"hermod-hq/hermod/pkg/settings"
)

// scriptedProber reports the primary up or down.
type scriptedProber struct {
	mu sync.Mutex
	up bool
}

func (p *scriptedProber) Probe(ctx context.Context, address string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.up
}

func testServer(t *testing.T, f Forwarder, prober backend.Prober) (*Server, *settings.Store) {
	t.Helper()

	cfg := config.DefaultConfig()
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}

	registry := backend.NewRegistry(prober, "127.0.0.1:8081", []string{"127.0.0.1:8081"}, 0, nil)
	handler := editor.NewHandler(stubManager{}, "Editor.exe", store)
	router := NewRouter(f, handler, nil)

	return NewServer(cfg, router, registry, store, nil), store
}

func TestServer_StatusReport(t *testing.T) {
	srv, store := testServer(t, &stubForwarder{address: "127.0.0.1:8081"}, &scriptedProber{up: true})
	if err := store.SetAutoFocus(true); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("status is not JSON: %v", err)
	}
	if status.Gateway != "running" {
		t.Errorf("expected gateway running, got %q", status.Gateway)
	}
	if !status.BackendConnected {
		t.Error("expected backend connected")
	}
	if status.BackendAddress != "127.0.0.1:8081" {
		t.Errorf("unexpected backend address %q", status.BackendAddress)
	}
	if !status.Preference {
		t.Error("expected preference true")
	}
	if len(status.Instances) != 1 || status.Instances[0].Label != "Host" {
		t.Errorf("unexpected instances: %+v", status.Instances)
	}
}

func TestServer_StatusTriggersRefresh(t *testing.T) {
	prober := &scriptedProber{up: false}
	srv, _ := testServer(t, &stubForwarder{address: "127.0.0.1:8081"}, prober)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get := func() Status {
		resp, err := http.Get(ts.URL + "/status")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var status Status
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatal(err)
		}
		return status
	}

	if get().BackendConnected {
		t.Fatal("expected backend down initially")
	}

	// The backend comes up; the next status query must notice without
	// waiting for a timer tick.
	prober.mu.Lock()
	prober.up = true
	prober.mu.Unlock()

	if !get().BackendConnected {
		t.Error("expected status query to refresh connectivity")
	}
}

func TestServer_UnknownPathIs404(t *testing.T) {
	srv, _ := testServer(t, &stubForwarder{address: "127.0.0.1:8081"}, &scriptedProber{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/other", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServer_RPCRequiresPost(t *testing.T) {
	srv, _ := testServer(t, &stubForwarder{address: "127.0.0.1:8081"}, &scriptedProber{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestServer_LocalActionOverHTTP(t *testing.T) {
	srv, _ := testServer(t, &stubForwarder{address: "127.0.0.1:8081"}, &scriptedProber{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"manage_editor","arguments":{"action":"get_settings"}},"id":5}`
	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if id := resp.Header.Get("X-Request-ID"); id == "" {
		t.Error("expected a request ID on the response")
	}

	var parsed struct {
		Result map[string]any  `json:"result"`
		ID     json.RawMessage `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if string(parsed.ID) != "5" {
		t.Errorf("expected id 5 echoed, got %s", parsed.ID)
	}
	if _, ok := parsed.Result["content"]; !ok {
		t.Errorf("expected content-wrapped result, got %v", parsed.Result)
	}
}

func TestServer_ForwardedErrorRidesA200(t *testing.T) {
	f := &stubForwarder{
		address: "127.0.0.1:8081",
		err:     &backend.UnreachableError{Address: "127.0.0.1:8081", Attempts: 30},
	}
	srv, _ := testServer(t, f, &scriptedProber{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","method":"tools/list","id":1}`
	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("protocol errors ride a 200, got %d", resp.StatusCode)
	}

	var parsed struct {
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Error == nil || parsed.Error.Code != -32000 {
		t.Errorf("expected -32000 envelope, got %+v", parsed.Error)
	}
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	srv, _ := testServer(t, &stubForwarder{address: "127.0.0.1:8081"}, &scriptedProber{})
	srv.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("start returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Error("server did not stop on context cancel")
	}
}
