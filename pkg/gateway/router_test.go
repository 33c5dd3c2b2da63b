package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"hermod-hq/hermod/pkg/backend"
	"hermod-hq/hermod/pkg/editor"
	"hermod-hq/hermod/pkg/settings"
	"hermod-hq/hermod/pkg/window"
)

// stubForwarder scripts the backend side of the router.
type stubForwarder struct {
	address  string
	response []byte
	err      error
	calls    int
	lastBody []byte
}

func (f *stubForwarder) Forward(ctx context.Context, body []byte) ([]byte, error) {
	f.calls++
	f.lastBody = body
	return f.response, f.err
}

func (f *stubForwarder) Address() string { return f.address }

// stubManager is a minimal unsupported-platform window manager.
type stubManager struct{}

func (stubManager) Supported() bool                    { return false }
func (stubManager) Foreground() window.Handle          { return 0 }
func (stubManager) Find(string) (window.Handle, error) { return 0, window.ErrUnsupported }
func (stubManager) Raise(window.Handle) bool           { return false }
func (stubManager) Restore(window.Handle) bool         { return false }

func testRouter(t *testing.T, f Forwarder) *Router {
	t.Helper()
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	handler := editor.NewHandler(stubManager{}, "Editor.exe", store)
	return NewRouter(f, handler, nil)
}

func TestRouter_LocalActionNeverContactsBackend(t *testing.T) {
	// A forwarder that fails loudly proves the backend is never consulted.
	f := &stubForwarder{address: "127.0.0.1:9", err: errors.New("must not be called")}
	rt := testRouter(t, f)

	body := []byte(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"manage_editor","arguments":{"action":"get_settings"}},"id":"42"}`)
	out := rt.Route(context.Background(), body)

	if f.calls != 0 {
		t.Fatalf("local action contacted the backend %d times", f.calls)
	}

	var resp struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  map[string]any  `json:"result"`
		ID      json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if string(resp.ID) != `"42"` {
		t.Errorf("expected id \"42\" echoed, got %s", resp.ID)
	}
	if _, ok := resp.Result["content"]; !ok {
		t.Errorf("expected content-wrapped result, got %v", resp.Result)
	}
}

func TestRouter_ForwardsUntouched(t *testing.T) {
	backendResponse := []byte(`{"jsonrpc":"2.0","result":{"tools":[]},"id":3}`)
	f := &stubForwarder{address: "127.0.0.1:8081", response: backendResponse}
	rt := testRouter(t, f)

	body := []byte(`{"jsonrpc":"2.0","method":"tools/list","id":3}`)
	out := rt.Route(context.Background(), body)

	if f.calls != 1 {
		t.Fatalf("expected one forward, got %d", f.calls)
	}
	if string(f.lastBody) != string(body) {
		t.Errorf("request modified before forwarding:\nwant %s\ngot  %s", body, f.lastBody)
	}
	if string(out) != string(backendResponse) {
		t.Errorf("response modified after forwarding:\nwant %s\ngot  %s", backendResponse, out)
	}
}

func TestRouter_MalformedBodyIsForwarded(t *testing.T) {
	f := &stubForwarder{address: "127.0.0.1:8081", response: []byte(`{"jsonrpc":"2.0","error":{"code":-32700,"message":"parse error"},"id":null}`)}
	rt := testRouter(t, f)

	out := rt.Route(context.Background(), []byte(`{not json`))

	if f.calls != 1 {
		t.Fatal("expected malformed body to be forwarded for the backend to reject")
	}
	if string(f.lastBody) != `{not json` {
		t.Errorf("malformed body modified before forwarding: %s", f.lastBody)
	}
	if !strings.Contains(string(out), "-32700") {
		t.Errorf("expected backend rejection passed through, got %s", out)
	}
}

func TestRouter_UnreachableBackendError(t *testing.T) {
	f := &stubForwarder{
		address: "127.0.0.1:8081",
		err:     &backend.UnreachableError{Address: "127.0.0.1:8081", Attempts: 30},
	}
	rt := testRouter(t, f)

	out := rt.Route(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":7}`))

	var resp struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", out)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("expected code -32000, got %d", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "127.0.0.1:8081") {
		t.Errorf("expected message to name the backend address, got %q", resp.Error.Message)
	}
	if string(resp.ID) != "7" {
		t.Errorf("expected id 7 echoed, got %s", resp.ID)
	}
}

func TestRouter_UnreachableWithUnparseableBody(t *testing.T) {
	f := &stubForwarder{
		address: "127.0.0.1:8081",
		err:     &backend.UnreachableError{Address: "127.0.0.1:8081", Attempts: 30},
	}
	rt := testRouter(t, f)

	out := rt.Route(context.Background(), []byte(`{not json`))

	var resp struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if string(resp.ID) != "null" {
		t.Errorf("expected null id for unparseable body, got %s", resp.ID)
	}
}
