package editor

import (
	"path/filepath"
	"testing"

	"hermod-hq/hermod/pkg/rpc"
	"hermod-hq/hermod/pkg/settings"
	"hermod-hq/hermod/pkg/window"
)

// fakeManager scripts platform window behavior for tests.
type fakeManager struct {
	supported  bool
	foreground window.Handle
	editor     window.Handle
	findErr    error
	raised     []window.Handle
	restored   []window.Handle
}

func (m *fakeManager) Supported() bool           { return m.supported }
func (m *fakeManager) Foreground() window.Handle { return m.foreground }

func (m *fakeManager) Find(processName string) (window.Handle, error) {
	if m.findErr != nil {
		return 0, m.findErr
	}
	return m.editor, nil
}

func (m *fakeManager) Raise(h window.Handle) bool {
	m.raised = append(m.raised, h)
	return true
}

func (m *fakeManager) Restore(h window.Handle) bool {
	m.restored = append(m.restored, h)
	return true
}

func testHandler(t *testing.T, m window.Manager) *Handler {
	t.Helper()
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	return NewHandler(m, "Editor.exe", store)
}

func callRequest(t *testing.T, action string, enabled bool) *rpc.Request {
	t.Helper()
	body := `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"manage_editor","arguments":{"action":"` + action + `"`
	if enabled {
		body += `,"enabled":true`
	}
	body += `}},"id":1}`
	req, err := rpc.ParseRequest([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestMatchAction(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantAction string
		wantMatch  bool
	}{
		{
			"focus action",
			`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"manage_editor","arguments":{"action":"focus"}},"id":1}`,
			ActionFocus, true,
		},
		{
			"set_auto_focus action",
			`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"manage_editor","arguments":{"action":"set_auto_focus","enabled":true}},"id":1}`,
			ActionSetAutoFocus, true,
		},
		{
			"other manage_editor action is forwarded",
			`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"manage_editor","arguments":{"action":"play"}},"id":1}`,
			"", false,
		},
		{
			"other tool is forwarded",
			`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"read_console","arguments":{"action":"focus"}},"id":1}`,
			"", false,
		},
		{
			"non tools/call is forwarded",
			`{"jsonrpc":"2.0","method":"tools/list","id":1}`,
			"", false,
		},
		{
			"malformed params are forwarded",
			`{"jsonrpc":"2.0","method":"tools/call","params":[1,2],"id":1}`,
			"", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := rpc.ParseRequest([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			action, _, ok := MatchAction(req)
			if ok != tt.wantMatch {
				t.Fatalf("expected match=%v, got %v", tt.wantMatch, ok)
			}
			if action != tt.wantAction {
				t.Errorf("expected action %q, got %q", tt.wantAction, action)
			}
		})
	}
}

func TestHandler_FocusSavesPrevious(t *testing.T) {
	m := &fakeManager{supported: true, foreground: 42, editor: 7}
	h := testHandler(t, m)

	action, args, ok := MatchAction(callRequest(t, "focus", false))
	if !ok {
		t.Fatal("expected focus to match")
	}
	result := h.Handle(action, args)

	if result["success"] != true {
		t.Fatalf("expected success, got %v", result)
	}
	if result["previous_window_saved"] != true {
		t.Error("expected previous window to be saved")
	}
	if result["handled_by"] != "gateway" {
		t.Errorf("expected handled_by gateway, got %v", result["handled_by"])
	}
	if len(m.raised) != 1 || m.raised[0] != 7 {
		t.Errorf("expected editor window raised, got %v", m.raised)
	}
}

func TestHandler_RestoreFocusIsOneShot(t *testing.T) {
	m := &fakeManager{supported: true, foreground: 42, editor: 7}
	h := testHandler(t, m)

	h.Handle(ActionFocus, Args{})

	first := h.Handle(ActionRestoreFocus, Args{})
	if first["success"] != true {
		t.Fatalf("expected restore to succeed, got %v", first)
	}
	if len(m.restored) != 1 || m.restored[0] != 42 {
		t.Errorf("expected previous window 42 restored, got %v", m.restored)
	}

	second := h.Handle(ActionRestoreFocus, Args{})
	if second["success"] != false {
		t.Errorf("expected second restore to report nothing to restore, got %v", second)
	}
}

func TestHandler_RestoreWithoutFocus(t *testing.T) {
	m := &fakeManager{supported: true}
	h := testHandler(t, m)

	result := h.Handle(ActionRestoreFocus, Args{})
	if result["success"] != false {
		t.Errorf("expected failure without a saved window, got %v", result)
	}
}

func TestHandler_FocusWindowNotFound(t *testing.T) {
	m := &fakeManager{supported: true, foreground: 42, findErr: window.ErrNotFound}
	h := testHandler(t, m)

	result := h.Handle(ActionFocus, Args{})
	if result["success"] != false {
		t.Fatalf("expected failure when window missing, got %v", result)
	}
	if len(m.raised) != 0 {
		t.Error("expected no raise when window missing")
	}
}

func TestHandler_SetAutoFocusPersists(t *testing.T) {
	m := &fakeManager{supported: true}
	h := testHandler(t, m)

	result := h.Handle(ActionSetAutoFocus, Args{Enabled: true})
	if result["success"] != true || result["auto_focus"] != true {
		t.Fatalf("unexpected result: %v", result)
	}

	got := h.Handle(ActionGetSettings, Args{})
	if got["auto_focus"] != true {
		t.Errorf("expected get_settings to reflect the update, got %v", got)
	}
	if _, ok := got["has_previous_window"]; !ok {
		t.Error("expected has_previous_window in settings result")
	}
	if _, ok := got["platform"]; !ok {
		t.Error("expected platform in settings result")
	}
}

func TestHandler_UnsupportedPlatform(t *testing.T) {
	m := &fakeManager{supported: false}
	h := testHandler(t, m)

	for _, action := range []string{ActionFocus, ActionRestoreFocus, ActionSetAutoFocus, ActionGetSettings} {
		result := h.Handle(action, Args{})
		if result["success"] != false {
			t.Errorf("action %s: expected unsupported platform to decline, got %v", action, result)
		}
		if result["handled_by"] != "gateway" {
			t.Errorf("action %s: expected handled_by gateway", action)
		}
	}
}

func TestContentResult(t *testing.T) {
	result := ContentResult(map[string]any{"success": true})

	content, ok := result["content"].([]map[string]any)
	if !ok || len(content) != 1 {
		t.Fatalf("expected single content block, got %v", result)
	}
	if content[0]["type"] != "text" {
		t.Errorf("expected text block, got %v", content[0])
	}
	text, _ := content[0]["text"].(string)
	if text == "" || text[0] != '{' {
		t.Errorf("expected JSON text payload, got %q", text)
	}
}
