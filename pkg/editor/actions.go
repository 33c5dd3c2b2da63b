// Package editor implements the window-focus actions the gateway answers
// locally instead of forwarding: raising the editor window, restoring the
// previously focused window, and the auto-focus preference.
package editor

import (
	"encoding/json"

	"hermod-hq/hermod/pkg/rpc"
)

// Actions handled locally. Everything else in the manage_editor tool is the
// backend's business and is forwarded untouched.
const (
	ActionFocus        = "focus"
	ActionRestoreFocus = "restore_focus"
	ActionSetAutoFocus = "set_auto_focus"
	ActionGetSettings  = "get_settings"
)

// toolName is the tool whose focus actions are intercepted.
const toolName = "manage_editor"

// Args carries the arguments a local action can take.
type Args struct {
	Enabled bool `json:"enabled"`
}

// callParams mirrors the params shape of a tools/call request.
type callParams struct {
	Name      string `json:"name"`
	Arguments struct {
		Action  string `json:"action"`
		Enabled bool   `json:"enabled"`
	} `json:"arguments"`
}

// MatchAction reports whether req is a local window-focus action. It matches
// only tools/call requests naming the editor-management tool with one of the
// known actions; everything else — including malformed params — is left for
// the backend.
func MatchAction(req *rpc.Request) (string, Args, bool) {
	if req == nil || req.Method != "tools/call" || len(req.Params) == 0 {
		return "", Args{}, false
	}

	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return "", Args{}, false
	}
	if params.Name != toolName {
		return "", Args{}, false
	}

	switch params.Arguments.Action {
	case ActionFocus, ActionRestoreFocus, ActionSetAutoFocus, ActionGetSettings:
		return params.Arguments.Action, Args{Enabled: params.Arguments.Enabled}, true
	default:
		return "", Args{}, false
	}
}

// ContentResult wraps a result value in the content envelope tool callers
// expect: a single text block holding the pretty-printed JSON.
func ContentResult(v any) map[string]any {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		text = []byte(`{}`)
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	}
}
