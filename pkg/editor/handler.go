package editor

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"hermod-hq/hermod/pkg/settings"
	"hermod-hq/hermod/pkg/window"
)

// Handler executes local window-focus actions. It remembers at most one
// previously focused window: focus overwrites it, restore_focus consumes it.
type Handler struct {
	windows  window.Manager
	process  string
	settings *settings.Store

	mu       sync.Mutex
	saved    window.Handle
	hasSaved bool
}

// NewHandler creates a handler managing the window of the named process.
func NewHandler(windows window.Manager, process string, store *settings.Store) *Handler {
	return &Handler{
		windows:  windows,
		process:  process,
		settings: store,
	}
}

// Handle executes a local action and returns its result object. It never
// fails: platform limits and missing windows are reported inside the result,
// the way the dashboard expects them.
func (h *Handler) Handle(action string, args Args) map[string]any {
	if !h.windows.Supported() {
		slog.Debug("window action on unsupported platform", "action", action)
		return map[string]any{
			"success":    false,
			"handled_by": "gateway",
			"error":      fmt.Sprintf("window management is not supported on %s", runtime.GOOS),
		}
	}

	switch action {
	case ActionFocus:
		return h.focus()
	case ActionRestoreFocus:
		return h.restoreFocus()
	case ActionSetAutoFocus:
		return h.setAutoFocus(args.Enabled)
	case ActionGetSettings:
		return h.getSettings()
	default:
		// MatchAction screens actions before they reach here.
		return map[string]any{
			"success":    false,
			"handled_by": "gateway",
			"error":      fmt.Sprintf("unknown action %q", action),
		}
	}
}

func (h *Handler) focus() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Capture whatever is focused now so restore_focus can bring it back.
	previous := h.windows.Foreground()
	savedPrevious := previous != 0
	if savedPrevious {
		h.saved = previous
		h.hasSaved = true
	}

	target, err := h.windows.Find(h.process)
	if err != nil {
		slog.Warn("editor window not found", "process", h.process, "error", err)
		return map[string]any{
			"success":    false,
			"handled_by": "gateway",
			"error":      fmt.Sprintf("could not find editor window for %s", h.process),
		}
	}

	focused := h.windows.Raise(target)
	slog.Info("editor window focused",
		"process", h.process,
		"focused", focused,
		"previous_window_saved", savedPrevious,
	)

	return map[string]any{
		"success":               true,
		"focused":               focused,
		"previous_window_saved": savedPrevious,
		"handled_by":            "gateway",
		"message":               "editor window brought to foreground",
	}
}

func (h *Handler) restoreFocus() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasSaved {
		return map[string]any{
			"success":    false,
			"handled_by": "gateway",
			"error":      "no previous window saved to restore",
		}
	}

	restored := h.windows.Restore(h.saved)
	// One-shot: the saved handle is spent whether or not the restore took.
	h.saved = 0
	h.hasSaved = false

	slog.Info("previous window restored", "restored", restored)
	return map[string]any{
		"success":    true,
		"restored":   restored,
		"handled_by": "gateway",
		"message":    "previous window restored",
	}
}

func (h *Handler) setAutoFocus(enabled bool) map[string]any {
	if err := h.settings.SetAutoFocus(enabled); err != nil {
		// The in-memory value is updated even when the write fails; report
		// success with the new value and leave the disk problem in the log.
		slog.Warn("failed to persist auto-focus preference", "error", err)
	}

	return map[string]any{
		"success":    true,
		"auto_focus": h.settings.AutoFocus(),
		"handled_by": "gateway",
		"message":    fmt.Sprintf("auto-focus set to %t", h.settings.AutoFocus()),
	}
}

func (h *Handler) getSettings() map[string]any {
	h.mu.Lock()
	hasSaved := h.hasSaved
	h.mu.Unlock()

	return map[string]any{
		"success":             true,
		"auto_focus":          h.settings.AutoFocus(),
		"has_previous_window": hasSaved,
		"platform":            runtime.GOOS,
		"handled_by":          "gateway",
	}
}
