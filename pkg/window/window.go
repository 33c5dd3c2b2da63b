// Package window abstracts platform window-focus operations: finding the
// editor's main window, raising it, and restoring whatever had focus before.
//
// Only Windows has a real implementation; on every other platform the
// operations report unsupported and the gateway degrades gracefully.
package window

import "errors"

// Handle identifies a native window. Zero means no window.
type Handle uintptr

// ErrUnsupported is returned on platforms without window management.
var ErrUnsupported = errors.New("window management is not supported on this platform")

// ErrNotFound is returned when no window matches the requested process.
var ErrNotFound = errors.New("no matching window found")

// Manager performs window-focus operations for a single desktop session.
type Manager interface {
	// Supported reports whether this platform can manage windows at all.
	Supported() bool

	// Foreground returns the currently focused window, or zero.
	Foreground() Handle

	// Find locates the main visible window of the named process.
	Find(processName string) (Handle, error)

	// Raise brings the window to the foreground. It reports whether the
	// window actually took focus; the platform may refuse.
	Raise(h Handle) bool

	// Restore gives focus back to a previously captured window.
	Restore(h Handle) bool
}
