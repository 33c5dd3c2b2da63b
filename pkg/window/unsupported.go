//go:build !windows

package window

// New returns the manager for this platform. Non-Windows platforms get a
// stub whose operations all decline.
func New() Manager {
	return unsupported{}
}

type unsupported struct{}

func (unsupported) Supported() bool    { return false }
func (unsupported) Foreground() Handle { return 0 }

func (unsupported) Find(processName string) (Handle, error) { return 0, ErrUnsupported }

func (unsupported) Raise(h Handle) bool   { return false }
func (unsupported) Restore(h Handle) bool { return false }
