package backend

import "fmt"

// UnreachableError reports that every forwarding attempt against a backend
// address failed at the transport level.
type UnreachableError struct {
	// Address is the backend address that could not be reached.
	Address string

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// Cause is the last transport error observed.
	Cause error
}

// Error implements the error interface.
func (e *UnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend not reachable at %s after %d attempts: %v", e.Address, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("backend not reachable at %s after %d attempts", e.Address, e.Attempts)
}

// Unwrap returns the underlying transport error.
func (e *UnreachableError) Unwrap() error {
	return e.Cause
}
