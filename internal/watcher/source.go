// internal/watcher/source.go
package watcher

import "github.com/tamzrod/netclass/internal/netclass"

// Source abstracts the OS connectivity facility the watcher depends on.
//
// onChange may be called from any goroutine, including after Stop has
// returned; the watcher ignores callbacks from a previous activation.
type Source interface {
	// Reading takes one snapshot. It may block on the OS.
	Reading() (netclass.Reading, error)
	// Start activates change notifications.
	Start(onChange func()) error
	// Stop deactivates change notifications.
	Stop() error
}

// Factory creates the OS source. ONE attempt per call.
type Factory func() (Source, error)

// ActivationError means the source could not start notifying.
// The subscription that triggered activation was not established.
type ActivationError struct {
	Err error
}

func (e *ActivationError) Error() string {
	return "watcher: activate source: " + e.Err.Error()
}

func (e *ActivationError) Unwrap() error { return e.Err }

// DeactivationError means the source failed to stop.
// Listener bookkeeping has been cleaned up regardless.
type DeactivationError struct {
	Err error
}

func (e *DeactivationError) Error() string {
	return "watcher: deactivate source: " + e.Err.Error()
}

func (e *DeactivationError) Unwrap() error { return e.Err }
