package capture

import "errors"

var (
	// ErrStopTimeout is returned by Monitor.Stop when the scan goroutine
	// does not finish before the context expires.
	ErrStopTimeout = errors.New("stop timed out")

	// ErrDeviceNotFound is returned by AravisBackend.Resolve when no
	// answering camera carries the requested identifier.
	ErrDeviceNotFound = errors.New("device not found")
)
