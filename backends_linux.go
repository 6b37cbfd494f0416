//go:build linux

package capture

// DefaultBackends returns the backends available on this platform.
func DefaultBackends() []Backend {
	return []Backend{
		&V4L2Backend{},
		&AravisBackend{},
		&FireWireBackend{},
	}
}
