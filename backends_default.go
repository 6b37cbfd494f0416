//go:build !linux

package capture

// DefaultBackends returns the backends available on this platform. V4L2 and
// FireWire enumeration are Linux interfaces; off Linux only network
// discovery works.
func DefaultBackends() []Backend {
	return []Backend{
		&AravisBackend{},
	}
}
