package capture

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Backend enumerates the capture devices reachable through one transport
// family.
type Backend interface {
	// Type is the DeviceType of every device the backend produces.
	Type() DeviceType
	// Name is a short backend name for logs and tools.
	Name() string
	// Devices enumerates the devices currently visible to the backend.
	Devices(ctx context.Context) ([]DeviceInfo, error)
}

// Discover runs every backend and collects the union of their devices,
// sorted by type then identifier. A failing backend does not suppress the
// others: its error comes back joined, next to whatever devices were found.
// The device slice is never nil.
func Discover(ctx context.Context, backends ...Backend) ([]CaptureDevice, error) {
	devices := []CaptureDevice{}
	var errs []error
	for _, b := range backends {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		infos, err := b.Devices(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		for _, info := range infos {
			devices = append(devices, NewCaptureDevice(info))
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		a, b := devices[i].Info(), devices[j].Info()
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Identifier < b.Identifier
	})
	return devices, errors.Join(errs...)
}
