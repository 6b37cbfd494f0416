//go:build linux

package capture

import (
	"context"
	"errors"
	"os"

	"github.com/kevmo314/go-capture/pkg/firewire"
)

// FireWireBackend enumerates IIDC cameras on the IEEE 1394 bus.
type FireWireBackend struct {
	// SysfsDir overrides the bus directory. Defaults to
	// firewire.DefaultSysfsDir.
	SysfsDir string
}

func (b *FireWireBackend) Type() DeviceType { return DeviceTypeFirewire }

func (b *FireWireBackend) Name() string { return "firewire" }

// Devices lists the IIDC cameras on the bus. A machine without a firewire
// controller has no bus directory at all, which counts as no devices.
func (b *FireWireBackend) Devices(ctx context.Context) ([]DeviceInfo, error) {
	dir := b.SysfsDir
	if dir == "" {
		dir = firewire.DefaultSysfsDir
	}
	nodes, err := firewire.Scan(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var infos []DeviceInfo
	for _, n := range nodes {
		if !n.IsCamera {
			continue
		}
		name := n.Model
		if name == "" {
			name = n.Vendor
		}
		infos = append(infos, DeviceInfo{
			Type:       DeviceTypeFirewire,
			Identifier: n.GUIDString(),
			Name:       name,
			Serial:     n.GUIDString(),
		})
	}
	return infos, nil
}
