//go:build linux

package capture

import (
	"context"
	"fmt"
	"path/filepath"

	usb "github.com/kevmo314/go-usb"

	"github.com/kevmo314/go-capture/pkg/v4l2"
)

// V4L2Backend enumerates local Video4Linux2 capture nodes.
type V4L2Backend struct {
	// DevDir is where video nodes live. Defaults to /dev.
	DevDir string
	// SysfsDir is the video4linux class directory. Defaults to
	// /sys/class/video4linux.
	SysfsDir string
}

func (b *V4L2Backend) Type() DeviceType { return DeviceTypeV4L2 }

func (b *V4L2Backend) Name() string { return "v4l2" }

// Devices lists the capture nodes under DevDir. Nodes that cannot be opened
// or that expose no video capture capability (metadata nodes, output nodes)
// are skipped.
func (b *V4L2Backend) Devices(ctx context.Context) ([]DeviceInfo, error) {
	devDir := b.DevDir
	if devDir == "" {
		devDir = "/dev"
	}
	paths, err := filepath.Glob(filepath.Join(devDir, "video*"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", devDir, err)
	}
	var infos []DeviceInfo
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return infos, err
		}
		caps, err := v4l2.QueryCap(path)
		if err != nil {
			continue
		}
		if !caps.IsVideoCapture() {
			continue
		}
		infos = append(infos, DeviceInfo{
			Type:       DeviceTypeV4L2,
			Identifier: path,
			Name:       caps.Card,
			Serial:     b.serial(filepath.Base(path)),
		})
	}
	return infos, nil
}

// serial resolves the device serial over sysfs, falling back to the USB
// device list when the sysfs serial attribute is absent.
func (b *V4L2Backend) serial(node string) string {
	sysfsDir := b.SysfsDir
	if sysfsDir == "" {
		sysfsDir = v4l2.SysfsVideo4Linux
	}
	u, err := v4l2.ResolveUSB(sysfsDir, node)
	if err != nil {
		return ""
	}
	if u.Serial != "" {
		return u.Serial
	}
	devices, err := usb.DeviceList()
	if err != nil {
		return ""
	}
	for _, dev := range devices {
		if uint16(dev.Descriptor.VendorID) != u.VendorID || uint16(dev.Descriptor.ProductID) != u.ProductID {
			continue
		}
		if dev.SysfsStrings != nil && dev.SysfsStrings.Serial != "" {
			return dev.SysfsStrings.Serial
		}
	}
	return ""
}
