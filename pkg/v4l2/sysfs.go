//go:build linux

// This file resolves the sysfs ancestry of a video node to the USB device it
// hangs off, for the serial and vendor strings the V4L2 ioctls do not expose.
package v4l2

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SysfsVideo4Linux is where the kernel registers video nodes.
const SysfsVideo4Linux = "/sys/class/video4linux"

// USBInfo identifies the USB device backing a video node.
type USBInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Serial       string
}

// ResolveUSB follows the device link of a video4linux node name (for example
// "video0") under sysfsDir and walks up to the enclosing USB device
// directory. It returns an error when the node has no USB ancestor, as for
// PCI capture cards.
func ResolveUSB(sysfsDir, node string) (*USBInfo, error) {
	dir, err := filepath.EvalSymlinks(filepath.Join(sysfsDir, node, "device"))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", node, err)
	}
	// The device link lands on the USB interface; idVendor lives on the
	// device directory above it.
	for i := 0; i < 4; i++ {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			return readUSBInfo(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, fmt.Errorf("resolve %s: no usb device in ancestry", node)
}

func readUSBInfo(dir string) (*USBInfo, error) {
	vid, err := readHexAttr(dir, "idVendor")
	if err != nil {
		return nil, err
	}
	pid, err := readHexAttr(dir, "idProduct")
	if err != nil {
		return nil, err
	}
	return &USBInfo{
		VendorID:     vid,
		ProductID:    pid,
		Manufacturer: readAttr(dir, "manufacturer"),
		Product:      readAttr(dir, "product"),
		Serial:       readAttr(dir, "serial"),
	}, nil
}

// readAttr reads a sysfs attribute, returning "" when absent.
func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readHexAttr(dir, name string) (uint16, error) {
	s := readAttr(dir, name)
	if s == "" {
		return 0, fmt.Errorf("read %s: missing attribute", filepath.Join(dir, name))
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", filepath.Join(dir, name), err)
	}
	return uint16(v), nil
}
