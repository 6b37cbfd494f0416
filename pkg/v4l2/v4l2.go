//go:build linux

// Package v4l2 provides the minimal pure Go Video4Linux2 surface needed to
// identify video capture devices. It does not use cgo, so it cross-compiles
// for every Linux architecture.
package v4l2

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request codes from <linux/videodev2.h>.
const (
	VIDIOC_QUERYCAP = 0x80685600
)

// capability flags from <linux/videodev2.h>.
const (
	V4L2_CAP_VIDEO_CAPTURE        = 0x00000001
	V4L2_CAP_VIDEO_OUTPUT         = 0x00000002
	V4L2_CAP_VIDEO_CAPTURE_MPLANE = 0x00001000
	V4L2_CAP_META_CAPTURE         = 0x00800000
	V4L2_CAP_READWRITE            = 0x01000000
	V4L2_CAP_STREAMING            = 0x04000000
	V4L2_CAP_DEVICE_CAPS          = 0x80000000
)

type v4l2_capability struct { // size 104
	driver       [16]byte  // offset 0, size 16
	card         [32]byte  // offset 16, size 32
	bus_info     [32]byte  // offset 48, size 32
	version      uint32    // offset 80, size 4
	capabilities uint32    // offset 84, size 4
	device_caps  uint32    // offset 88, size 4
	reserved     [3]uint32 // offset 92, size 12
}

// Capability reports the identity and capability bits of a V4L2 node, as
// returned by VIDIOC_QUERYCAP.
type Capability struct {
	Driver       string
	Card         string
	BusInfo      string
	Version      uint32
	Capabilities uint32
	DeviceCaps   uint32
}

// Caps returns the capability set that applies to the opened node: the per
// node device_caps field when the driver fills it, the global set otherwise.
func (c *Capability) Caps() uint32 {
	if c.Capabilities&V4L2_CAP_DEVICE_CAPS != 0 {
		return c.DeviceCaps
	}
	return c.Capabilities
}

// IsVideoCapture reports whether the node captures video. Metadata nodes of
// the same physical device advertise V4L2_CAP_VIDEO_CAPTURE in the global
// set but not in device_caps, so the per node set decides.
func (c *Capability) IsVideoCapture() bool {
	return c.Caps()&(V4L2_CAP_VIDEO_CAPTURE|V4L2_CAP_VIDEO_CAPTURE_MPLANE) != 0
}

// VersionString renders the driver version in the kernel's a.b.c form.
func (c *Capability) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", (c.Version>>16)&0xff, (c.Version>>8)&0xff, c.Version&0xff)
}

// QueryCap issues VIDIOC_QUERYCAP against the node at path.
func QueryCap(path string) (*Capability, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	var raw v4l2_capability
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), VIDIOC_QUERYCAP, uintptr(unsafe.Pointer(&raw))); errno != 0 {
		return nil, fmt.Errorf("VIDIOC_QUERYCAP %s: %w", path, errno)
	}
	return &Capability{
		Driver:       unix.ByteSliceToString(raw.driver[:]),
		Card:         unix.ByteSliceToString(raw.card[:]),
		BusInfo:      unix.ByteSliceToString(raw.bus_info[:]),
		Version:      raw.version,
		Capabilities: raw.capabilities,
		DeviceCaps:   raw.device_caps,
	}, nil
}
