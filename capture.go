// Package capture identifies video capture devices across the backends a
// machine may expose them through: V4L2 device nodes, GigE Vision cameras
// answering on the local network, and FireWire nodes.
package capture

import "fmt"

// DeviceType identifies the transport family a capture device is reachable
// through.
type DeviceType int

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeV4L2
	DeviceTypeAravis
	DeviceTypeFirewire
)

// String returns the display name of the device type. Values outside the
// known set, DeviceTypeUnknown included, map to the empty string.
func (t DeviceType) String() string {
	switch t {
	case DeviceTypeV4L2:
		return "V4L2"
	case DeviceTypeAravis:
		return "Aravis"
	case DeviceTypeFirewire:
		return "Firewire"
	default:
		return ""
	}
}

// DeviceInfo describes a single capture device. Identifier is the
// backend-specific address of the device: the node path for V4L2, the camera
// ID for Aravis, the GUID for FireWire. Fields hold whatever the backend
// reported, unvalidated.
type DeviceInfo struct {
	Type       DeviceType
	Identifier string
	Name       string
	Serial     string
}

// CaptureDevice is a value describing one capture device. The zero value
// describes no device: DeviceTypeUnknown with every field empty. Values are
// freely copyable; assignment yields an independent copy.
type CaptureDevice struct {
	info DeviceInfo
}

// NewCaptureDevice wraps info in a CaptureDevice, copying the record as
// given.
func NewCaptureDevice(info DeviceInfo) CaptureDevice {
	return CaptureDevice{info: info}
}

// Info returns a copy of the underlying device record.
func (d CaptureDevice) Info() DeviceInfo { return d.info }

// Name returns the human readable device name.
func (d CaptureDevice) Name() string { return d.info.Name }

// Serial returns the device serial number.
func (d CaptureDevice) Serial() string { return d.info.Serial }

// Identifier returns the backend-specific device address.
func (d CaptureDevice) Identifier() string { return d.info.Identifier }

// Type returns the backend the device belongs to.
func (d CaptureDevice) Type() DeviceType { return d.info.Type }

// String formats the device for logs and listings.
func (d CaptureDevice) String() string {
	if t := d.info.Type.String(); t != "" {
		return fmt.Sprintf("%s [%s %s]", d.info.Name, t, d.info.Identifier)
	}
	return fmt.Sprintf("%s [%s]", d.info.Name, d.info.Identifier)
}
