// This file implements the discovery exchange defined in the GigE Vision
// spec 2.0, section 16: a broadcast DISCOVERY_CMD answered by one
// DISCOVERY_ACK per device, whose payload mirrors the bootstrap registers.
package gvcp

import (
	"encoding/binary"
	"io"
	"net"
)

// DiscoveryDataSize is the length of a DISCOVERY_ACK payload.
const DiscoveryDataSize = 248

// NewDiscoveryCommand returns the header of a broadcast discovery request.
func NewDiscoveryCommand(id uint16) *CommandHeader {
	return &CommandHeader{
		Flags:   PacketFlagAckRequired | PacketFlagAllowBroadcastAck,
		Command: CommandDiscovery,
		ID:      id,
	}
}

// DiscoveryAck is the payload of a DISCOVERY_ACK packet.
type DiscoveryAck struct {
	SpecVersionMajor uint16
	SpecVersionMinor uint16
	DeviceMode       uint32
	MAC              net.HardwareAddr
	IPConfigOptions  uint32
	IPConfigCurrent  uint32
	CurrentIP        net.IP
	SubnetMask       net.IP
	DefaultGateway   net.IP
	ManufacturerName string
	ModelName        string
	DeviceVersion    string
	ManufacturerInfo string
	SerialNumber     string
	UserDefinedName  string
}

func (da *DiscoveryAck) UnmarshalBinary(buf []byte) error {
	if len(buf) < DiscoveryDataSize {
		return io.ErrShortBuffer
	}
	da.SpecVersionMajor = binary.BigEndian.Uint16(buf[0:2])
	da.SpecVersionMinor = binary.BigEndian.Uint16(buf[2:4])
	da.DeviceMode = binary.BigEndian.Uint32(buf[4:8])
	da.MAC = net.HardwareAddr(append([]byte(nil), buf[10:16]...))
	da.IPConfigOptions = binary.BigEndian.Uint32(buf[16:20])
	da.IPConfigCurrent = binary.BigEndian.Uint32(buf[20:24])
	da.CurrentIP = net.IPv4(buf[36], buf[37], buf[38], buf[39])
	da.SubnetMask = net.IPv4(buf[52], buf[53], buf[54], buf[55])
	da.DefaultGateway = net.IPv4(buf[68], buf[69], buf[70], buf[71])
	da.ManufacturerName = cstring(buf[72:104])
	da.ModelName = cstring(buf[104:136])
	da.DeviceVersion = cstring(buf[136:168])
	da.ManufacturerInfo = cstring(buf[168:216])
	da.SerialNumber = cstring(buf[216:232])
	da.UserDefinedName = cstring(buf[232:248])
	return nil
}

func (da *DiscoveryAck) MarshalBinary() ([]byte, error) {
	buf := make([]byte, DiscoveryDataSize)
	binary.BigEndian.PutUint16(buf[0:2], da.SpecVersionMajor)
	binary.BigEndian.PutUint16(buf[2:4], da.SpecVersionMinor)
	binary.BigEndian.PutUint32(buf[4:8], da.DeviceMode)
	copy(buf[10:16], da.MAC)
	binary.BigEndian.PutUint32(buf[16:20], da.IPConfigOptions)
	binary.BigEndian.PutUint32(buf[20:24], da.IPConfigCurrent)
	if ip := da.CurrentIP.To4(); ip != nil {
		copy(buf[36:40], ip)
	}
	if ip := da.SubnetMask.To4(); ip != nil {
		copy(buf[52:56], ip)
	}
	if ip := da.DefaultGateway.To4(); ip != nil {
		copy(buf[68:72], ip)
	}
	copy(buf[72:104], da.ManufacturerName)
	copy(buf[104:136], da.ModelName)
	copy(buf[136:168], da.DeviceVersion)
	copy(buf[168:216], da.ManufacturerInfo)
	copy(buf[216:232], da.SerialNumber)
	copy(buf[232:248], da.UserDefinedName)
	return buf, nil
}

// DeviceID returns the stable camera identifier: the user defined name when
// one is set, "<manufacturer>-<serial>" otherwise.
func (da *DiscoveryAck) DeviceID() string {
	if da.UserDefinedName != "" {
		return da.UserDefinedName
	}
	return da.ManufacturerName + "-" + da.SerialNumber
}

// cstring interprets buf as a NUL padded string field.
func cstring(buf []byte) string {
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
