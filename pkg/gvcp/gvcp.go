// This file implements the GVCP packet framing defined in the GigE Vision
// spec 2.0, section 15.
package gvcp

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	ErrInvalidPacket = errors.New("invalid gvcp packet")
)

// Port is the UDP port GVCP devices listen on.
const Port = 3956

// HeaderSize is the marshaled length of a command or ack header.
const HeaderSize = 8

// commandKey is the fixed first byte of every command packet.
const commandKey = 0x42

type PacketFlag byte

const (
	PacketFlagAckRequired       PacketFlag = 0x01
	PacketFlagAllowBroadcastAck PacketFlag = 0x10
)

type Command uint16

const (
	CommandDiscovery    Command = 0x0002
	CommandDiscoveryAck Command = 0x0003
	CommandForceIP      Command = 0x0004
	CommandForceIPAck   Command = 0x0005
	CommandPacketResend Command = 0x0040
	CommandReadReg      Command = 0x0080
	CommandReadRegAck   Command = 0x0081
	CommandWriteReg     Command = 0x0082
	CommandWriteRegAck  Command = 0x0083
	CommandReadMem      Command = 0x0084
	CommandReadMemAck   Command = 0x0085
	CommandWriteMem     Command = 0x0086
	CommandWriteMemAck  Command = 0x0087
	CommandPendingAck   Command = 0x0089
	CommandEvent        Command = 0x00c0
	CommandEventAck     Command = 0x00c1
	CommandEventData    Command = 0x00c2
	CommandEventDataAck Command = 0x00c3
	CommandAction       Command = 0x0100
	CommandActionAck    Command = 0x0101
)

type Status uint16

const (
	StatusSuccess           Status = 0x0000
	StatusPacketResend      Status = 0x0100
	StatusNotImplemented    Status = 0x8001
	StatusInvalidParameter  Status = 0x8002
	StatusInvalidAddress    Status = 0x8003
	StatusWriteProtect      Status = 0x8004
	StatusBadAlignment      Status = 0x8005
	StatusAccessDenied      Status = 0x8006
	StatusBusy              Status = 0x8007
	StatusPacketUnavailable Status = 0x800c
	StatusDataOverrun       Status = 0x800d
	StatusInvalidHeader     Status = 0x800e
	StatusError             Status = 0x8fff
)

// CommandHeader is the 8 byte header every GVCP command starts with. ID is
// echoed by the matching ack and must be nonzero.
type CommandHeader struct {
	Flags   PacketFlag
	Command Command
	Length  uint16
	ID      uint16
}

func (h *CommandHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	buf[0] = commandKey
	buf[1] = byte(h.Flags)
	binary.BigEndian.PutUint16(buf[2:4], uint16(h.Command))
	binary.BigEndian.PutUint16(buf[4:6], h.Length)
	binary.BigEndian.PutUint16(buf[6:8], h.ID)
	return buf, nil
}

func (h *CommandHeader) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return io.ErrShortBuffer
	}
	if buf[0] != commandKey {
		return ErrInvalidPacket
	}
	h.Flags = PacketFlag(buf[1])
	h.Command = Command(binary.BigEndian.Uint16(buf[2:4]))
	h.Length = binary.BigEndian.Uint16(buf[4:6])
	h.ID = binary.BigEndian.Uint16(buf[6:8])
	return nil
}

// AckHeader is the 8 byte header every GVCP acknowledge starts with. Command
// holds the ack counterpart of the command being answered.
type AckHeader struct {
	Status  Status
	Command Command
	Length  uint16
	ID      uint16
}

func (h *AckHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], uint16(h.Status))
	binary.BigEndian.PutUint16(buf[2:4], uint16(h.Command))
	binary.BigEndian.PutUint16(buf[4:6], h.Length)
	binary.BigEndian.PutUint16(buf[6:8], h.ID)
	return buf, nil
}

func (h *AckHeader) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return io.ErrShortBuffer
	}
	h.Status = Status(binary.BigEndian.Uint16(buf[0:2]))
	h.Command = Command(binary.BigEndian.Uint16(buf[2:4]))
	h.Length = binary.BigEndian.Uint16(buf[4:6])
	h.ID = binary.BigEndian.Uint16(buf[6:8])
	return nil
}
