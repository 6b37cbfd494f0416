package capture

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/kevmo314/go-capture/pkg/gvcp"
)

// AravisBackend discovers GigE Vision cameras with a GVCP discovery
// broadcast and collects the acks cameras answer with.
type AravisBackend struct {
	// Broadcast overrides the discovery destinations. When empty the
	// command goes to the limited broadcast address 255.255.255.255 and
	// to the directed broadcast of every up interface.
	Broadcast string
	// Port overrides the GVCP port, for simulated cameras. Defaults to
	// gvcp.Port.
	Port int
	// LocalAddr pins the source address to one interface when set.
	LocalAddr string
	// Timeout bounds the wait for acks. Defaults to 1s.
	Timeout time.Duration
}

// discoveryRequestID is echoed by every ack belonging to our request.
const discoveryRequestID = 0xffff

func (b *AravisBackend) Type() DeviceType { return DeviceTypeAravis }

func (b *AravisBackend) Name() string { return "aravis" }

// Devices broadcasts a discovery command and returns one DeviceInfo per
// answering camera, deduplicated by MAC. The collection window closing is
// the normal end condition; only a canceled context surfaces as an error.
func (b *AravisBackend) Devices(ctx context.Context) ([]DeviceInfo, error) {
	var infos []DeviceInfo
	err := b.discover(ctx, func(da gvcp.DiscoveryAck) bool {
		name := da.ModelName
		if name == "" {
			name = da.ManufacturerName
		}
		infos = append(infos, DeviceInfo{
			Type:       DeviceTypeAravis,
			Identifier: da.DeviceID(),
			Name:       name,
			Serial:     da.SerialNumber,
		})
		return false
	})
	return infos, err
}

// Resolve broadcasts a discovery command and returns the full ack, current
// addressing included, of the camera whose device ID matches identifier.
// The collection window ends as soon as that camera answers; closing
// unanswered yields ErrDeviceNotFound.
func (b *AravisBackend) Resolve(ctx context.Context, identifier string) (gvcp.DiscoveryAck, error) {
	var found gvcp.DiscoveryAck
	var ok bool
	err := b.discover(ctx, func(da gvcp.DiscoveryAck) bool {
		if da.DeviceID() != identifier {
			return false
		}
		found, ok = da, true
		return true
	})
	if err != nil {
		return gvcp.DiscoveryAck{}, err
	}
	if !ok {
		return gvcp.DiscoveryAck{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, identifier)
	}
	return found, nil
}

// discover sends one discovery command to every destination and hands each
// distinct ack to found, until found reports done or the window closes.
func (b *AravisBackend) discover(ctx context.Context, found func(gvcp.DiscoveryAck) bool) error {
	timeout := b.Timeout
	if timeout == 0 {
		timeout = time.Second
	}
	dsts, err := b.destinations()
	if err != nil {
		return err
	}
	port := b.Port
	if port == 0 {
		port = gvcp.Port
	}
	laddr := &net.UDPAddr{}
	if b.LocalAddr != "" {
		ip := net.ParseIP(b.LocalAddr)
		if ip == nil {
			return fmt.Errorf("parse local address %q: invalid ip", b.LocalAddr)
		}
		laddr.IP = ip
	}

	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return fmt.Errorf("listen udp: %w", err)
	}
	defer conn.Close()
	if err := setBroadcast(conn); err != nil {
		return fmt.Errorf("enable broadcast: %w", err)
	}

	cmd, err := gvcp.NewDiscoveryCommand(discoveryRequestID).MarshalBinary()
	if err != nil {
		return err
	}
	sent := 0
	var sendErr error
	for _, dst := range dsts {
		if _, err := conn.WriteToUDP(cmd, &net.UDPAddr{IP: dst, Port: port}); err != nil {
			sendErr = err
			continue
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("send discovery: %w", sendErr)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	seen := make(map[string]bool)
	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			return fmt.Errorf("read discovery ack: %w", err)
		}
		var ack gvcp.AckHeader
		if err := ack.UnmarshalBinary(buf[:n]); err != nil {
			continue
		}
		if ack.Status != gvcp.StatusSuccess || ack.Command != gvcp.CommandDiscoveryAck || ack.ID != discoveryRequestID {
			continue
		}
		var da gvcp.DiscoveryAck
		if err := da.UnmarshalBinary(buf[gvcp.HeaderSize:n]); err != nil {
			continue
		}
		mac := da.MAC.String()
		if seen[mac] {
			continue
		}
		seen[mac] = true
		if found(da) {
			return nil
		}
	}
	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// destinations returns the addresses a discovery command goes to: the
// configured override alone when set, otherwise the limited broadcast
// address plus the directed broadcast of every up interface.
func (b *AravisBackend) destinations() ([]net.IP, error) {
	if b.Broadcast != "" {
		ip := net.ParseIP(b.Broadcast)
		if ip == nil {
			return nil, fmt.Errorf("parse broadcast address %q: invalid ip", b.Broadcast)
		}
		return []net.IP{ip}, nil
	}
	dsts := []net.IP{net.IPv4bcast}
	ifaces, err := net.Interfaces()
	if err != nil {
		// the limited broadcast alone still reaches the local segment
		return dsts, nil
	}
	seen := map[string]bool{net.IPv4bcast.String(): true}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			bc := directedBroadcast(ipnet)
			if bc == nil || seen[bc.String()] {
				continue
			}
			seen[bc.String()] = true
			dsts = append(dsts, bc)
		}
	}
	return dsts, nil
}

// directedBroadcast returns the broadcast address of an IPv4 network, nil
// for anything else.
func directedBroadcast(n *net.IPNet) net.IP {
	ip := n.IP.To4()
	if ip == nil {
		return nil
	}
	mask := n.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return nil
	}
	bc := make(net.IP, net.IPv4len)
	for i := range bc {
		bc[i] = ip[i] | ^mask[i]
	}
	return bc
}
