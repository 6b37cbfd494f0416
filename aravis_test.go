package capture

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-capture/pkg/gvcp"
)

// fakeCamera answers GVCP discovery commands on a loopback socket with the
// given acks, preceded by a noise packet a scanner must ignore.
func fakeCamera(t *testing.T, acks []*gvcp.DiscoveryAck) int {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 1500)
		for {
			n, src, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			var cmd gvcp.CommandHeader
			if err := cmd.UnmarshalBinary(buf[:n]); err != nil || cmd.Command != gvcp.CommandDiscovery {
				continue
			}
			conn.WriteToUDP([]byte{0xde, 0xad}, src)
			for _, ack := range acks {
				payload, err := ack.MarshalBinary()
				if err != nil {
					return
				}
				hdr, err := (&gvcp.AckHeader{
					Status:  gvcp.StatusSuccess,
					Command: gvcp.CommandDiscoveryAck,
					Length:  uint16(len(payload)),
					ID:      cmd.ID,
				}).MarshalBinary()
				if err != nil {
					return
				}
				conn.WriteToUDP(append(hdr, payload...), src)
			}
		}
	}()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestAravisBackend_Devices(t *testing.T) {
	acks := []*gvcp.DiscoveryAck{
		{
			MAC:              net.HardwareAddr{0x00, 0x07, 0x48, 0x01, 0x02, 0x03},
			ManufacturerName: "The Imaging Source Europe GmbH",
			ModelName:        "DFK 23G445",
			SerialNumber:     "05420123",
		},
		{
			MAC:              net.HardwareAddr{0x00, 0x07, 0x48, 0x0a, 0x0b, 0x0c},
			ManufacturerName: "Basler",
			ModelName:        "acA1300-30gm",
			SerialNumber:     "21799595",
			UserDefinedName:  "inspection-cam",
		},
		{
			// second answer from the first camera, must be folded away
			MAC:              net.HardwareAddr{0x00, 0x07, 0x48, 0x01, 0x02, 0x03},
			ManufacturerName: "The Imaging Source Europe GmbH",
			ModelName:        "DFK 23G445",
			SerialNumber:     "05420123",
		},
	}
	port := fakeCamera(t, acks)

	b := &AravisBackend{
		Broadcast: "127.0.0.1",
		Port:      port,
		Timeout:   250 * time.Millisecond,
	}
	infos, err := b.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, DeviceTypeAravis, infos[0].Type)
	assert.Equal(t, "The Imaging Source Europe GmbH-05420123", infos[0].Identifier)
	assert.Equal(t, "DFK 23G445", infos[0].Name)
	assert.Equal(t, "05420123", infos[0].Serial)

	// the user defined name takes over as identifier when set
	assert.Equal(t, "inspection-cam", infos[1].Identifier)
	assert.Equal(t, "acA1300-30gm", infos[1].Name)
	assert.Equal(t, "21799595", infos[1].Serial)
}

func TestAravisBackend_Resolve(t *testing.T) {
	acks := []*gvcp.DiscoveryAck{
		{
			MAC:              net.HardwareAddr{0x00, 0x07, 0x48, 0x01, 0x02, 0x03},
			CurrentIP:        net.IPv4(192, 168, 1, 64),
			SubnetMask:       net.IPv4(255, 255, 255, 0),
			DefaultGateway:   net.IPv4(192, 168, 1, 1),
			ManufacturerName: "The Imaging Source Europe GmbH",
			ModelName:        "DFK 23G445",
			SerialNumber:     "05420123",
		},
		{
			MAC:              net.HardwareAddr{0x00, 0x07, 0x48, 0x0a, 0x0b, 0x0c},
			CurrentIP:        net.IPv4(192, 168, 1, 65),
			ManufacturerName: "Basler",
			ModelName:        "acA1300-30gm",
			SerialNumber:     "21799595",
			UserDefinedName:  "inspection-cam",
		},
	}
	port := fakeCamera(t, acks)

	b := &AravisBackend{
		Broadcast: "127.0.0.1",
		Port:      port,
		Timeout:   5 * time.Second,
	}
	start := time.Now()
	ack, err := b.Resolve(context.Background(), "The Imaging Source Europe GmbH-05420123")
	require.NoError(t, err)
	assert.Equal(t, "00:07:48:01:02:03", ack.MAC.String())
	assert.Equal(t, "192.168.1.64", ack.CurrentIP.String())
	assert.Equal(t, "255.255.255.0", ack.SubnetMask.String())
	assert.Equal(t, "192.168.1.1", ack.DefaultGateway.String())
	// a matching answer ends the window well before the timeout
	assert.Less(t, time.Since(start), 2*time.Second)

	ack, err = b.Resolve(context.Background(), "inspection-cam")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.65", ack.CurrentIP.String())
	assert.Equal(t, "21799595", ack.SerialNumber)
}

func TestAravisBackend_ResolveUnknown(t *testing.T) {
	port := fakeCamera(t, []*gvcp.DiscoveryAck{{
		MAC:              net.HardwareAddr{0x00, 0x07, 0x48, 0x01, 0x02, 0x03},
		ManufacturerName: "Basler",
		SerialNumber:     "21799595",
	}})

	b := &AravisBackend{
		Broadcast: "127.0.0.1",
		Port:      port,
		Timeout:   150 * time.Millisecond,
	}
	_, err := b.Resolve(context.Background(), "no-such-camera")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestAravisBackend_NoAnswer(t *testing.T) {
	// a listener that never answers, so the window just closes
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	b := &AravisBackend{
		Broadcast: "127.0.0.1",
		Port:      conn.LocalAddr().(*net.UDPAddr).Port,
		Timeout:   100 * time.Millisecond,
	}
	infos, err := b.Devices(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, infos)
}

func TestAravisBackend_BadBroadcast(t *testing.T) {
	b := &AravisBackend{Broadcast: "not-an-ip"}
	_, err := b.Devices(context.Background())
	assert.Error(t, err)
}

func TestAravisBackend_Destinations(t *testing.T) {
	b := &AravisBackend{Broadcast: "10.0.0.255"}
	dsts, err := b.destinations()
	require.NoError(t, err)
	require.Len(t, dsts, 1)
	assert.Equal(t, "10.0.0.255", dsts[0].String())

	// without an override the limited broadcast always comes first
	b = &AravisBackend{}
	dsts, err = b.destinations()
	require.NoError(t, err)
	require.NotEmpty(t, dsts)
	assert.Equal(t, "255.255.255.255", dsts[0].String())
}

func TestDirectedBroadcast(t *testing.T) {
	_, n, err := net.ParseCIDR("192.168.1.20/24")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.255", directedBroadcast(n).String())

	_, n, err = net.ParseCIDR("10.1.2.3/16")
	require.NoError(t, err)
	assert.Equal(t, "10.1.255.255", directedBroadcast(n).String())

	_, n6, err := net.ParseCIDR("fe80::1/64")
	require.NoError(t, err)
	assert.Nil(t, directedBroadcast(n6))
}

func TestAravisBackend_ContextCanceled(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	b := &AravisBackend{
		Broadcast: "127.0.0.1",
		Port:      conn.LocalAddr().(*net.UDPAddr).Port,
		Timeout:   5 * time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = b.Devices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second, "cancel should cut the window short")
}
