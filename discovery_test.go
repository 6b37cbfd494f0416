package capture

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	typ  DeviceType
	name string

	mu    sync.Mutex
	infos []DeviceInfo
	err   error
}

func (f *fakeBackend) Type() DeviceType { return f.typ }

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Devices(_ context.Context) ([]DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]DeviceInfo(nil), f.infos...), nil
}

func (f *fakeBackend) set(infos []DeviceInfo, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = infos
	f.err = err
}

func TestDiscover(t *testing.T) {
	v := &fakeBackend{typ: DeviceTypeV4L2, name: "v4l2", infos: []DeviceInfo{
		{Type: DeviceTypeV4L2, Identifier: "/dev/video2", Name: "Cam B", Serial: "B2"},
		{Type: DeviceTypeV4L2, Identifier: "/dev/video0", Name: "Cam A", Serial: "A0"},
	}}
	a := &fakeBackend{typ: DeviceTypeAravis, name: "aravis", infos: []DeviceInfo{
		{Type: DeviceTypeAravis, Identifier: "Basler-21799595", Name: "acA1300-30gm", Serial: "21799595"},
	}}

	devices, err := Discover(context.Background(), a, v)
	require.NoError(t, err)
	require.Len(t, devices, 3)

	// sorted by type, then identifier
	assert.Equal(t, "/dev/video0", devices[0].Identifier())
	assert.Equal(t, "/dev/video2", devices[1].Identifier())
	assert.Equal(t, "Basler-21799595", devices[2].Identifier())
	assert.Equal(t, "Cam A", devices[0].Name())
	assert.Equal(t, DeviceTypeAravis, devices[2].Type())
}

func TestDiscover_PartialFailure(t *testing.T) {
	working := &fakeBackend{typ: DeviceTypeV4L2, name: "v4l2", infos: []DeviceInfo{
		{Type: DeviceTypeV4L2, Identifier: "/dev/video0", Name: "Cam A"},
	}}
	failing := &fakeBackend{typ: DeviceTypeAravis, name: "aravis", err: errors.New("network is down")}

	devices, err := Discover(context.Background(), working, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aravis")
	assert.Contains(t, err.Error(), "network is down")

	require.Len(t, devices, 1)
	assert.Equal(t, "/dev/video0", devices[0].Identifier())
}

func TestDiscover_NoBackends(t *testing.T) {
	devices, err := Discover(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestDiscover_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &fakeBackend{typ: DeviceTypeV4L2, name: "v4l2", infos: []DeviceInfo{
		{Type: DeviceTypeV4L2, Identifier: "/dev/video0"},
	}}
	devices, err := Discover(ctx, b)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, devices)
}
