//go:build linux

package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSysfsAttrs(t *testing.T, dir string, attrs map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, value := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644))
	}
}

func TestFireWireBackend_Devices(t *testing.T) {
	root := t.TempDir()
	// host controller node, not a camera
	writeSysfsAttrs(t, filepath.Join(root, "fw0"), map[string]string{
		"guid": "0x0090270001234567",
	})
	writeSysfsAttrs(t, filepath.Join(root, "fw1"), map[string]string{
		"guid":        "0x0814438400000321",
		"vendor_name": "The Imaging Source",
		"model_name":  "DFK 21AF04",
	})
	writeSysfsAttrs(t, filepath.Join(root, "fw1.0"), map[string]string{
		"specifier_id": "0xa02d",
	})

	b := &FireWireBackend{SysfsDir: root}
	infos, err := b.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, DeviceTypeFirewire, infos[0].Type)
	assert.Equal(t, "0814438400000321", infos[0].Identifier)
	assert.Equal(t, "DFK 21AF04", infos[0].Name)
	assert.Equal(t, "0814438400000321", infos[0].Serial)
}

func TestFireWireBackend_NoBus(t *testing.T) {
	b := &FireWireBackend{SysfsDir: filepath.Join(t.TempDir(), "absent")}
	infos, err := b.Devices(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, infos)
}
