//go:build linux

package v4l2

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeVideoNode builds a sysfs-shaped tree: a video node whose device link
// points at a USB interface directory nested under the USB device directory.
func fakeVideoNode(t *testing.T, attrs map[string]string) string {
	t.Helper()
	root := t.TempDir()

	usbDev := filepath.Join(root, "devices", "usb1", "1-2")
	iface := filepath.Join(usbDev, "1-2:1.0")
	if err := os.MkdirAll(iface, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, value := range attrs {
		if err := os.WriteFile(filepath.Join(usbDev, name), []byte(value+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	node := filepath.Join(root, "video0")
	if err := os.MkdirAll(node, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(iface, filepath.Join(node, "device")); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestResolveUSB(t *testing.T) {
	root := fakeVideoNode(t, map[string]string{
		"idVendor":     "199e",
		"idProduct":    "8101",
		"serial":       "05420123",
		"product":      "DFK 72BUC02",
		"manufacturer": "The Imaging Source",
	})

	info, err := ResolveUSB(root, "video0")
	if err != nil {
		t.Fatalf("ResolveUSB failed: %v", err)
	}
	if info.VendorID != 0x199e {
		t.Errorf("VendorID = %#04x, want 0x199e", info.VendorID)
	}
	if info.ProductID != 0x8101 {
		t.Errorf("ProductID = %#04x, want 0x8101", info.ProductID)
	}
	if info.Serial != "05420123" {
		t.Errorf("Serial = %q, want %q", info.Serial, "05420123")
	}
	if info.Product != "DFK 72BUC02" {
		t.Errorf("Product = %q, want %q", info.Product, "DFK 72BUC02")
	}
	if info.Manufacturer != "The Imaging Source" {
		t.Errorf("Manufacturer = %q, want %q", info.Manufacturer, "The Imaging Source")
	}
}

func TestResolveUSB_NoSerial(t *testing.T) {
	root := fakeVideoNode(t, map[string]string{
		"idVendor":  "046d",
		"idProduct": "0825",
	})

	info, err := ResolveUSB(root, "video0")
	if err != nil {
		t.Fatalf("ResolveUSB failed: %v", err)
	}
	if info.VendorID != 0x046d || info.ProductID != 0x0825 {
		t.Errorf("ids = %#04x:%#04x, want 046d:0825", info.VendorID, info.ProductID)
	}
	if info.Serial != "" {
		t.Errorf("Serial = %q, want empty", info.Serial)
	}
}

func TestResolveUSB_NoUSBAncestor(t *testing.T) {
	root := t.TempDir()
	pci := filepath.Join(root, "devices", "pci0000:00", "0000:00:02.0")
	if err := os.MkdirAll(pci, 0o755); err != nil {
		t.Fatal(err)
	}
	node := filepath.Join(root, "video0")
	if err := os.MkdirAll(node, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(pci, filepath.Join(node, "device")); err != nil {
		t.Fatal(err)
	}

	if _, err := ResolveUSB(root, "video0"); err == nil {
		t.Error("ResolveUSB succeeded for a node without a usb ancestor")
	}
}

func TestResolveUSB_MissingNode(t *testing.T) {
	if _, err := ResolveUSB(t.TempDir(), "video9"); err == nil {
		t.Error("ResolveUSB succeeded for a missing node")
	}
}
