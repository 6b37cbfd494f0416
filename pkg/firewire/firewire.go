//go:build linux

// Package firewire enumerates IEEE 1394 devices through sysfs, the interface
// the firewire-core driver exports.
package firewire

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSysfsDir is where firewire-core registers nodes and units.
const DefaultSysfsDir = "/sys/bus/firewire/devices"

// iidcSpecifierID is the 1394 Trade Association unit specifier for IIDC
// cameras.
const iidcSpecifierID = 0x00a02d

// Node is one device on the bus. Sysfs entries like fw1 are nodes; entries
// like fw1.0 are the units below them.
type Node struct {
	Name     string // sysfs entry name, for example "fw1"
	GUID     uint64
	Vendor   string
	Model    string
	IsCamera bool // node exposes an IIDC unit
}

// GUIDString renders the GUID as 16 hex digits, the form used as a device
// identifier.
func (n *Node) GUIDString() string {
	return fmt.Sprintf("%016x", n.GUID)
}

// Scan reads the bus from sysfsDir. The local host controller appears as a
// node of its own; callers tell cameras apart with IsCamera.
func Scan(sysfsDir string) ([]*Node, error) {
	entries, err := os.ReadDir(sysfsDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sysfsDir, err)
	}
	var nodes []*Node
	for _, e := range entries {
		name := e.Name()
		if !isNodeName(name) {
			continue
		}
		dir := filepath.Join(sysfsDir, name)
		guid, err := readHexAttr(dir, "guid")
		if err != nil {
			// node vanished mid scan
			continue
		}
		nodes = append(nodes, &Node{
			Name:     name,
			GUID:     guid,
			Vendor:   readAttr(dir, "vendor_name"),
			Model:    readAttr(dir, "model_name"),
			IsCamera: hasIIDCUnit(sysfsDir, name, entries),
		})
	}
	return nodes, nil
}

// isNodeName matches fw<n> but not unit entries fw<n>.<m>.
func isNodeName(name string) bool {
	if !strings.HasPrefix(name, "fw") || len(name) == 2 {
		return false
	}
	for _, c := range name[2:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func hasIIDCUnit(sysfsDir, node string, entries []os.DirEntry) bool {
	prefix := node + "."
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		id, err := readHexAttr(filepath.Join(sysfsDir, e.Name()), "specifier_id")
		if err == nil && id == iidcSpecifierID {
			return true
		}
	}
	return false
}

// readAttr reads a sysfs attribute, returning "" when absent.
func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// readHexAttr parses a sysfs attribute in the kernel's 0x… form.
func readHexAttr(dir, name string) (uint64, error) {
	s := readAttr(dir, name)
	if s == "" {
		return 0, fmt.Errorf("read %s: missing attribute", filepath.Join(dir, name))
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", filepath.Join(dir, name), err)
	}
	return v, nil
}
