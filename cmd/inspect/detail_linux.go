//go:build linux

package main

import (
	"fmt"
	"strings"

	capture "github.com/kevmo314/go-capture"
	"github.com/kevmo314/go-capture/pkg/v4l2"
)

// v4l2Detail queries the live node for driver information.
func v4l2Detail(info capture.DeviceInfo) string {
	caps, err := v4l2.QueryCap(info.Identifier)
	if err != nil {
		return fmt.Sprintf("Driver:     unavailable (%s)", err)
	}
	return fmt.Sprintf(
		"Driver:     %s\nBus:        %s\nKernel:     %s\nCaps:       %s",
		caps.Driver, caps.BusInfo, caps.VersionString(), strings.Join(capNames(caps.Caps()), ", "),
	)
}

func capNames(caps uint32) []string {
	var names []string
	for _, c := range []struct {
		bit  uint32
		name string
	}{
		{v4l2.V4L2_CAP_VIDEO_CAPTURE, "capture"},
		{v4l2.V4L2_CAP_VIDEO_CAPTURE_MPLANE, "capture-mplane"},
		{v4l2.V4L2_CAP_VIDEO_OUTPUT, "output"},
		{v4l2.V4L2_CAP_META_CAPTURE, "meta"},
		{v4l2.V4L2_CAP_READWRITE, "readwrite"},
		{v4l2.V4L2_CAP_STREAMING, "streaming"},
	} {
		if caps&c.bit != 0 {
			names = append(names, c.name)
		}
	}
	return names
}
