package main

import (
	"context"
	"fmt"
	"time"

	capture "github.com/kevmo314/go-capture"
)

// extraDetail asks the device live for what the discovery record has no
// room for: driver information on V4L2 nodes, GVCP addressing on network
// cameras.
func extraDetail(info capture.DeviceInfo) string {
	switch info.Type {
	case capture.DeviceTypeV4L2:
		return v4l2Detail(info)
	case capture.DeviceTypeAravis:
		return aravisDetail(info)
	}
	return ""
}

// aravisDetail fetches the selected camera's addressing with a discovery
// round that ends as soon as the camera answers.
func aravisDetail(info capture.DeviceInfo) string {
	const timeout = 500 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ack, err := (&capture.AravisBackend{Timeout: timeout}).Resolve(ctx, info.Identifier)
	if err != nil {
		return fmt.Sprintf("Address:    unavailable (%s)", err)
	}
	return fmt.Sprintf(
		"MAC:        %s\nAddress:    %s\nNetmask:    %s\nGateway:    %s",
		ack.MAC, ack.CurrentIP, ack.SubnetMask, ack.DefaultGateway,
	)
}
