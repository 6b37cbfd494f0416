//go:build !linux

package main

import capture "github.com/kevmo314/go-capture"

func v4l2Detail(capture.DeviceInfo) string { return "" }
