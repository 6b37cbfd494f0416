package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	capture "github.com/kevmo314/go-capture"
)

func main() {
	backend := flag.String("backend", "", "only list one backend (v4l2, aravis, firewire)")
	timeout := flag.Duration("timeout", 2*time.Second, "discovery timeout")
	flag.Parse()

	fmt.Println("Listing capture devices...")

	backends := capture.DefaultBackends()
	if *backend != "" {
		var selected []capture.Backend
		for _, b := range backends {
			if b.Name() == *backend {
				selected = append(selected, b)
			}
		}
		if len(selected) == 0 {
			log.Fatalf("Unknown backend %q", *backend)
		}
		backends = selected
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	devices, err := capture.Discover(ctx, backends...)
	if err != nil {
		if len(devices) == 0 {
			log.Fatalf("Failed to list devices: %v", err)
		}
		log.Printf("Some backends failed: %v", err)
	}

	if len(devices) == 0 {
		fmt.Println("No capture devices found")
		fmt.Println("\nNote: GigE cameras only answer on the network they are attached to,")
		fmt.Println("and /dev/video* nodes need read permission (usually the video group).")
		return
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))

	for i, dev := range devices {
		info := dev.Info()
		fmt.Printf("Device %d:\n", i+1)
		if t := info.Type.String(); t != "" {
			fmt.Printf("  Type: %s\n", t)
		}
		fmt.Printf("  Identifier: %s\n", info.Identifier)
		if info.Name != "" {
			fmt.Printf("  Name: %s\n", info.Name)
		}
		if info.Serial != "" {
			fmt.Printf("  Serial: %s\n", info.Serial)
		}
		fmt.Println()
	}
}
