package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	capture "github.com/kevmo314/go-capture"
	"github.com/rivo/tview"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Second, "discovery timeout per scan")
	backend := flag.String("backend", "", "restrict discovery to one backend (v4l2, aravis, firewire)")
	flag.Parse()

	backends, err := selectBackends(*backend)
	if err != nil {
		log.Fatal(err)
	}

	app := tview.NewApplication()

	devices := tview.NewList()
	devices.SetBorder(true).SetTitle("Devices")

	detail := tview.NewTextView()
	detail.SetBorder(true).SetTitle("Details")

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")

	log.SetOutput(logText)

	var found []capture.CaptureDevice

	scanning := &atomic.Bool{}
	rescan := func() {
		if !scanning.CompareAndSwap(false, true) {
			return
		}
		go func() {
			defer scanning.Store(false)
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			defer cancel()
			devs, err := capture.Discover(ctx, backends...)
			if err != nil {
				log.Printf("discovery incomplete: %s", err)
			}
			app.QueueUpdateDraw(func() {
				found = devs
				devices.Clear()
				detail.Clear()
				for _, dev := range devs {
					devices.AddItem(deviceTitle(dev), deviceSubtitle(dev), 0, nil)
				}
				log.Printf("found %d device(s)", len(devs))
			})
		}()
	}

	devices.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		if index < 0 || index >= len(found) {
			return
		}
		detail.SetText(describe(found[index]))
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'r':
			rescan()
			return nil
		case 'q':
			app.Stop()
			return nil
		}
		return event
	})

	rescan()

	columns := tview.NewFlex().
		AddItem(devices, 0, 1, true).
		AddItem(detail, 0, 2, false)

	if err := app.SetRoot(tview.NewFlex().SetDirection(tview.FlexRow).AddItem(columns, 0, 1, true).AddItem(logText, 10, 0, false), true).Run(); err != nil {
		panic(err)
	}
}

func selectBackends(name string) ([]capture.Backend, error) {
	backends := capture.DefaultBackends()
	if name == "" {
		return backends, nil
	}
	for _, b := range backends {
		if b.Name() == name {
			return []capture.Backend{b}, nil
		}
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

func deviceTitle(dev capture.CaptureDevice) string {
	if dev.Name() != "" {
		return dev.Name()
	}
	return dev.Identifier()
}

func deviceSubtitle(dev capture.CaptureDevice) string {
	if t := dev.Type().String(); t != "" {
		return fmt.Sprintf("%s  %s", t, dev.Identifier())
	}
	return dev.Identifier()
}

func describe(dev capture.CaptureDevice) string {
	info := dev.Info()
	typeName := info.Type.String()
	if typeName == "" {
		typeName = "unknown"
	}
	text := fmt.Sprintf(
		"Type:       %s\nIdentifier: %s\nName:       %s\nSerial:     %s\n",
		typeName, info.Identifier, info.Name, info.Serial,
	)
	if extra := extraDetail(info); extra != "" {
		text += extra + "\n"
	}
	return text + "\nPress r to rescan, q to quit."
}
