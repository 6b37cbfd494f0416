// Command watch_devices runs the device monitor as a small daemon, logging
// capture device arrivals and removals until interrupted.
//
// Examples:
//
//	# Watch with the defaults.
//	watch_devices
//
//	# Watch with a config file.
//	watch_devices -config /etc/watch_devices.conf
//
// The config file is INI. Backend and interval changes need a restart; the
// [log] section is reapplied whenever the file is written.
//
//	[discovery]
//	backends = v4l2, aravis
//	interval = 10s
//
//	[gvcp]
//	broadcast = 192.168.1.255
//	timeout = 2s
//
//	[log]
//	level = debug
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	capture "github.com/kevmo314/go-capture"
	"github.com/kevmo314/go-capture/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "path to an INI config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// The logger itself stays at trace; the global level does the
	// filtering so a config reload can move it in either direction.
	zlog, err := logger.New(logger.Config{Level: "trace", Output: "stderr"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	zerolog.SetGlobalLevel(cfg.level())

	mlog := logger.WithComponent(zlog, "monitor")
	mon := capture.NewMonitor(capture.MonitorOptions{
		Backends: cfg.backends(),
		Interval: cfg.Interval,
		Logger:   &mlog,
	})
	if err := mon.Start(context.Background()); err != nil {
		zlog.Fatal().Err(err).Msg("failed to start monitor")
	}
	zlog.Info().Msg("watching for capture devices")

	if *configPath != "" {
		go watchConfig(zlog, *configPath)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-signals:
			zlog.Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := mon.Stop(ctx)
			cancel()
			if err != nil {
				zlog.Error().Err(err).Msg("monitor did not stop cleanly")
				os.Exit(1)
			}
			return
		case _, ok := <-mon.Events():
			// The monitor logs arrivals and removals itself; the loop
			// only keeps the channel drained.
			if !ok {
				return
			}
		}
	}
}

// watchConfig reloads path on every write and applies the [log] section.
func watchConfig(zlog zerolog.Logger, path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		zlog.Warn().Err(err).Msg("config watcher unavailable")
		return
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		zlog.Warn().Err(err).Str("path", path).Msg("cannot watch config")
		return
	}
	zlog.Info().Str("path", path).Msg("watching config for log level changes")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			cfg, err := loadConfig(path)
			if err != nil {
				zlog.Warn().Err(err).Msg("config reload failed, keeping current settings")
				continue
			}
			if lvl := cfg.level(); lvl != zerolog.GlobalLevel() {
				zerolog.SetGlobalLevel(lvl)
				zlog.Info().Str("level", lvl.String()).Msg("log level changed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			zlog.Warn().Err(err).Msg("config watcher error")
		}
	}
}
