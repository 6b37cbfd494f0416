package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	capture "github.com/kevmo314/go-capture"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

// config holds the daemon settings read from an INI file. A zero field
// defers to the library default.
type config struct {
	BackendNames []string
	Interval     time.Duration
	Broadcast    string
	Timeout      time.Duration
	Level        zerolog.Level
	Debug        bool
}

func defaultConfig() config {
	return config{Level: zerolog.InfoLevel}
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (config, error) {
	result := defaultConfig()
	if path == "" {
		return result, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return result, fmt.Errorf("load config: %w", err)
	}

	// [discovery] backends
	if s := cfg.Section("discovery").Key("backends").String(); s != "" {
		for _, name := range strings.Split(s, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if !knownBackend(name) {
				return result, fmt.Errorf("invalid value %q for key 'backends' in [discovery] section", name)
			}
			result.BackendNames = append(result.BackendNames, name)
		}
	}

	// [discovery] interval
	if s := cfg.Section("discovery").Key("interval").String(); s != "" {
		result.Interval, err = time.ParseDuration(s)
		if err != nil {
			return result, fmt.Errorf("invalid value for key 'interval' in [discovery] section: %v", err)
		}
		if result.Interval <= 0 {
			return result, fmt.Errorf("invalid value %q for key 'interval' in [discovery] section: must be positive", s)
		}
	}

	// [gvcp] broadcast
	if s := cfg.Section("gvcp").Key("broadcast").String(); s != "" {
		if net.ParseIP(s) == nil {
			return result, fmt.Errorf("invalid value %q for key 'broadcast' in [gvcp] section", s)
		}
		result.Broadcast = s
	}

	// [gvcp] timeout
	if s := cfg.Section("gvcp").Key("timeout").String(); s != "" {
		result.Timeout, err = time.ParseDuration(s)
		if err != nil {
			return result, fmt.Errorf("invalid value for key 'timeout' in [gvcp] section: %v", err)
		}
		if result.Timeout <= 0 {
			return result, fmt.Errorf("invalid value %q for key 'timeout' in [gvcp] section: must be positive", s)
		}
	}

	// [log] level
	if s := cfg.Section("log").Key("level").String(); s != "" {
		result.Level, err = zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return result, fmt.Errorf("invalid value for key 'level' in [log] section: %v", err)
		}
	}

	// [log] debug
	if s := cfg.Section("log").Key("debug").String(); s != "" {
		result.Debug, err = strconv.ParseBool(s)
		if err != nil {
			return result, fmt.Errorf("invalid value for key 'debug' in [log] section: %v", err)
		}
	}

	return result, nil
}

func knownBackend(name string) bool {
	switch name {
	case "v4l2", "aravis", "firewire":
		return true
	}
	return false
}

// level returns the configured level, with debug taking precedence.
func (c config) level() zerolog.Level {
	if c.Debug && c.Level > zerolog.DebugLevel {
		return zerolog.DebugLevel
	}
	return c.Level
}

// backends builds the backend list for the monitor. The [gvcp] settings
// apply to the Aravis backend; an empty name list selects every backend
// available on the platform.
func (c config) backends() []capture.Backend {
	all := capture.DefaultBackends()
	for _, b := range all {
		a, ok := b.(*capture.AravisBackend)
		if !ok {
			continue
		}
		if c.Broadcast != "" {
			a.Broadcast = c.Broadcast
		}
		if c.Timeout > 0 {
			a.Timeout = c.Timeout
		}
	}
	if len(c.BackendNames) == 0 {
		return all
	}
	var selected []capture.Backend
	for _, b := range all {
		for _, name := range c.BackendNames {
			if b.Name() == name {
				selected = append(selected, b)
				break
			}
		}
	}
	return selected
}
