package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backend names.
const (
	BackendSysfs  = "sysfs"
	BackendLogind = "logind"
	BackendNull   = "null"
)

// Config holds the daemon configuration. File keys are snake_case; flags
// override file values.
type Config struct {
	// DisplayOffTimeMs is the AWAKE to INACTIVE delay. Zero keeps the
	// built-in default.
	DisplayOffTimeMs int64 `toml:"display_off_time_ms"`

	// SleepTimeMs is the INACTIVE to SLEEP delay. Zero keeps the built-in
	// default.
	SleepTimeMs int64 `toml:"sleep_time_ms"`

	EnableDisplaySuspend bool `toml:"enable_display_suspend"`

	// SettingsPath is the JSON settings store for runtime-tunable values.
	SettingsPath string `toml:"settings_path"`

	SuspendSourcesPath string `toml:"suspend_sources_path"`
	WakeupSourcesPath  string `toml:"wakeup_sources_path"`

	// EventLogPath enables the CBOR event log.
	EventLogPath string `toml:"event_log_path"`

	// EventLogMaxBytes rotates the event log. Zero disables rotation.
	EventLogMaxBytes int64 `toml:"event_log_max_bytes"`

	// AuditDBPath enables the SQLite audit trail.
	AuditDBPath  string `toml:"audit_db_path"`
	AuditMaxRows int    `toml:"audit_max_rows"`

	// Backend selects the device and lock backends: sysfs, logind or null.
	Backend string `toml:"backend"`

	// BacklightDir is the /sys/class/backlight/<name> directory used by the
	// sysfs and logind backends.
	BacklightDir string `toml:"backlight_dir"`

	// MonitorAddr enables the diagnostics server on host:port.
	MonitorAddr string `toml:"monitor_addr"`

	// Advertise announces the monitor over mDNS.
	Advertise bool `toml:"advertise"`

	// LogLevel controls logging verbosity: debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendNull,
		LogLevel: "info",
	}
}

// LoadConfig decodes the TOML file at path over the defaults. An empty
// path returns the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, fmt.Errorf("config file not found: %s", path)
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSysfs, BackendLogind:
		if c.BacklightDir == "" {
			return fmt.Errorf("backend %s requires backlight_dir", c.Backend)
		}
	case BackendNull:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.DisplayOffTimeMs < 0 || c.SleepTimeMs < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Advertise && c.MonitorAddr == "" {
		return fmt.Errorf("advertise requires monitor_addr")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// registerFlags binds the command-line flags. Each flag defaults to the
// value in cfg so that unset flags keep file values.
func registerFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Int64Var(&cfg.DisplayOffTimeMs, "display-off-time", cfg.DisplayOffTimeMs, "AWAKE to INACTIVE delay in ms")
	fs.Int64Var(&cfg.SleepTimeMs, "sleep-time", cfg.SleepTimeMs, "INACTIVE to SLEEP delay in ms")
	fs.BoolVar(&cfg.EnableDisplaySuspend, "display-suspend", cfg.EnableDisplaySuspend, "Use DISPLAY_SUSPEND for screen-off states")
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "Settings store path")
	fs.StringVar(&cfg.SuspendSourcesPath, "suspend-sources", cfg.SuspendSourcesPath, "Suspend source table (JSON)")
	fs.StringVar(&cfg.WakeupSourcesPath, "wakeup-sources", cfg.WakeupSourcesPath, "Wakeup source table (JSON)")
	fs.StringVar(&cfg.EventLogPath, "event-log", cfg.EventLogPath, "CBOR event log path")
	fs.StringVar(&cfg.AuditDBPath, "audit-db", cfg.AuditDBPath, "SQLite audit database path")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Backend: sysfs, logind, null")
	fs.StringVar(&cfg.BacklightDir, "backlight", cfg.BacklightDir, "Backlight sysfs directory")
	fs.StringVar(&cfg.MonitorAddr, "monitor", cfg.MonitorAddr, "Diagnostics server address (host:port)")
	fs.BoolVar(&cfg.Advertise, "advertise", cfg.Advertise, "Advertise the monitor over mDNS")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", level)
	}
}
