package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "powerd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
display_off_time_ms = 15000
sleep_time_ms = 3000
enable_display_suspend = true
backend = "sysfs"
backlight_dir = "/sys/class/backlight/test"
monitor_addr = "127.0.0.1:8089"
advertise = true
audit_db_path = "/var/lib/powerd/audit.db"
audit_max_rows = 500
log_level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), cfg.DisplayOffTimeMs)
	assert.Equal(t, int64(3000), cfg.SleepTimeMs)
	assert.True(t, cfg.EnableDisplaySuspend)
	assert.Equal(t, BackendSysfs, cfg.Backend)
	assert.Equal(t, "127.0.0.1:8089", cfg.MonitorAddr)
	assert.True(t, cfg.Advertise)
	assert.Equal(t, 500, cfg.AuditMaxRows)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "backend = \"null\"\nscreen_saver = true\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screen_saver")

	_, err = LoadConfig(writeConfig(t, "backend = [1"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown backend", func(c *Config) { c.Backend = "acpi" }, false},
		{"sysfs without backlight", func(c *Config) { c.Backend = BackendSysfs }, false},
		{"logind with backlight", func(c *Config) { c.Backend = BackendLogind; c.BacklightDir = "/x" }, true},
		{"negative timeout", func(c *Config) { c.SleepTimeMs = -1 }, false},
		{"advertise without monitor", func(c *Config) { c.Advertise = true }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "display_off_time_ms = 15000\nlog_level = \"warn\"\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	registerFlags(fs, &cfg)
	require.NoError(t, fs.Parse([]string{"-log-level", "debug"}))

	assert.Equal(t, int64(15000), cfg.DisplayOffTimeMs, "unset flags keep file values")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFindConfigFlag(t *testing.T) {
	assert.Equal(t, "a.toml", findConfigFlag([]string{"-config", "a.toml"}))
	assert.Equal(t, "b.toml", findConfigFlag([]string{"-backend", "null", "--config=b.toml"}))
	assert.Equal(t, "c.toml", findConfigFlag([]string{"-config=c.toml"}))
	assert.Equal(t, "", findConfigFlag([]string{"-config"}))
	assert.Equal(t, "", findConfigFlag(nil))
}
