package sources

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/powerpolicy/powermgr-go/pkg/persistence"
)

//go:embed defaults/*.json
var defaults embed.FS

// Default table origins reported in LoadError.File.
const (
	DefaultSuspendFile = "defaults/power_suspend.json"
	DefaultWakeupFile  = "defaults/power_wakeup.json"
)

// Loader resolves the suspend and wakeup tables.
type Loader struct {
	// Settings is consulted first and receives the accepted table.
	// Nil skips the settings store.
	Settings *persistence.SettingsStore

	// SuspendPath and WakeupPath are the config files. Empty or missing
	// files fall back to the embedded defaults.
	SuspendPath string
	WakeupPath  string

	// Logger for load diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// LoadSuspend returns the suspend table.
func (l *Loader) LoadSuspend() (SuspendTable, error) {
	var stored json.RawMessage
	if s := l.settings(); s != nil {
		stored = s.SuspendSources
	}
	if len(stored) > 0 {
		table, err := ParseSuspend(stored)
		if err == nil {
			l.logMissing("suspend", table.Missing)
			return table, nil
		}
		l.warn("stored suspend sources invalid, using config file", err)
	}

	data, origin, err := l.read(l.SuspendPath, DefaultSuspendFile)
	if err != nil {
		return SuspendTable{}, err
	}
	table, err := ParseSuspend(data)
	if err != nil {
		return table, withFile(err, origin)
	}
	l.logMissing("suspend", table.Missing)
	l.store(func(s *persistence.Settings) { s.SuspendSources = json.RawMessage(data) })
	return table, nil
}

// LoadWakeup returns the wakeup table.
func (l *Loader) LoadWakeup() (WakeupTable, error) {
	var stored json.RawMessage
	if s := l.settings(); s != nil {
		stored = s.WakeupSources
	}
	if len(stored) > 0 {
		table, err := ParseWakeup(stored)
		if err == nil {
			l.logMissing("wakeup", table.Missing)
			return table, nil
		}
		l.warn("stored wakeup sources invalid, using config file", err)
	}

	data, origin, err := l.read(l.WakeupPath, DefaultWakeupFile)
	if err != nil {
		return WakeupTable{}, err
	}
	table, err := ParseWakeup(data)
	if err != nil {
		return table, withFile(err, origin)
	}
	l.logMissing("wakeup", table.Missing)
	l.store(func(s *persistence.Settings) { s.WakeupSources = json.RawMessage(data) })
	return table, nil
}

// read returns the config file contents, or the embedded default when
// the file is unset or absent.
func (l *Loader) read(path, fallback string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, &LoadError{File: path, Message: "failed to read file", Cause: err}
		}
		l.debug("config file missing, using defaults", "path", path)
	}
	data, err := defaults.ReadFile(fallback)
	if err != nil {
		return nil, fallback, &LoadError{File: fallback, Message: "failed to read embedded defaults", Cause: err}
	}
	return data, fallback, nil
}

func (l *Loader) settings() *persistence.Settings {
	if l.Settings == nil {
		return nil
	}
	s, err := l.Settings.Load()
	if err != nil {
		l.warn("failed to load settings", err)
		return nil
	}
	return s
}

func (l *Loader) store(fn func(*persistence.Settings)) {
	if l.Settings == nil {
		return
	}
	if err := l.Settings.Update(fn); err != nil {
		l.warn("failed to store sources", err)
	}
}

func withFile(err error, file string) error {
	var le *LoadError
	if errors.As(err, &le) && le.File == "" {
		le.File = file
	}
	return err
}

func (l *Loader) logMissing(table string, missing []string) {
	if len(missing) > 0 && l.Logger != nil {
		l.Logger.Warn("source table is missing keys", "table", table, "keys", missing)
	}
}

func (l *Loader) warn(msg string, err error) {
	if l.Logger != nil {
		l.Logger.Warn(msg, "error", err)
	}
}

func (l *Loader) debug(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Debug(msg, args...)
	}
}
