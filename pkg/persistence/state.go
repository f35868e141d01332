package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SettingsVersion is the current version of the settings file format.
const SettingsVersion = 1

// Settings contains the persisted power settings.
// Nil pointers mean the value was never written and defaults apply.
type Settings struct {
	// Version is the settings file format version.
	Version int `json:"version"`

	// SavedAt is when the settings were last saved.
	SavedAt time.Time `json:"saved_at"`

	// DisplayOffTimeMs is the user-configured screen-off timeout.
	// Negative disables auto display off.
	DisplayOffTimeMs *int64 `json:"display_off_time_ms,omitempty"`

	// SleepTimeMs is the delay between screen off and sleep.
	SleepTimeMs *int64 `json:"sleep_time_ms,omitempty"`

	// SuspendSources is the raw JSON of the suspend source table.
	SuspendSources json.RawMessage `json:"suspend_sources,omitempty"`

	// WakeupSources is the raw JSON of the wakeup source table.
	WakeupSources json.RawMessage `json:"wakeup_sources,omitempty"`
}

// SettingsStore manages persistence of power settings to a JSON file.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore creates a new settings store.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Path returns the backing file path.
func (s *SettingsStore) Path() string {
	return s.path
}

// Save persists the settings to disk.
func (s *SettingsStore) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings)
}

func (s *SettingsStore) saveLocked(settings *Settings) error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	settings.Version = SettingsVersion
	settings.SavedAt = time.Now()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so a crash never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the settings from disk.
// Returns nil, nil if the file doesn't exist (empty settings).
func (s *SettingsStore) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *SettingsStore) loadLocked() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Update loads the current settings, applies fn and saves the result.
// A missing file starts from empty settings.
func (s *SettingsStore) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadLocked()
	if err != nil {
		return err
	}
	if settings == nil {
		settings = &Settings{}
	}
	fn(settings)
	return s.saveLocked(settings)
}

// Clear removes the settings file.
func (s *SettingsStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Int64 returns a pointer to v, for filling optional settings.
func Int64(v int64) *int64 {
	return &v
}
