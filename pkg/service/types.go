package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/audit"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/persistence"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
)

// Service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrAlreadyStarted  = errors.New("service already started")
	ErrNotInitialized  = errors.New("service not initialized")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSourceDisabled  = errors.New("wakeup source disabled")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateStarting - background loops are being launched.
	StateStarting

	// StateRunning - background loops are running.
	StateRunning

	// StateStopping - service is shutting down.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a PowerService.
type Config struct {
	// DeviceAction drives the display and system power. Required.
	DeviceAction action.DeviceStateAction

	// LockAction takes the kernel-level inhibitors. Required.
	LockAction action.RunningLockAction

	// Suspend is the optional external suspend controller.
	Suspend statemachine.SuspendController

	// Settings persists timeouts and source tables (optional).
	Settings *persistence.SettingsStore

	// SuspendSourcesPath and WakeupSourcesPath are the source table
	// config files. Empty uses the built-in tables.
	SuspendSourcesPath string
	WakeupSourcesPath  string

	// DisplayOffTime and SleepTime seed the state machine timeouts in
	// milliseconds. Persisted settings take precedence.
	DisplayOffTime int64
	SleepTime      int64

	// EnableDisplaySuspend makes INACTIVE and SLEEP use DISPLAY_SUSPEND.
	EnableDisplaySuspend bool

	// ResumeAfterSleep is passed to the state machine.
	ResumeAfterSleep bool

	// IsForeground reports whether a bundle is in the foreground. Nil
	// treats every bundle as foreground.
	IsForeground func(bundleName string) bool

	// Audit records lock messages and transitions (optional).
	Audit *audit.Store

	// SweepInterval is the over-time sweep period.
	// Zero uses runninglock.CheckOverTimeInterval.
	SweepInterval time.Duration

	// WatchInterval is the process watcher period.
	// Zero uses remote.DefaultWatchInterval.
	WatchInterval time.Duration

	// SessionID is stamped on emitted events.
	SessionID string

	// EventLogger receives structured power events (optional).
	EventLogger log.Logger

	// Logger for operational messages (optional).
	Logger *slog.Logger
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if c.DeviceAction == nil || c.LockAction == nil {
		return ErrInvalidConfig
	}
	if c.SweepInterval < 0 || c.WatchInterval < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// EventType identifies a service event.
type EventType uint8

const (
	// EventStateChanged - a transition was committed.
	EventStateChanged EventType = iota

	// EventLockChanged - a running lock counter changed.
	EventLockChanged

	// EventOverTime - the sweep released locks held past their timeout.
	EventOverTime
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventStateChanged:
		return "STATE_CHANGED"
	case EventLockChanged:
		return "LOCK_CHANGED"
	case EventOverTime:
		return "OVER_TIME"
	default:
		return "UNKNOWN"
	}
}

// Event represents a service event.
type Event struct {
	// Type is the event type.
	Type EventType

	// State and Reason are set for EventStateChanged.
	State  model.PowerState
	Reason model.StateChangeReason

	// Lock is set for EventLockChanged.
	Lock *runninglock.LockMessage

	// Count is the number of released locks for EventOverTime.
	Count int
}

// EventHandler handles service events.
type EventHandler func(Event)
