package statemachine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// State machine errors.
var (
	ErrNoAction         = errors.New("device state action not set")
	ErrNotInitialized   = errors.New("state machine not initialized")
	ErrNotSupported     = errors.New("state not supported")
	ErrInvalidType      = errors.New("invalid type")
	ErrInvalidListener  = errors.New("invalid listener")
	ErrListenerNotFound = errors.New("listener not registered")
)

// Default timeouts in milliseconds.
const (
	DefaultDisplayOffTime int64 = 30000
	DefaultSleepTime      int64 = 5000
)

// MinRefreshInterval is the minimum spacing between accepted activity refreshes.
const MinRefreshInterval = 100 * time.Millisecond

// LockCounter reports how many running locks of a type are currently
// held and not suppressed.
type LockCounter interface {
	ValidRunningLockNum(typ model.RunningLockType) uint32
}

// PowerStateListener is notified of every committed transition.
// Implementations must be comparable. Notifications run outside the
// transition lock, so a listener may call back into the machine.
type PowerStateListener interface {
	OnPowerStateChanged(state model.PowerState, reason model.StateChangeReason)
}

// SuspendController is the external controller that owns the automatic
// sleep path. It is optional.
type SuspendController interface {
	// StopSleep cancels any pending automatic sleep.
	StopSleep()

	// TriggerSyncSleepCallback runs the controller's synchronous sleep
	// callbacks with wakeup semantics when isWakeup is true.
	TriggerSyncSleepCallback(isWakeup bool)
}

// Config configures a PowerStateMachine.
type Config struct {
	// Action drives the display and system power. Required.
	Action action.DeviceStateAction

	// Locks reports running lock counts. Nil means no locks are ever held.
	Locks LockCounter

	// Suspend is the optional external suspend controller.
	Suspend SuspendController

	// DisplayOffTime is the inactivity timeout in milliseconds.
	// Zero uses DefaultDisplayOffTime, negative disables auto display-off.
	DisplayOffTime int64

	// SleepTime is the delay from INACTIVE to SLEEP in milliseconds.
	// Zero uses DefaultSleepTime, negative disables auto sleep.
	SleepTime int64

	// EnableDisplaySuspend makes INACTIVE and SLEEP use DISPLAY_SUSPEND.
	EnableDisplaySuspend bool

	// ResumeAfterSleep schedules HandleSystemWakeup after a successful
	// SLEEP action. Set it for backends whose sleep call blocks until resume.
	ResumeAfterSleep bool

	// SessionID is stamped on emitted events.
	SessionID string

	// EventLogger receives structured power events (optional).
	EventLogger log.Logger

	// Logger for debug output (optional).
	Logger *slog.Logger
}

func (c Config) displayOffTime() int64 {
	if c.DisplayOffTime == 0 {
		return DefaultDisplayOffTime
	}
	return c.DisplayOffTime
}

func (c Config) sleepTime() int64 {
	if c.SleepTime == 0 {
		return DefaultSleepTime
	}
	return c.SleepTime
}

// timerEvent keys the delayed callbacks on the task queue.
type timerEvent uint8

const (
	eventActivityTimeout timerEvent = iota + 1
	eventActivityOffTimeout
	eventSleepTimeout
	eventSystemWakeup
	eventProximityScreenOff
)

func (e timerEvent) String() string {
	switch e {
	case eventActivityTimeout:
		return "activity-timeout"
	case eventActivityOffTimeout:
		return "activity-off-timeout"
	case eventSleepTimeout:
		return "sleep-timeout"
	case eventSystemWakeup:
		return "system-wakeup"
	case eventProximityScreenOff:
		return "proximity-screen-off"
	default:
		return "unknown"
	}
}

// DeviceTimes holds the last-event timestamps in boot milliseconds.
type DeviceTimes struct {
	LastScreenOn      int64 `json:"lastScreenOn"`
	LastScreenOff     int64 `json:"lastScreenOff"`
	LastSuspendDevice int64 `json:"lastSuspendDevice"`
	LastWakeupDevice  int64 `json:"lastWakeupDevice"`
	LastRefresh       int64 `json:"lastRefresh"`
}

// Snapshot is a consistent read of the machine's externally visible state.
type Snapshot struct {
	State          model.PowerState        `json:"state"`
	Reason         model.StateChangeReason `json:"reason"`
	Display        model.DisplayState      `json:"display"`
	DisplayOffTime int64                   `json:"displayOffTimeMs"`
	SleepTime      int64                   `json:"sleepTimeMs"`
	Times          DeviceTimes             `json:"times"`
}
