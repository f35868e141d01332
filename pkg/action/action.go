package action

import (
	"errors"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Action errors.
var (
	ErrInvalidType = errors.New("invalid running lock type")
	ErrNotHeld     = errors.New("running lock type not held")
)

// DeviceStateAction drives the display and the system power entry points.
// Calls are synchronous and bounded.
type DeviceStateAction interface {
	// Suspend notifies the backend that the device is going to sleep.
	Suspend(callTimeMs int64, typ model.SuspendDeviceType, flags uint32)

	// ForceSuspend suspends the system immediately.
	ForceSuspend()

	// Wakeup notifies the backend that the device is waking up.
	Wakeup(callTimeMs int64, typ model.WakeupDeviceType, details, pkgName string)

	// RefreshActivity records user activity.
	RefreshActivity(callTimeMs int64, typ model.UserActivityType, flags uint32)

	// GetDisplayState reads the current display state from the hardware.
	GetDisplayState() model.DisplayState

	// SetDisplayState changes the display state.
	SetDisplayState(state model.DisplayState, reason model.StateChangeReason) model.ActionResult

	// GoToSleep enters system suspend.
	GoToSleep(force bool) model.ActionResult

	// SetCoordinated marks the display as driven by a coordination lock.
	SetCoordinated(coordinated bool)
}

// RunningLockAction takes and drops the inhibitor behind a lock type.
type RunningLockAction interface {
	Lock(typ model.RunningLockType, tag string) error
	Unlock(typ model.RunningLockType, tag string) error
}

var lockTags = map[model.RunningLockType]string{
	model.LockScreen:                 "PowerMgr.Screen",
	model.LockBackground:             "PowerMgr.Background",
	model.LockProximityScreenControl: "PowerMgr.Proximity",
	model.LockCoordination:           "PowerMgr.Coordination",
	model.LockBackgroundPhone:        "PowerMgr.Background.Phone",
	model.LockBackgroundNotification: "PowerMgr.Background.Notification",
	model.LockBackgroundAudio:        "PowerMgr.Background.Audio",
	model.LockBackgroundSport:        "PowerMgr.Background.Sport",
	model.LockBackgroundNavigation:   "PowerMgr.Background.Navigation",
	model.LockBackgroundTask:         "PowerMgr.Background.Task",
}

// LockTag returns the fixed backend tag for typ, or "" for invalid types.
func LockTag(typ model.RunningLockType) string {
	return lockTags[typ]
}
