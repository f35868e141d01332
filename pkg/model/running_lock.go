package model

import "time"

// RunningLockType is the kind of inhibitor a running lock represents.
// Background sub-kinds carry the BACKGROUND bit.
type RunningLockType uint32

const (
	LockScreen                 RunningLockType = 0
	LockBackground             RunningLockType = 1
	LockProximityScreenControl RunningLockType = 2
	LockCoordination           RunningLockType = 4
	LockBackgroundPhone        RunningLockType = LockBackground | 1<<1
	LockBackgroundNotification RunningLockType = LockBackground | 1<<2
	LockBackgroundAudio        RunningLockType = LockBackground | 1<<3
	LockBackgroundSport        RunningLockType = LockBackground | 1<<4
	LockBackgroundNavigation   RunningLockType = LockBackground | 1<<5
	LockBackgroundTask         RunningLockType = LockBackground | 1<<6
	LockButt                   RunningLockType = LockBackgroundTask + 1
)

// AllLockTypes lists every valid lock type in ascending order.
var AllLockTypes = []RunningLockType{
	LockScreen,
	LockBackground,
	LockProximityScreenControl,
	LockBackgroundPhone,
	LockCoordination,
	LockBackgroundNotification,
	LockBackgroundAudio,
	LockBackgroundSport,
	LockBackgroundNavigation,
	LockBackgroundTask,
}

// BackgroundLockTypes lists the background scene sub-kinds.
var BackgroundLockTypes = []RunningLockType{
	LockBackgroundPhone,
	LockBackgroundNotification,
	LockBackgroundAudio,
	LockBackgroundSport,
	LockBackgroundNavigation,
	LockBackgroundTask,
}

// String returns the lock type name.
func (t RunningLockType) String() string {
	switch t {
	case LockScreen:
		return "SCREEN"
	case LockBackground:
		return "BACKGROUND"
	case LockProximityScreenControl:
		return "PROXIMITY_SCREEN_CONTROL"
	case LockCoordination:
		return "COORDINATION"
	case LockBackgroundPhone:
		return "BACKGROUND_PHONE"
	case LockBackgroundNotification:
		return "BACKGROUND_NOTIFICATION"
	case LockBackgroundAudio:
		return "BACKGROUND_AUDIO"
	case LockBackgroundSport:
		return "BACKGROUND_SPORT"
	case LockBackgroundNavigation:
		return "BACKGROUND_NAVIGATION"
	case LockBackgroundTask:
		return "BACKGROUND_TASK"
	case LockButt:
		return "BUTT"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether t is one of the declared lock types.
// Any value at or above BUTT is invalid.
func (t RunningLockType) IsValid() bool {
	if t >= LockButt {
		return false
	}
	for _, v := range AllLockTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsScene reports whether t is a background scene sub-kind.
func (t RunningLockType) IsScene() bool {
	for _, v := range BackgroundLockTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseLockType returns the lock type with the given name.
func ParseLockType(name string) (RunningLockType, bool) {
	for _, t := range AllLockTypes {
		if t.String() == name {
			return t, true
		}
	}
	return LockButt, false
}

// RunningLockParam describes a requested running lock.
type RunningLockParam struct {
	LockID     uint64          `json:"lockId"`
	Name       string          `json:"name"`
	BundleName string          `json:"bundleName"`
	Type       RunningLockType `json:"type"`
	TimeoutMs  int32           `json:"timeoutMs"`
	Pid        int32           `json:"pid"`
	Uid        int32           `json:"uid"`
}

// Timeout returns the requested timeout, or zero when the lock never expires.
func (p RunningLockParam) Timeout() time.Duration {
	if p.TimeoutMs < 0 {
		return 0
	}
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// RunningLockState is the live state of a lock record.
type RunningLockState uint32

const (
	// LockStateDisable means the record is not held.
	LockStateDisable RunningLockState = iota
	// LockStateEnable means the record is held and counted.
	LockStateEnable
	// LockStateProxied means the record is held but suppressed by a proxy.
	LockStateProxied
	// LockStateUnproxiedRestore means a suppressed record was restored.
	LockStateUnproxiedRestore
)

// String returns the state name.
func (s RunningLockState) String() string {
	switch s {
	case LockStateDisable:
		return "DISABLE"
	case LockStateEnable:
		return "ENABLE"
	case LockStateProxied:
		return "PROXIED"
	case LockStateUnproxiedRestore:
		return "UNPROXIED_RESTORE"
	default:
		return "UNKNOWN"
	}
}

// RunningLockInfo is the externally visible summary of a held lock.
type RunningLockInfo struct {
	Name       string          `json:"name"`
	Type       RunningLockType `json:"type"`
	BundleName string          `json:"bundleName"`
	Pid        int32           `json:"pid"`
	Uid        int32           `json:"uid"`
}
