package model

// WakeupDeviceType identifies what woke the device.
type WakeupDeviceType uint32

const (
	WakeupUnknown WakeupDeviceType = iota
	WakeupPowerButton
	WakeupApplication
	WakeupPluggedIn
	WakeupGesture
	WakeupCameraLaunch
	WakeupWakeKey
	WakeupWakeMotion
	WakeupHDMI
	WakeupLid
	WakeupDoubleClick
	WakeupKeyboard
	WakeupMouse
	WakeupTouchpad
	WakeupPen
	WakeupTouchScreen
	WakeupSwitch
	WakeupSingleClick
	WakeupPreBright
	WakeupPreBrightAuthSuccess
	WakeupPreBrightAuthFailScreenOn
	WakeupPreBrightAuthFailScreenOff
	WakeupAODSliding
	WakeupIncomingCall
	WakeupShell
	WakeupPickup
	WakeupExitSystemSTR
	WakeupScreenConnect
	WakeupTPTouch
	WakeupExScreenInit
	WakeupAbnormalScreenConnect
	WakeupMax
)

var wakeupNames = [...]string{
	"UNKNOWN", "POWER_BUTTON", "APPLICATION", "PLUGGED_IN", "GESTURE",
	"CAMERA_LAUNCH", "WAKE_KEY", "WAKE_MOTION", "HDMI", "LID",
	"DOUBLE_CLICK", "KEYBOARD", "MOUSE", "TOUCHPAD", "PEN",
	"TOUCH_SCREEN", "SWITCH", "SINGLE_CLICK", "PRE_BRIGHT",
	"PRE_BRIGHT_AUTH_SUCCESS", "PRE_BRIGHT_AUTH_FAIL_SCREEN_ON",
	"PRE_BRIGHT_AUTH_FAIL_SCREEN_OFF", "AOD_SLIDING", "INCOMING_CALL",
	"SHELL", "PICKUP", "EXIT_SYSTEM_STR", "SCREEN_CONNECT", "TP_TOUCH",
	"EX_SCREEN_INIT", "ABNORMAL_SCREEN_CONNECT",
}

// String returns the wakeup type name.
func (t WakeupDeviceType) String() string {
	if int(t) < len(wakeupNames) {
		return wakeupNames[t]
	}
	return "UNKNOWN"
}

// IsValid reports whether t is below the MAX sentinel.
func (t WakeupDeviceType) IsValid() bool {
	return t < WakeupMax
}

// SuspendDeviceType identifies why the device is being suspended.
type SuspendDeviceType uint32

const (
	SuspendApplication SuspendDeviceType = iota
	SuspendDeviceAdmin
	SuspendTimeout
	SuspendLid
	SuspendPowerKey
	SuspendHDMI
	SuspendSleepKey
	SuspendAccessibility
	SuspendForceSuspend
	SuspendSTR
	SuspendSwitch
	SuspendLowCapacity
	SuspendTPCover
	SuspendExScreenInit
	SuspendMax

	SuspendMin = SuspendApplication
)

var suspendNames = [...]string{
	"APPLICATION", "DEVICE_ADMIN", "TIMEOUT", "LID", "POWER_KEY", "HDMI",
	"SLEEP_KEY", "ACCESSIBILITY", "FORCE_SUSPEND", "STR", "SWITCH",
	"LOW_CAPACITY", "TP_COVER", "EX_SCREEN_INIT",
}

// String returns the suspend type name.
func (t SuspendDeviceType) String() string {
	if int(t) < len(suspendNames) {
		return suspendNames[t]
	}
	return "UNKNOWN"
}

// IsValid reports whether t is below the MAX sentinel.
func (t SuspendDeviceType) IsValid() bool {
	return t < SuspendMax
}

// SuspendAction is the configured reaction to a suspend source.
type SuspendAction uint32

const (
	SuspendActionNone SuspendAction = iota
	SuspendActionAutoSuspend
	SuspendActionForceSuspend
	SuspendActionHibernate
	SuspendActionShutdown
	SuspendActionInvalid
)

// String returns the action name.
func (a SuspendAction) String() string {
	switch a {
	case SuspendActionNone:
		return "NONE"
	case SuspendActionAutoSuspend:
		return "AUTO_SUSPEND"
	case SuspendActionForceSuspend:
		return "FORCE_SUSPEND"
	case SuspendActionHibernate:
		return "HIBERNATE"
	case SuspendActionShutdown:
		return "SHUTDOWN"
	default:
		return "INVALID"
	}
}

// WakeupClick is the click mode configured for a touch wakeup source.
type WakeupClick uint32

const (
	ClickSingle WakeupClick = 1
	ClickDouble WakeupClick = 2
)
