package model

import "strconv"

// StateChangeReason is the cause attached to every transition attempt.
type StateChangeReason uint32

const (
	ReasonInit                       StateChangeReason = 0
	ReasonTimeout                    StateChangeReason = 1
	ReasonRunningLock                StateChangeReason = 2
	ReasonBattery                    StateChangeReason = 3
	ReasonThermal                    StateChangeReason = 4
	ReasonWork                       StateChangeReason = 5
	ReasonSystem                     StateChangeReason = 6
	ReasonApplication                StateChangeReason = 10
	ReasonSettings                   StateChangeReason = 11
	ReasonHardKey                    StateChangeReason = 12
	ReasonTouch                      StateChangeReason = 13
	ReasonCable                      StateChangeReason = 14
	ReasonSensor                     StateChangeReason = 15
	ReasonLid                        StateChangeReason = 16
	ReasonCamera                     StateChangeReason = 17
	ReasonAccessibility              StateChangeReason = 18
	ReasonReset                      StateChangeReason = 19
	ReasonPowerKey                   StateChangeReason = 20
	ReasonKeyboard                   StateChangeReason = 21
	ReasonMouse                      StateChangeReason = 22
	ReasonDoubleClick                StateChangeReason = 23
	ReasonSwitch                     StateChangeReason = 25
	ReasonPreBright                  StateChangeReason = 26
	ReasonPreBrightAuthSuccess       StateChangeReason = 27
	ReasonPreBrightAuthFailScreenOn  StateChangeReason = 28
	ReasonPreBrightAuthFailScreenOff StateChangeReason = 29
	ReasonRefresh                    StateChangeReason = 30
	ReasonCoordination               StateChangeReason = 31
	ReasonProximity                  StateChangeReason = 32
	ReasonIncomingCall               StateChangeReason = 33
	ReasonShell                      StateChangeReason = 34
	ReasonPickup                     StateChangeReason = 35
	ReasonAODSliding                 StateChangeReason = 40
	ReasonPen                        StateChangeReason = 41
	ReasonShutDown                   StateChangeReason = 42
	ReasonScreenConnect              StateChangeReason = 43
	ReasonSwitchingDozeMode          StateChangeReason = 44
	ReasonHibernate                  StateChangeReason = 45
	ReasonExScreenInit               StateChangeReason = 46
	ReasonAbnormalScreenConnect      StateChangeReason = 47
	ReasonRemote                     StateChangeReason = 100
	ReasonTimeoutNoScreenLock        StateChangeReason = 101
	ReasonExitSystemSTR              StateChangeReason = 102
	ReasonTPTouch                    StateChangeReason = 103
	ReasonTPCover                    StateChangeReason = 104
	ReasonUnknown                    StateChangeReason = 1000
)

var reasonNames = map[StateChangeReason]string{
	ReasonInit:                       "INIT",
	ReasonTimeout:                    "TIMEOUT",
	ReasonRunningLock:                "RUNNING_LOCK",
	ReasonBattery:                    "BATTERY",
	ReasonThermal:                    "THERMAL",
	ReasonWork:                       "WORK",
	ReasonSystem:                     "SYSTEM",
	ReasonApplication:                "APPLICATION",
	ReasonSettings:                   "SETTINGS",
	ReasonHardKey:                    "HARD_KEY",
	ReasonTouch:                      "TOUCH",
	ReasonCable:                      "CABLE",
	ReasonSensor:                     "SENSOR",
	ReasonLid:                        "LID",
	ReasonCamera:                     "CAMERA",
	ReasonAccessibility:              "ACCESSIBILITY",
	ReasonReset:                      "RESET",
	ReasonPowerKey:                   "POWER_KEY",
	ReasonKeyboard:                   "KEYBOARD",
	ReasonMouse:                      "MOUSE",
	ReasonDoubleClick:                "DOUBLE_CLICK",
	ReasonSwitch:                     "SWITCH",
	ReasonPreBright:                  "PRE_BRIGHT",
	ReasonPreBrightAuthSuccess:       "PRE_BRIGHT_AUTH_SUCCESS",
	ReasonPreBrightAuthFailScreenOn:  "PRE_BRIGHT_AUTH_FAIL_SCREEN_ON",
	ReasonPreBrightAuthFailScreenOff: "PRE_BRIGHT_AUTH_FAIL_SCREEN_OFF",
	ReasonRefresh:                    "REFRESH",
	ReasonCoordination:               "COORDINATION",
	ReasonProximity:                  "PROXIMITY",
	ReasonIncomingCall:               "INCOMING_CALL",
	ReasonShell:                      "SHELL",
	ReasonPickup:                     "PICKUP",
	ReasonAODSliding:                 "AOD_SLIDING",
	ReasonPen:                        "PEN",
	ReasonShutDown:                   "SHUT_DOWN",
	ReasonScreenConnect:              "SCREEN_CONNECT",
	ReasonSwitchingDozeMode:          "SWITCHING_DOZE_MODE",
	ReasonHibernate:                  "HIBERNATE",
	ReasonExScreenInit:               "EX_SCREEN_INIT",
	ReasonAbnormalScreenConnect:      "ABNORMAL_SCREEN_CONNECT",
	ReasonRemote:                     "REMOTE",
	ReasonTimeoutNoScreenLock:        "TIMEOUT_NO_SCREEN_LOCK",
	ReasonExitSystemSTR:              "EXIT_SYSTEM_STR",
	ReasonTPTouch:                    "TP_TOUCH",
	ReasonTPCover:                    "TP_COVER",
	ReasonUnknown:                    "UNKNOWN",
}

// String returns the reason name.
func (r StateChangeReason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// Code returns the numeric reason as a decimal string.
func (r StateChangeReason) Code() string {
	return strconv.FormatUint(uint64(r), 10)
}

// UserActivityType classifies a user activity refresh.
type UserActivityType uint32

const (
	UserActivityOther UserActivityType = iota
	UserActivityButton
	UserActivityTouch
	UserActivityAccessibility
	UserActivityAttention
	UserActivitySoftware
	UserActivitySwitch
	UserActivityCable

	UserActivityMax = UserActivityCable
)

// String returns the activity type name.
func (t UserActivityType) String() string {
	switch t {
	case UserActivityOther:
		return "OTHER"
	case UserActivityButton:
		return "BUTTON"
	case UserActivityTouch:
		return "TOUCH"
	case UserActivityAccessibility:
		return "ACCESSIBILITY"
	case UserActivityAttention:
		return "ATTENTION"
	case UserActivitySoftware:
		return "SOFTWARE"
	case UserActivitySwitch:
		return "SWITCH"
	case UserActivityCable:
		return "CABLE"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether t is within the declared range.
func (t UserActivityType) IsValid() bool {
	return t <= UserActivityMax
}
