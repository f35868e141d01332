package statemachine

import "github.com/powerpolicy/powermgr-go/pkg/model"

var userActivityReasons = map[model.UserActivityType]model.StateChangeReason{
	model.UserActivityButton:        model.ReasonHardKey,
	model.UserActivityTouch:         model.ReasonTouch,
	model.UserActivityAccessibility: model.ReasonAccessibility,
	model.UserActivitySoftware:      model.ReasonApplication,
	model.UserActivitySwitch:        model.ReasonSwitch,
	model.UserActivityCable:         model.ReasonCable,
}

var wakeupReasons = map[model.WakeupDeviceType]model.StateChangeReason{
	model.WakeupPowerButton:                model.ReasonPowerKey,
	model.WakeupWakeKey:                    model.ReasonHardKey,
	model.WakeupApplication:                model.ReasonApplication,
	model.WakeupPluggedIn:                  model.ReasonCable,
	model.WakeupHDMI:                       model.ReasonCable,
	model.WakeupGesture:                    model.ReasonTouch,
	model.WakeupCameraLaunch:               model.ReasonCamera,
	model.WakeupWakeMotion:                 model.ReasonSensor,
	model.WakeupLid:                        model.ReasonLid,
	model.WakeupDoubleClick:                model.ReasonDoubleClick,
	model.WakeupKeyboard:                   model.ReasonKeyboard,
	model.WakeupMouse:                      model.ReasonMouse,
	model.WakeupTouchpad:                   model.ReasonTouch,
	model.WakeupPen:                        model.ReasonPen,
	model.WakeupTouchScreen:                model.ReasonTouch,
	model.WakeupSwitch:                     model.ReasonSwitch,
	model.WakeupSingleClick:                model.ReasonTouch,
	model.WakeupPreBright:                  model.ReasonPreBright,
	model.WakeupPreBrightAuthSuccess:       model.ReasonPreBrightAuthSuccess,
	model.WakeupPreBrightAuthFailScreenOn:  model.ReasonPreBrightAuthFailScreenOn,
	model.WakeupPreBrightAuthFailScreenOff: model.ReasonPreBrightAuthFailScreenOff,
	model.WakeupAODSliding:                 model.ReasonAODSliding,
	model.WakeupIncomingCall:               model.ReasonIncomingCall,
	model.WakeupShell:                      model.ReasonShell,
	model.WakeupPickup:                     model.ReasonPickup,
	model.WakeupExitSystemSTR:              model.ReasonExitSystemSTR,
	model.WakeupScreenConnect:              model.ReasonScreenConnect,
	model.WakeupTPTouch:                    model.ReasonTPTouch,
	model.WakeupExScreenInit:               model.ReasonExScreenInit,
	model.WakeupAbnormalScreenConnect:      model.ReasonAbnormalScreenConnect,
}

var suspendReasons = map[model.SuspendDeviceType]model.StateChangeReason{
	model.SuspendApplication:   model.ReasonApplication,
	model.SuspendDeviceAdmin:   model.ReasonRemote,
	model.SuspendTimeout:       model.ReasonTimeout,
	model.SuspendLid:           model.ReasonLid,
	model.SuspendPowerKey:      model.ReasonPowerKey,
	model.SuspendSleepKey:      model.ReasonHardKey,
	model.SuspendHDMI:          model.ReasonCable,
	model.SuspendAccessibility: model.ReasonAccessibility,
	model.SuspendForceSuspend:  model.ReasonSystem,
	model.SuspendSwitch:        model.ReasonSwitch,
	model.SuspendTPCover:       model.ReasonTPCover,
	model.SuspendExScreenInit:  model.ReasonExScreenInit,
}

// ReasonByUserActivity maps a user activity type to a change reason.
// Unmapped types yield ReasonUnknown.
func ReasonByUserActivity(typ model.UserActivityType) model.StateChangeReason {
	if r, ok := userActivityReasons[typ]; ok {
		return r
	}
	return model.ReasonUnknown
}

// ReasonByWakeType maps a wakeup device type to a change reason.
// Unmapped types yield ReasonUnknown.
func ReasonByWakeType(typ model.WakeupDeviceType) model.StateChangeReason {
	if r, ok := wakeupReasons[typ]; ok {
		return r
	}
	return model.ReasonUnknown
}

// ReasonBySuspendType maps a suspend device type to a change reason.
// Unmapped types yield ReasonUnknown.
func ReasonBySuspendType(typ model.SuspendDeviceType) model.StateChangeReason {
	if r, ok := suspendReasons[typ]; ok {
		return r
	}
	return model.ReasonUnknown
}
