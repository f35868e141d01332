package model

// PowerState is the coarse power state of the device.
// Values match the platform ABI and are ordered by wakefulness.
type PowerState uint32

const (
	// PowerStateAwake means the screen is on and the CPU is running.
	PowerStateAwake PowerState = iota
	// PowerStateFreeze is a low-latency frozen state.
	PowerStateFreeze
	// PowerStateInactive means the screen is off and the CPU is running.
	PowerStateInactive
	// PowerStateStandBy is a standby state.
	PowerStateStandBy
	// PowerStateDoze is the always-on display doze state.
	PowerStateDoze
	// PowerStateSleep means the screen and the CPU are off.
	PowerStateSleep
	// PowerStateHibernate means memory has been written to disk.
	PowerStateHibernate
	// PowerStateShutdown means the device is powering off.
	PowerStateShutdown
	// PowerStateDim is the dimmed sub-state of awake.
	PowerStateDim
	// PowerStateUnknown is the state before initialization.
	PowerStateUnknown
)

// String returns the state name.
func (s PowerState) String() string {
	switch s {
	case PowerStateAwake:
		return "AWAKE"
	case PowerStateFreeze:
		return "FREEZE"
	case PowerStateInactive:
		return "INACTIVE"
	case PowerStateStandBy:
		return "STAND_BY"
	case PowerStateDoze:
		return "DOZE"
	case PowerStateSleep:
		return "SLEEP"
	case PowerStateHibernate:
		return "HIBERNATE"
	case PowerStateShutdown:
		return "SHUTDOWN"
	case PowerStateDim:
		return "DIM"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether s is a declared state other than UNKNOWN.
func (s PowerState) IsValid() bool {
	return s < PowerStateUnknown
}

// IsTerminal reports whether s is excluded from display reconciliation.
func (s PowerState) IsTerminal() bool {
	return s == PowerStateSleep || s == PowerStateHibernate || s == PowerStateShutdown
}

// ParsePowerState returns the state with the given name.
func ParsePowerState(name string) (PowerState, bool) {
	for s := PowerStateAwake; s <= PowerStateUnknown; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return PowerStateUnknown, false
}

// DisplayState is the driver-level display state.
type DisplayState uint32

const (
	DisplayOff DisplayState = iota
	DisplayDim
	DisplayOn
	DisplaySuspend
	DisplayDoze
	DisplayDozeSuspend
	DisplayUnknown
)

// String returns the display state name.
func (d DisplayState) String() string {
	switch d {
	case DisplayOff:
		return "DISPLAY_OFF"
	case DisplayDim:
		return "DISPLAY_DIM"
	case DisplayOn:
		return "DISPLAY_ON"
	case DisplaySuspend:
		return "DISPLAY_SUSPEND"
	case DisplayDoze:
		return "DISPLAY_DOZE"
	case DisplayDozeSuspend:
		return "DISPLAY_DOZE_SUSPEND"
	default:
		return "DISPLAY_UNKNOWN"
	}
}

// IsOn reports whether the display is lit (on or dimmed).
func (d DisplayState) IsOn() bool {
	return d == DisplayOn || d == DisplayDim
}

// TransitResult is the outcome of a single transition attempt.
type TransitResult uint32

const (
	TransitSuccess TransitResult = iota
	TransitAlreadyInState
	TransitLocking
	TransitHDIErr
	TransitDisplayOnErr
	TransitDisplayOffErr
	TransitForbidTransit
	TransitOtherErr
)

// String returns the result name.
func (r TransitResult) String() string {
	switch r {
	case TransitSuccess:
		return "SUCCESS"
	case TransitAlreadyInState:
		return "ALREADY_IN_STATE"
	case TransitLocking:
		return "LOCKING"
	case TransitHDIErr:
		return "HDI_ERR"
	case TransitDisplayOnErr:
		return "DISPLAY_ON_ERR"
	case TransitDisplayOffErr:
		return "DISPLAY_OFF_ERR"
	case TransitForbidTransit:
		return "FORBID_TRANSIT"
	default:
		return "OTHER_ERR"
	}
}

// Succeeded reports whether the caller needs no further action.
func (r TransitResult) Succeeded() bool {
	return r == TransitSuccess || r == TransitAlreadyInState
}

// ActionResult is the result of a device action call.
type ActionResult uint32

const (
	ActionSuccess ActionResult = iota
	ActionFailed
)

// Suspend modes passed to the device action.
const (
	SuspendDeviceNeedDoze    uint32 = 0
	SuspendDeviceImmediately uint32 = 1 << 0
)

// Refresh modes passed to the device action.
const (
	RefreshActivityNeedChangeLights uint32 = 0
	RefreshActivityNoChangeLights   uint32 = 1 << 0
)
