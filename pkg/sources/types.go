package sources

import (
	"fmt"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Source table keys.
const (
	KeyPowerKey    = "powerkey"
	KeyTimeout     = "timeout"
	KeyLid         = "lid"
	KeySwitch      = "switch"
	KeyMouse       = "mouse"
	KeyKeyboard    = "keyborad"
	KeyTouchscreen = "touchscreen"
	KeyTouchpad    = "touchpad"
	KeyPen         = "pen"
)

// SuspendKeys lists the accepted suspend source keys.
var SuspendKeys = []string{KeyPowerKey, KeyTimeout, KeyLid, KeySwitch}

// WakeupKeys lists the accepted wakeup source keys.
var WakeupKeys = []string{
	KeyPowerKey, KeyMouse, KeyKeyboard, KeyTouchscreen,
	KeyTouchpad, KeyPen, KeyLid, KeySwitch,
}

// SuspendSource is one entry of the suspend table.
type SuspendSource struct {
	Key     string
	Type    model.SuspendDeviceType
	Action  model.SuspendAction
	DelayMs uint32
}

// WakeupSource is one enabled entry of the wakeup table.
type WakeupSource struct {
	Key    string
	Type   model.WakeupDeviceType
	Enable bool
	Click  model.WakeupClick
}

// SuspendTable is a parsed suspend table.
type SuspendTable struct {
	Sources []SuspendSource

	// Missing lists accepted keys absent from the input.
	Missing []string
}

// Get returns the source configured for t.
func (t SuspendTable) Get(typ model.SuspendDeviceType) (SuspendSource, bool) {
	for _, s := range t.Sources {
		if s.Type == typ {
			return s, true
		}
	}
	return SuspendSource{}, false
}

// WakeupTable is a parsed wakeup table.
type WakeupTable struct {
	Sources []WakeupSource

	// Missing lists accepted keys absent from the input.
	Missing []string
}

// Enabled reports whether a wakeup source of type typ is enabled.
func (t WakeupTable) Enabled(typ model.WakeupDeviceType) bool {
	for _, s := range t.Sources {
		if s.Type == typ {
			return s.Enable
		}
	}
	return false
}

// MapSuspendKey returns the suspend type for a table key.
// Unknown keys map to SuspendMin with ok false.
func MapSuspendKey(key string) (model.SuspendDeviceType, bool) {
	switch key {
	case KeyPowerKey:
		return model.SuspendPowerKey, true
	case KeyTimeout:
		return model.SuspendTimeout, true
	case KeyLid:
		return model.SuspendLid, true
	case KeySwitch:
		return model.SuspendSwitch, true
	}
	return model.SuspendMin, false
}

// MapWakeupKey returns the wakeup type for a table key and click mode.
func MapWakeupKey(key string, click model.WakeupClick) model.WakeupDeviceType {
	switch key {
	case KeyPowerKey:
		return model.WakeupPowerButton
	case KeyMouse:
		return model.WakeupMouse
	case KeyKeyboard:
		return model.WakeupKeyboard
	case KeyPen:
		return model.WakeupPen
	case KeyTouchpad:
		return model.WakeupTouchpad
	case KeyLid:
		return model.WakeupLid
	case KeySwitch:
		return model.WakeupSwitch
	case KeyTouchscreen:
		if click == model.ClickSingle {
			return model.WakeupSingleClick
		}
		return model.WakeupDoubleClick
	}
	return model.WakeupUnknown
}

// LoadError represents an error loading a source table.
type LoadError struct {
	// File is the path or origin of the table that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
