package log

import (
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Event represents a power-management diagnostic event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the daemon run that produced the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Component that captured the event.
	Component Component `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	StateChange    *StateChangeEvent    `cbor:"10,keyasint,omitempty"`
	Desync         *DesyncEvent         `cbor:"11,keyasint,omitempty"`
	TransitFailure *TransitFailureEvent `cbor:"12,keyasint,omitempty"`
	Lock           *LockEvent           `cbor:"13,keyasint,omitempty"`
	Error          *ErrorEventData      `cbor:"14,keyasint,omitempty"`
}

// Component indicates which part of the power core captured the event.
type Component uint8

const (
	// ComponentStateMachine is the power state machine.
	ComponentStateMachine Component = 0
	// ComponentRunningLock is the running lock manager.
	ComponentRunningLock Component = 1
	// ComponentService is the composing service layer.
	ComponentService Component = 2
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentStateMachine:
		return "STATE_MACHINE"
	case ComponentRunningLock:
		return "RUNNING_LOCK"
	case ComponentService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a committed power state transition.
	CategoryState Category = 0
	// CategoryDesync indicates a display/state mismatch was corrected.
	CategoryDesync Category = 1
	// CategoryTransit indicates a transition attempt that did not commit.
	CategoryTransit Category = 2
	// CategoryLock indicates a running lock edge.
	CategoryLock Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryDesync:
		return "DESYNC"
	case CategoryTransit:
		return "TRANSIT"
	case CategoryLock:
		return "LOCK"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a committed transition.
type StateChangeEvent struct {
	// OldState is the state before the transition.
	OldState model.PowerState `cbor:"1,keyasint"`

	// NewState is the state after the transition.
	NewState model.PowerState `cbor:"2,keyasint"`

	// Reason for the change.
	Reason model.StateChangeReason `cbor:"3,keyasint"`
}

// DesyncEvent captures a reconciliation between believed and real state.
type DesyncEvent struct {
	// Believed is the state the machine held before correction.
	Believed model.PowerState `cbor:"1,keyasint"`

	// Corrected is the state implied by the display.
	Corrected model.PowerState `cbor:"2,keyasint"`

	// Display is the display state that triggered the correction.
	Display model.DisplayState `cbor:"3,keyasint"`

	// Message is a human-readable description.
	Message string `cbor:"4,keyasint,omitempty"`
}

// TransitFailureEvent captures a transition attempt that did not commit.
type TransitFailureEvent struct {
	From   model.PowerState        `cbor:"1,keyasint"`
	To     model.PowerState        `cbor:"2,keyasint"`
	Reason model.StateChangeReason `cbor:"3,keyasint"`
	Result model.TransitResult     `cbor:"4,keyasint"`

	// Message is the recorded cause.
	Message string `cbor:"5,keyasint,omitempty"`
}

// LockEvent captures a running lock edge.
type LockEvent struct {
	// Op is the lock operation.
	Op LockOp `cbor:"1,keyasint"`

	LockID     uint64                `cbor:"2,keyasint"`
	Name       string                `cbor:"3,keyasint,omitempty"`
	Type       model.RunningLockType `cbor:"4,keyasint"`
	Pid        int32                 `cbor:"5,keyasint,omitempty"`
	Uid        int32                 `cbor:"6,keyasint,omitempty"`
	BundleName string                `cbor:"7,keyasint,omitempty"`
}

// LockOp is the operation recorded in a LockEvent.
type LockOp uint8

const (
	// LockOpAdd indicates a lock started counting.
	LockOpAdd LockOp = 0
	// LockOpRemove indicates a lock stopped counting.
	LockOpRemove LockOp = 1
	// LockOpProxy indicates a lock was suppressed by a proxy.
	LockOpProxy LockOp = 2
	// LockOpUnproxy indicates a suppressed lock was restored.
	LockOpUnproxy LockOp = 3
	// LockOpTimeout indicates a lock was released by its timeout.
	LockOpTimeout LockOp = 4
)

// String returns the lock operation name.
func (o LockOp) String() string {
	switch o {
	case LockOpAdd:
		return "ADD"
	case LockOpRemove:
		return "REMOVE"
	case LockOpProxy:
		return "PROXY"
	case LockOpUnproxy:
		return "UNPROXY"
	case LockOpTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors in any component.
type ErrorEventData struct {
	// Component where the error occurred.
	Component Component `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
