package monitor

import (
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
)

type stateResponse struct {
	State          string                   `json:"state"`
	Reason         string                   `json:"reason"`
	Display        string                   `json:"display"`
	DisplayOffTime int64                    `json:"displayOffTimeMs"`
	SleepTime      int64                    `json:"sleepTimeMs"`
	Times          statemachine.DeviceTimes `json:"times"`
}

type lockResponse struct {
	runninglock.RecordInfo
	TypeName  string `json:"typeName"`
	StateName string `json:"stateName"`
}

// EventMessage is the JSON form of a log.Event on the event stream.
// Enum values are rendered by name.
type EventMessage struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	Component string    `json:"component"`
	Category  string    `json:"category"`

	OldState  string `json:"oldState,omitempty"`
	NewState  string `json:"newState,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Display   string `json:"display,omitempty"`
	Result    string `json:"result,omitempty"`
	LockOp    string `json:"lockOp,omitempty"`
	LockID    uint64 `json:"lockId,omitempty"`
	LockName  string `json:"lockName,omitempty"`
	LockType  string `json:"lockType,omitempty"`
	Pid       int32  `json:"pid,omitempty"`
	Uid       int32  `json:"uid,omitempty"`
	Bundle    string `json:"bundleName,omitempty"`
	Message   string `json:"message,omitempty"`
	Operation string `json:"operation,omitempty"`
}

func newEventMessage(ev log.Event) EventMessage {
	m := EventMessage{
		Timestamp: ev.Timestamp,
		SessionID: ev.SessionID,
		Component: ev.Component.String(),
		Category:  ev.Category.String(),
	}
	switch {
	case ev.StateChange != nil:
		m.OldState = ev.StateChange.OldState.String()
		m.NewState = ev.StateChange.NewState.String()
		m.Reason = ev.StateChange.Reason.String()
	case ev.Desync != nil:
		m.OldState = ev.Desync.Believed.String()
		m.NewState = ev.Desync.Corrected.String()
		m.Display = ev.Desync.Display.String()
		m.Message = ev.Desync.Message
	case ev.TransitFailure != nil:
		m.OldState = ev.TransitFailure.From.String()
		m.NewState = ev.TransitFailure.To.String()
		m.Reason = ev.TransitFailure.Reason.String()
		m.Result = ev.TransitFailure.Result.String()
		m.Message = ev.TransitFailure.Message
	case ev.Lock != nil:
		m.LockOp = ev.Lock.Op.String()
		m.LockID = ev.Lock.LockID
		m.LockName = ev.Lock.Name
		m.LockType = ev.Lock.Type.String()
		m.Pid = ev.Lock.Pid
		m.Uid = ev.Lock.Uid
		m.Bundle = ev.Lock.BundleName
	case ev.Error != nil:
		m.Message = ev.Error.Message
		m.Operation = ev.Error.Context
	}
	return m
}
