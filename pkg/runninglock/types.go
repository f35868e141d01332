package runninglock

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Running lock errors.
var (
	ErrNoAction       = errors.New("running lock action not set")
	ErrNotInitialized = errors.New("running lock manager not initialized")
	ErrInvalidType    = errors.New("invalid running lock type")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNotFound       = errors.New("running lock not found")
	ErrProxied        = errors.New("running lock is proxied")
	ErrAlreadyLocked  = errors.New("running lock already locked")
	ErrNotLocked      = errors.New("running lock not locked")
	ErrNotAllowed     = errors.New("running lock type not allowed in current state")
	ErrInvalidPid     = errors.New("invalid pid")
	ErrInvalidStatus  = errors.New("invalid proximity status")
)

// CheckOverTimeInterval is the period of the over-time sweep.
const CheckOverTimeInterval = 60 * time.Second

// Proximity screen-off delays after the sensor reports close.
const (
	ForegroundInCallDelay = 300 * time.Millisecond
	BackgroundInCallDelay = 800 * time.Millisecond
)

// InCallBundleName is the application whose foreground state selects the
// proximity screen-off delay.
const InCallBundleName = "com.ohos.callui"

// minValidPid is the smallest pid accepted by ProxyRunningLock.
const minValidPid = 1

// Tags carried by lock messages.
const (
	TagAdd    = "RUNNINGLOCK_ADD"
	TagRemove = "RUNNINGLOCK_REMOVE"
	TagUpdate = "RUNNINGLOCK_UPDATE"
)

// StateMachine is the part of the power state machine the lock hooks drive.
type StateMachine interface {
	State() model.PowerState
	SetState(state model.PowerState, reason model.StateChangeReason, force bool) bool
	ResetInactiveTimer()
	RefreshActivityInner(pid int32, callTimeMs int64, typ model.UserActivityType, needChangeBacklight bool)
	SetCoordinated(coordinated bool)
	ScheduleProximityScreenOff(delay time.Duration)
	CancelProximityScreenOff()
}

// ChangeCallback receives a message for every counted lock change of the
// SCREEN, PROXIMITY and background scene types.
type ChangeCallback interface {
	HandleRunningLockMessage(msg LockMessage)
}

// LockMessage describes a counted lock change.
type LockMessage struct {
	LockID     uint64
	Pid        int32
	Uid        int32
	Type       model.RunningLockType
	Name       string
	BundleName string
	Tag        string
	Timestamp  time.Time
}

// String renders the message in the platform key=value format.
func (m LockMessage) String() string {
	return fmt.Sprintf("LOCKID=%d PID=%d UID=%d TYPE=%d NAME=%s BUNDLENAME=%s TAG=%s TIMESTAMP=%d",
		m.LockID, m.Pid, m.Uid, uint32(m.Type), m.Name, m.BundleName, m.Tag, m.Timestamp.UnixMilli())
}

// messageName strips the trailing "_suffix" callers append to lock names.
func messageName(name string) string {
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		return name[:i]
	}
	return name
}

// ProximityStatus is a proximity sensor reading.
type ProximityStatus uint32

const (
	ProximityAway ProximityStatus = iota
	ProximityClose
)

func (s ProximityStatus) String() string {
	switch s {
	case ProximityAway:
		return "AWAY"
	case ProximityClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Manager.
type Config struct {
	// Action takes and drops the backend inhibitors. Required.
	Action action.RunningLockAction

	// StateMachine receives the screen, proximity and coordination side
	// effects (optional).
	StateMachine StateMachine

	// Callback receives lock messages (optional).
	Callback ChangeCallback

	// IsForeground reports whether a bundle is in the foreground. Nil
	// treats every bundle as foreground.
	IsForeground func(bundleName string) bool

	// SessionID is stamped on emitted events.
	SessionID string

	// EventLogger receives structured lock events (optional).
	EventLogger log.Logger

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// RecordInfo is a copy of a lock record's externally visible fields.
type RecordInfo struct {
	LockID      uint64                 `json:"lockId"`
	Name        string                 `json:"name"`
	BundleName  string                 `json:"bundleName"`
	Type        model.RunningLockType  `json:"type"`
	Pid         int32                  `json:"pid"`
	Uid         int32                  `json:"uid"`
	TimeoutMs   int32                  `json:"timeoutMs"`
	State       model.RunningLockState `json:"state"`
	NeedRestore bool                   `json:"needRestore"`
	OverTime    bool                   `json:"overTime"`
	LockTimeMs  int64                  `json:"lockTimeMs"`
}
