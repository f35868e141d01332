package action

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

const (
	logindDest = "org.freedesktop.login1"
	logindPath = "/org/freedesktop/login1"

	methodInhibit = "org.freedesktop.login1.Manager.Inhibit"
	methodSuspend = "org.freedesktop.login1.Manager.Suspend"
)

// busCaller is the subset of dbus.BusObject the inhibitor uses.
type busCaller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// LogindInhibitor implements RunningLockAction with systemd-logind
// inhibitor locks. Each held tag owns one inhibitor file descriptor;
// closing it drops the inhibitor.
type LogindInhibitor struct {
	obj  busCaller
	who  string
	mode string

	mu  sync.Mutex
	fds map[string]int
}

// NewLogindInhibitor connects to the system bus.
// who names the inhibiting application in loginctl output.
func NewLogindInhibitor(who string) (*LogindInhibitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return newLogindInhibitor(conn.Object(logindDest, logindPath), who), nil
}

func newLogindInhibitor(obj busCaller, who string) *LogindInhibitor {
	return &LogindInhibitor{
		obj:  obj,
		who:  who,
		mode: "block",
		fds:  make(map[string]int),
	}
}

// inhibitWhat maps a lock type to the logind inhibitor kinds it blocks.
func inhibitWhat(typ model.RunningLockType) string {
	switch typ {
	case model.LockScreen, model.LockProximityScreenControl:
		return "idle"
	default:
		return "sleep"
	}
}

func (l *LogindInhibitor) Lock(typ model.RunningLockType, tag string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.fds[tag]; ok {
		return nil
	}

	call := l.obj.Call(methodInhibit, 0, inhibitWhat(typ), l.who, tag, l.mode)
	if call.Err != nil {
		return fmt.Errorf("failed to acquire inhibitor lock: %w", call.Err)
	}

	var fd dbus.UnixFD
	if err := call.Store(&fd); err != nil {
		return fmt.Errorf("failed to extract file descriptor: %w", err)
	}
	l.fds[tag] = int(fd)
	return nil
}

func (l *LogindInhibitor) Unlock(_ model.RunningLockType, tag string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fd, ok := l.fds[tag]
	if !ok {
		return nil
	}
	delete(l.fds, tag)
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("failed to close inhibitor fd: %w", err)
	}
	return nil
}

// Held reports whether an inhibitor is open for tag.
func (l *LogindInhibitor) Held(tag string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.fds[tag]
	return ok
}

// Suspend asks logind to suspend the system. It has the shape of
// SysfsConfig.Sleep.
func (l *LogindInhibitor) Suspend(force bool) error {
	// Forced requests never prompt for authorization.
	call := l.obj.Call(methodSuspend, 0, !force)
	if call.Err != nil {
		return fmt.Errorf("logind suspend: %w", call.Err)
	}
	return nil
}

// Close drops every held inhibitor.
func (l *LogindInhibitor) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for tag, fd := range l.fds {
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.fds, tag)
	}
	return firstErr
}

var _ RunningLockAction = (*LogindInhibitor)(nil)
