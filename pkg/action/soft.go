package action

import (
	"sync"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// SoftDevice is an in-memory DeviceStateAction for headless systems and
// tests. The display always reports the last state it was set to.
type SoftDevice struct {
	mu          sync.Mutex
	display     model.DisplayState
	coordinated bool
	sleeps      int
	suspends    int
	wakeups     int
	refreshes   int
}

// NewSoftDevice creates a SoftDevice with the display on.
func NewSoftDevice() *SoftDevice {
	return &SoftDevice{display: model.DisplayOn}
}

func (d *SoftDevice) Suspend(int64, model.SuspendDeviceType, uint32) {
	d.mu.Lock()
	d.suspends++
	d.mu.Unlock()
}

func (d *SoftDevice) ForceSuspend() {
	d.GoToSleep(true)
}

func (d *SoftDevice) Wakeup(int64, model.WakeupDeviceType, string, string) {
	d.mu.Lock()
	d.wakeups++
	d.mu.Unlock()
}

func (d *SoftDevice) RefreshActivity(int64, model.UserActivityType, uint32) {
	d.mu.Lock()
	d.refreshes++
	d.mu.Unlock()
}

func (d *SoftDevice) GetDisplayState() model.DisplayState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.display
}

func (d *SoftDevice) SetDisplayState(state model.DisplayState, _ model.StateChangeReason) model.ActionResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.display = state
	return model.ActionSuccess
}

func (d *SoftDevice) GoToSleep(bool) model.ActionResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sleeps++
	return model.ActionSuccess
}

func (d *SoftDevice) SetCoordinated(coordinated bool) {
	d.mu.Lock()
	d.coordinated = coordinated
	d.mu.Unlock()
}

// ForceDisplay changes the reported display state without going through
// SetDisplayState, as a driver would when the panel changes on its own.
func (d *SoftDevice) ForceDisplay(state model.DisplayState) {
	d.mu.Lock()
	d.display = state
	d.mu.Unlock()
}

// Coordinated reports the last SetCoordinated value.
func (d *SoftDevice) Coordinated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.coordinated
}

// Counts returns how often each entry point was called.
func (d *SoftDevice) Counts() (suspends, wakeups, refreshes, sleeps int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspends, d.wakeups, d.refreshes, d.sleeps
}

// SoftLocks is an in-memory RunningLockAction that records held tags.
type SoftLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewSoftLocks creates an empty SoftLocks.
func NewSoftLocks() *SoftLocks {
	return &SoftLocks{held: make(map[string]bool)}
}

func (l *SoftLocks) Lock(_ model.RunningLockType, tag string) error {
	l.mu.Lock()
	l.held[tag] = true
	l.mu.Unlock()
	return nil
}

func (l *SoftLocks) Unlock(_ model.RunningLockType, tag string) error {
	l.mu.Lock()
	delete(l.held, tag)
	l.mu.Unlock()
	return nil
}

// Held reports whether tag is currently locked.
func (l *SoftLocks) Held(tag string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[tag]
}

var (
	_ DeviceStateAction = (*SoftDevice)(nil)
	_ RunningLockAction = (*SoftLocks)(nil)
)
