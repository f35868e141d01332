package statemachine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// DumpInfo returns a human-readable report of the machine. It does not
// change any state.
func (m *PowerStateMachine) DumpInfo() string {
	state := m.State()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	b.WriteString("POWER STATE DUMP:\n")
	fmt.Fprintf(&b, "Current State: %s  Reason: %d  Time: %d\n", state, uint32(m.lastReason), m.lastTime)
	fmt.Fprintf(&b, "ScreenOffTime: %d\n", m.displayOffTime)
	if m.overridden {
		fmt.Fprintf(&b, "BeforeOverrideTime: %d\n", m.beforeOverrideTime)
	}
	fmt.Fprintf(&b, "SleepTime: %d\n", m.sleepTime)
	fmt.Fprintf(&b, "DisplaySuspend: %t\n", m.enableDisplaySuspend)
	fmt.Fprintf(&b, "Listeners: %d\n", len(m.listeners))

	b.WriteString("DUMP DETAILS:\n")
	fmt.Fprintf(&b, "Last Screen On: %d\n", m.times.LastScreenOn)
	fmt.Fprintf(&b, "Last Screen Off: %d\n", m.times.LastScreenOff)
	fmt.Fprintf(&b, "Last SuspendDevice: %d\n", m.times.LastSuspendDevice)
	fmt.Fprintf(&b, "Last WakeupDevice: %d\n", m.times.LastWakeupDevice)
	fmt.Fprintf(&b, "Last Refresh: %d\n", m.times.LastRefresh)

	b.WriteString("DUMP EACH STATES:\n")
	states := make([]model.PowerState, 0, len(m.controllers))
	for s := range m.controllers {
		states = append(states, s)
	}
	slices.Sort(states)
	for _, s := range states {
		c := m.controllers[s]
		fmt.Fprintf(&b, "State: %s   Reason: %s   Time: %d\n", s, c.lastReason, c.lastTime)
		if f := c.failure; f != nil {
			fmt.Fprintf(&b, "   Failure: %s   From: %s   Reason: %s   Time: %d   Message: %s\n",
				f.Result, f.From, f.Reason, f.Time, f.Message)
		}
	}
	return b.String()
}
