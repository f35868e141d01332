package statemachine

import (
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/taskqueue"
)

func (m *PowerStateMachine) taskQueue() *taskqueue.Queue[timerEvent] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queue
}

// setDelayTimer schedules ev after delayMs, replacing a pending one.
func (m *PowerStateMachine) setDelayTimer(ev timerEvent, delayMs int64) {
	q := m.taskQueue()
	if q == nil {
		return
	}
	if delayMs < 0 {
		delayMs = 0
	}
	if err := q.Set(ev, time.Duration(delayMs)*time.Millisecond, func() { m.handleDelayTimer(ev) }); err != nil {
		m.debugLog("timer not set", "event", ev, "error", err)
		return
	}
	m.debugLog("timer set", "event", ev, "delayMs", delayMs)
}

// cancelDelayTimer removes a pending ev. A fired or unknown timer is ignored.
func (m *PowerStateMachine) cancelDelayTimer(ev timerEvent) {
	q := m.taskQueue()
	if q == nil {
		return
	}
	_ = q.Cancel(ev)
}

// TimerPending reports whether the named inactivity timer is armed.
// Valid names are "activity-timeout", "activity-off-timeout" and "sleep-timeout".
func (m *PowerStateMachine) TimerPending(name string) bool {
	q := m.taskQueue()
	if q == nil {
		return false
	}
	for _, ev := range []timerEvent{eventActivityTimeout, eventActivityOffTimeout, eventSleepTimeout, eventProximityScreenOff} {
		if ev.String() == name {
			return q.Pending(ev)
		}
	}
	return false
}

func (m *PowerStateMachine) cancelInactivityTimers() {
	m.cancelDelayTimer(eventActivityTimeout)
	m.cancelDelayTimer(eventActivityOffTimeout)
	m.cancelDelayTimer(eventSleepTimeout)
}

// ResetInactiveTimer cancels the inactivity timers and, when auto
// display-off is enabled and INACTIVE is not lock-blocked, arms the
// activity timeout at two thirds of the display-off time.
func (m *PowerStateMachine) ResetInactiveTimer() {
	m.cancelInactivityTimers()

	offTime := m.DisplayOffTime()
	if offTime < 0 {
		m.debugLog("auto display-off disabled")
		return
	}
	if m.CheckRunningLock(model.PowerStateInactive) {
		m.setDelayTimer(eventActivityTimeout, offTime*2/3)
	}
}

// ResetSleepTimer cancels the inactivity timers and, when auto sleep is
// enabled and SLEEP is not lock-blocked, arms the sleep timeout.
func (m *PowerStateMachine) ResetSleepTimer() {
	m.cancelInactivityTimers()

	sleepTime := m.SleepTime()
	if sleepTime < 0 {
		m.debugLog("auto sleep disabled")
		return
	}
	if m.CheckRunningLock(model.PowerStateSleep) {
		m.setDelayTimer(eventSleepTimeout, sleepTime)
	}
}

func (m *PowerStateMachine) handleDelayTimer(ev timerEvent) {
	m.debugLog("timer fired", "event", ev)
	switch ev {
	case eventActivityTimeout:
		m.HandleActivityTimeout()
	case eventActivityOffTimeout:
		m.HandleActivityOffTimeout()
	case eventSleepTimeout:
		m.HandleActivitySleepTimeout()
	case eventSystemWakeup:
		m.HandleSystemWakeup()
	case eventProximityScreenOff:
		m.HandleProximityScreenOffTimeout()
	}
}

// HandleActivityTimeout dims a fully lit display and arms the off timeout
// at one third of the display-off time. A display that is already dim or
// off only re-arms the off timeout.
func (m *PowerStateMachine) HandleActivityTimeout() {
	if !m.CheckRunningLock(model.PowerStateInactive) {
		m.debugLog("running lock blocks INACTIVE, activity timeout ignored")
		return
	}
	act := m.stateAction()
	if act.GetDisplayState() == model.DisplayOn {
		act.SetDisplayState(model.DisplayDim, model.ReasonTimeout)
	}
	offTime := m.DisplayOffTime()
	if offTime < 0 {
		return
	}
	m.setDelayTimer(eventActivityOffTimeout, offTime/3)
}

// HandleActivityOffTimeout enters INACTIVE when the display is still lit.
// When the display is already off it re-arms the sleep timer.
func (m *PowerStateMachine) HandleActivityOffTimeout() {
	if !m.CheckRunningLock(model.PowerStateInactive) {
		m.debugLog("running lock blocks INACTIVE, off timeout ignored")
		return
	}
	if m.IsScreenOn() {
		m.SetState(model.PowerStateInactive, model.ReasonTimeout, false)
		return
	}
	m.ResetSleepTimer()
}

// HandleActivitySleepTimeout enters SLEEP when the display is off and no
// running lock blocks it.
func (m *PowerStateMachine) HandleActivitySleepTimeout() {
	if !m.CheckRunningLock(model.PowerStateSleep) {
		m.debugLog("running lock blocks SLEEP, sleep timeout ignored")
		return
	}
	switch m.DisplayState() {
	case model.DisplayOff, model.DisplaySuspend:
		m.SetState(model.PowerStateSleep, model.ReasonTimeout, false)
	default:
		m.debugLog("sleep timeout ignored, display lit")
	}
}

// HandleSystemWakeup follows a driver-level wake by entering AWAKE or
// INACTIVE to match the screen.
func (m *PowerStateMachine) HandleSystemWakeup() {
	if m.IsScreenOn() {
		m.SetState(model.PowerStateAwake, model.ReasonSystem, true)
	} else {
		m.SetState(model.PowerStateInactive, model.ReasonSystem, true)
	}
}

// ScheduleProximityScreenOff arms the proximity screen-off timer.
func (m *PowerStateMachine) ScheduleProximityScreenOff(delay time.Duration) {
	m.setDelayTimer(eventProximityScreenOff, delay.Milliseconds())
}

// CancelProximityScreenOff disarms the proximity screen-off timer.
func (m *PowerStateMachine) CancelProximityScreenOff() {
	m.cancelDelayTimer(eventProximityScreenOff)
}

// HandleProximityScreenOffTimeout turns the screen off while a proximity
// lock is still held.
func (m *PowerStateMachine) HandleProximityScreenOffTimeout() {
	if !m.lockValid(model.LockProximityScreenControl) {
		m.debugLog("proximity lock released, screen-off skipped")
		return
	}
	m.SetState(model.PowerStateInactive, model.ReasonProximity, true)
}
