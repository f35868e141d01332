package statemachine

import (
	"fmt"
	"slices"

	"github.com/powerpolicy/powermgr-go/internal/tick"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// stateAction performs the driver calls for entering a state. It returns
// the transit result and, on failure, a human-readable cause.
type stateAction func(m *PowerStateMachine, reason model.StateChangeReason) (model.TransitResult, string)

// stateActions binds every declared state to its entry action.
var stateActions = map[model.PowerState]stateAction{
	model.PowerStateAwake:     (*PowerStateMachine).enterAwake,
	model.PowerStateFreeze:    (*PowerStateMachine).enterFreeze,
	model.PowerStateInactive:  (*PowerStateMachine).enterInactive,
	model.PowerStateStandBy:   (*PowerStateMachine).enterStandBy,
	model.PowerStateDoze:      (*PowerStateMachine).enterDoze,
	model.PowerStateSleep:     (*PowerStateMachine).enterSleep,
	model.PowerStateHibernate: (*PowerStateMachine).enterHibernate,
	model.PowerStateShutdown:  (*PowerStateMachine).enterShutdown,
	model.PowerStateDim:       (*PowerStateMachine).enterDim,
}

// defaultLockMap lists the lock types that forbid entering each state.
// A state missing from the table is always blocked.
var defaultLockMap = map[model.PowerState][]model.RunningLockType{
	model.PowerStateAwake: nil,
	model.PowerStateInactive: {
		model.LockScreen,
		model.LockProximityScreenControl,
	},
	model.PowerStateSleep: {
		model.LockBackground,
		model.LockBackgroundPhone,
		model.LockBackgroundNotification,
		model.LockBackgroundAudio,
		model.LockBackgroundSport,
		model.LockBackgroundNavigation,
		model.LockBackgroundTask,
		model.LockCoordination,
	},
	model.PowerStateFreeze:    nil,
	model.PowerStateStandBy:   nil,
	model.PowerStateDoze:      nil,
	model.PowerStateHibernate: nil,
	model.PowerStateShutdown:  nil,
	model.PowerStateDim:       nil,
}

func cloneLockMap() map[model.PowerState][]model.RunningLockType {
	m := make(map[model.PowerState][]model.RunningLockType, len(defaultLockMap))
	for state, types := range defaultLockMap {
		m[state] = slices.Clone(types)
	}
	return m
}

// transitFailure is the last non-committed attempt recorded by a controller.
type transitFailure struct {
	From    model.PowerState
	Reason  model.StateChangeReason
	Result  model.TransitResult
	Message string
	Time    int64
}

// stateController owns one target state.
// lastReason, lastTime and failure are guarded by the machine's mu.
type stateController struct {
	state  model.PowerState
	action stateAction

	lastReason model.StateChangeReason
	lastTime   int64
	failure    *transitFailure
}

// correctedState returns the state implied by display when it disagrees
// with believed. Terminal states are never corrected.
func correctedState(believed model.PowerState, display model.DisplayState) (model.PowerState, bool) {
	if believed.IsTerminal() {
		return believed, false
	}
	switch display {
	case model.DisplayOff:
		switch believed {
		case model.PowerStateAwake, model.PowerStateFreeze, model.PowerStateDim:
			return model.PowerStateInactive, true
		}
	case model.DisplayOn, model.DisplayDim:
		switch believed {
		case model.PowerStateInactive, model.PowerStateStandBy, model.PowerStateDoze:
			return model.PowerStateAwake, true
		}
	}
	return believed, false
}

// MatchState reconciles the believed state with the display and reports
// whether a correction was applied.
func (m *PowerStateMachine) MatchState() bool {
	display := m.stateAction().GetDisplayState()

	m.stateMu.Lock()
	believed := m.currentState
	corrected, ok := correctedState(believed, display)
	if ok {
		m.currentState = corrected
	}
	m.stateMu.Unlock()

	if ok {
		m.correctState(believed, corrected, display)
	}
	return ok
}

// correctState records a desync that MatchState has already corrected.
func (m *PowerStateMachine) correctState(believed, corrected model.PowerState, display model.DisplayState) {
	msg := fmt.Sprintf("believed %s but display is %s", believed, display)
	if m.logger != nil {
		m.logger.Warn("power state desync corrected",
			"believed", believed, "corrected", corrected, "display", display)
	}
	m.logEvent(log.Event{
		Category: log.CategoryDesync,
		Desync: &log.DesyncEvent{
			Believed:  believed,
			Corrected: corrected,
			Display:   display,
			Message:   msg,
		},
	})
}

// transitTo runs the transition algorithm for c. Listeners are notified
// after transitMu is released, so they may request transitions themselves.
func (m *PowerStateMachine) transitTo(c *stateController, reason model.StateChangeReason, ignoreLock bool) model.TransitResult {
	result, notify := m.transitLocked(c, reason, ignoreLock)
	if notify {
		m.notifyPowerStateChanged(c.state, reason)
	}
	return result
}

func (m *PowerStateMachine) transitLocked(c *stateController, reason model.StateChangeReason, ignoreLock bool) (model.TransitResult, bool) {
	m.transitMu.Lock()
	defer m.transitMu.Unlock()

	m.MatchState()
	from := m.State()
	m.debugLog("transit", "from", from, "to", c.state, "reason", reason, "ignoreLock", ignoreLock)

	if from == c.state {
		m.recordFailure(c, from, reason, model.TransitAlreadyInState, "already in "+c.state.String())
		return model.TransitAlreadyInState, false
	}

	if !ignoreLock && !m.CheckRunningLock(c.state) {
		m.recordFailure(c, from, reason, model.TransitLocking, "blocked by running lock")
		return model.TransitLocking, false
	}

	result, msg := c.action(m, reason)
	if result != model.TransitSuccess {
		m.recordFailure(c, from, reason, result, msg)
		return result, false
	}

	return model.TransitSuccess, m.commit(c, from, reason)
}

// commit makes c.state current and records the change. It reports whether
// listeners should be notified; the caller does so once transitMu is
// released.
func (m *PowerStateMachine) commit(c *stateController, from model.PowerState, reason model.StateChangeReason) bool {
	now := tick.Now()

	m.stateMu.Lock()
	m.currentState = c.state
	m.stateMu.Unlock()

	m.mu.Lock()
	c.lastReason = reason
	c.lastTime = now
	m.lastReason = reason
	m.lastTime = now
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("power state changed", "from", from, "to", c.state, "reason", reason)
	}
	m.logEvent(log.Event{
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: from,
			NewState: c.state,
			Reason:   reason,
		},
	})

	if c.state == model.PowerStateInactive && m.lockValid(model.LockCoordination) {
		m.debugLog("coordination lock held, listeners not notified", "state", c.state)
		return false
	}
	return true
}

func (m *PowerStateMachine) recordFailure(c *stateController, from model.PowerState, reason model.StateChangeReason, result model.TransitResult, msg string) {
	m.mu.Lock()
	c.failure = &transitFailure{
		From:    from,
		Reason:  reason,
		Result:  result,
		Message: msg,
		Time:    tick.Now(),
	}
	m.mu.Unlock()

	m.debugLog("transit not committed", "from", from, "to", c.state, "reason", reason, "result", result, "msg", msg)
	m.logEvent(log.Event{
		Category: log.CategoryTransit,
		TransitFailure: &log.TransitFailureEvent{
			From:    from,
			To:      c.state,
			Reason:  reason,
			Result:  result,
			Message: msg,
		},
	})
}

func (m *PowerStateMachine) offDisplayState() model.DisplayState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.enableDisplaySuspend {
		return model.DisplaySuspend
	}
	return model.DisplayOff
}

func (m *PowerStateMachine) enterAwake(reason model.StateChangeReason) (model.TransitResult, string) {
	m.setTime(func(t *DeviceTimes) { t.LastScreenOn = tick.Now() })
	if m.stateAction().SetDisplayState(model.DisplayOn, reason) != model.ActionSuccess {
		return model.TransitDisplayOnErr, "display on failed"
	}
	m.ResetInactiveTimer()
	return model.TransitSuccess, ""
}

func (m *PowerStateMachine) enterDim(reason model.StateChangeReason) (model.TransitResult, string) {
	if m.stateAction().SetDisplayState(model.DisplayDim, reason) != model.ActionSuccess {
		return model.TransitDisplayOnErr, "display dim failed"
	}
	return model.TransitSuccess, ""
}

func (m *PowerStateMachine) enterInactive(reason model.StateChangeReason) (model.TransitResult, string) {
	m.setTime(func(t *DeviceTimes) { t.LastScreenOff = tick.Now() })
	if m.stateAction().SetDisplayState(m.offDisplayState(), reason) != model.ActionSuccess {
		return model.TransitDisplayOffErr, "display off failed"
	}
	m.ResetSleepTimer()
	return model.TransitSuccess, ""
}

func (m *PowerStateMachine) enterSleep(reason model.StateChangeReason) (model.TransitResult, string) {
	act := m.stateAction()
	if act.SetDisplayState(m.offDisplayState(), reason) != model.ActionSuccess {
		return model.TransitDisplayOffErr, "display off failed"
	}
	m.cancelInactivityTimers()
	if act.GoToSleep(false) != model.ActionSuccess {
		return model.TransitHDIErr, "system sleep failed"
	}
	if m.cfg.ResumeAfterSleep {
		m.setDelayTimer(eventSystemWakeup, 0)
	}
	return model.TransitSuccess, ""
}

func (m *PowerStateMachine) enterFreeze(model.StateChangeReason) (model.TransitResult, string) {
	return model.TransitSuccess, ""
}

func (m *PowerStateMachine) enterStandBy(reason model.StateChangeReason) (model.TransitResult, string) {
	return m.displayOffOnly(reason)
}

func (m *PowerStateMachine) enterDoze(reason model.StateChangeReason) (model.TransitResult, string) {
	if m.stateAction().SetDisplayState(model.DisplayDoze, reason) != model.ActionSuccess {
		return model.TransitDisplayOffErr, "display doze failed"
	}
	return model.TransitSuccess, ""
}

func (m *PowerStateMachine) enterHibernate(reason model.StateChangeReason) (model.TransitResult, string) {
	m.cancelInactivityTimers()
	return m.displayOffOnly(reason)
}

func (m *PowerStateMachine) enterShutdown(reason model.StateChangeReason) (model.TransitResult, string) {
	m.cancelInactivityTimers()
	return m.displayOffOnly(reason)
}

func (m *PowerStateMachine) displayOffOnly(reason model.StateChangeReason) (model.TransitResult, string) {
	if m.stateAction().SetDisplayState(model.DisplayOff, reason) != model.ActionSuccess {
		return model.TransitDisplayOffErr, "display off failed"
	}
	return model.TransitSuccess, ""
}
