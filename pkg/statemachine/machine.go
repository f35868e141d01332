package statemachine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/creachadair/mds/mapset"
	"github.com/powerpolicy/powermgr-go/internal/tick"
	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/taskqueue"
)

// PowerStateMachine owns the current power state.
//
// Lock order: transitMu, then mu or stateMu. mu and stateMu are never
// held together, and neither is held across driver or listener calls.
type PowerStateMachine struct {
	cfg Config

	// transitMu serializes transition attempts.
	transitMu sync.Mutex

	stateMu      sync.RWMutex
	currentState model.PowerState

	mu          sync.RWMutex
	initialized bool
	action      action.DeviceStateAction
	locks       LockCounter
	suspend     SuspendController
	controllers map[model.PowerState]*stateController
	lockMap     map[model.PowerState][]model.RunningLockType
	queue       *taskqueue.Queue[timerEvent]

	listeners      mapset.Set[PowerStateListener]
	listenerDeaths map[PowerStateListener]*listenerDeath

	displayOffTime       int64
	sleepTime            int64
	beforeOverrideTime   int64
	overridden           bool
	enableDisplaySuspend bool

	lastReason   model.StateChangeReason
	lastTime     int64
	times        DeviceTimes
	hasRefreshed bool

	events log.Logger
	logger *slog.Logger
}

// New creates a state machine. Call Init before use.
func New(cfg Config) *PowerStateMachine {
	return &PowerStateMachine{
		cfg:                  cfg,
		currentState:         model.PowerStateUnknown,
		action:               cfg.Action,
		locks:                cfg.Locks,
		suspend:              cfg.Suspend,
		lockMap:              cloneLockMap(),
		listeners:            mapset.New[PowerStateListener](),
		listenerDeaths:       make(map[PowerStateListener]*listenerDeath),
		displayOffTime:       cfg.displayOffTime(),
		sleepTime:            cfg.sleepTime(),
		enableDisplaySuspend: cfg.EnableDisplaySuspend,
		lastReason:           model.ReasonInit,
		events:               log.OrNoop(cfg.EventLogger),
		logger:               cfg.Logger,
	}
}

// Init builds the task queue and the controller table. Calling it again
// has no effect.
func (m *PowerStateMachine) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.action == nil {
		return ErrNoAction
	}
	if m.initialized {
		return nil
	}
	if m.queue == nil {
		m.queue = taskqueue.New[timerEvent]()
	}
	m.controllers = make(map[model.PowerState]*stateController, len(stateActions))
	for state, act := range stateActions {
		m.controllers[state] = &stateController{
			state:      state,
			action:     act,
			lastReason: model.ReasonInit,
		}
	}
	m.initialized = true
	m.debugLog("state machine initialized", "states", len(m.controllers))
	return nil
}

// InitState sets the initial state from the display, ignoring locks.
func (m *PowerStateMachine) InitState() {
	if m.IsScreenOn() {
		m.SetState(model.PowerStateAwake, model.ReasonInit, true)
	} else {
		m.SetState(model.PowerStateInactive, model.ReasonInit, true)
	}
}

// Close cancels all pending timers.
func (m *PowerStateMachine) Close() {
	m.mu.RLock()
	q := m.queue
	m.mu.RUnlock()
	if q != nil {
		q.Close()
	}
}

// SetLockCounter sets the running lock source consulted by CheckRunningLock.
func (m *PowerStateMachine) SetLockCounter(l LockCounter) {
	m.mu.Lock()
	m.locks = l
	m.mu.Unlock()
}

// SetSuspendController sets the optional external suspend controller.
func (m *PowerStateMachine) SetSuspendController(c SuspendController) {
	m.mu.Lock()
	m.suspend = c
	m.mu.Unlock()
}

// State returns the current state.
func (m *PowerStateMachine) State() model.PowerState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.currentState
}

// SetState requests a transition and reports whether no further action is
// needed (SUCCESS or ALREADY_IN_STATE). With force set, running locks are
// ignored.
func (m *PowerStateMachine) SetState(state model.PowerState, reason model.StateChangeReason, force bool) bool {
	return m.Transit(state, reason, force).Succeeded()
}

// Transit requests a transition and returns its result.
func (m *PowerStateMachine) Transit(state model.PowerState, reason model.StateChangeReason, force bool) model.TransitResult {
	m.mu.RLock()
	c := m.controllers[state]
	m.mu.RUnlock()
	if c == nil {
		m.debugLog("state not supported", "state", state)
		return model.TransitOtherErr
	}
	return m.transitTo(c, reason, force)
}

// CheckRunningLock reports whether no running lock blocks entering state.
func (m *PowerStateMachine) CheckRunningLock(state model.PowerState) bool {
	m.mu.RLock()
	types, ok := m.lockMap[state]
	locks := m.locks
	m.mu.RUnlock()

	if !ok {
		m.debugLog("no blocking table entry", "state", state)
		return false
	}
	if locks == nil {
		return true
	}
	for _, typ := range types {
		if n := locks.ValidRunningLockNum(typ); n > 0 {
			m.debugLog("running lock blocks state", "type", typ, "count", n, "state", state)
			return false
		}
	}
	return true
}

func (m *PowerStateMachine) lockValid(typ model.RunningLockType) bool {
	m.mu.RLock()
	locks := m.locks
	m.mu.RUnlock()
	return locks != nil && locks.ValidRunningLockNum(typ) > 0
}

// IsScreenOn reports whether the display is on or dimmed.
func (m *PowerStateMachine) IsScreenOn() bool {
	return m.stateAction().GetDisplayState().IsOn()
}

// DisplayState reads the display state from the driver.
func (m *PowerStateMachine) DisplayState() model.DisplayState {
	return m.stateAction().GetDisplayState()
}

// SuspendDeviceInner turns the screen off for a suspend request. The
// transition ignores running locks.
func (m *PowerStateMachine) SuspendDeviceInner(pid int32, callTimeMs int64, typ model.SuspendDeviceType, suspendImmed, ignoreScreenState bool) {
	if !typ.IsValid() {
		m.warnLog("invalid suspend type", "pid", pid, "type", uint32(typ))
		return
	}
	m.debugLog("suspend device", "pid", pid, "type", typ, "immediate", suspendImmed)

	if !ignoreScreenState {
		flags := model.SuspendDeviceNeedDoze
		if suspendImmed {
			flags = model.SuspendDeviceImmediately
		}
		m.stateAction().Suspend(callTimeMs, typ, flags)
		m.setTime(func(t *DeviceTimes) { t.LastSuspendDevice = callTimeMs })
	}

	m.SetState(model.PowerStateInactive, ReasonBySuspendType(typ), true)
}

// WakeupDeviceInner turns the screen on for a wakeup request. The
// transition ignores running locks.
func (m *PowerStateMachine) WakeupDeviceInner(pid int32, callTimeMs int64, typ model.WakeupDeviceType, details, pkgName string) {
	if !typ.IsValid() {
		m.warnLog("invalid wakeup type", "pid", pid, "type", uint32(typ))
		return
	}
	m.debugLog("wakeup device", "pid", pid, "type", typ, "details", details, "pkg", pkgName)

	m.mu.RLock()
	suspend := m.suspend
	m.mu.RUnlock()
	if suspend != nil {
		suspend.StopSleep()
	}
	m.cancelDelayTimer(eventSleepTimeout)

	act := m.stateAction()
	act.Wakeup(callTimeMs, typ, details, pkgName)
	m.setTime(func(t *DeviceTimes) { t.LastWakeupDevice = callTimeMs })

	reason := ReasonByWakeType(typ)
	if m.Transit(model.PowerStateAwake, reason, true) == model.TransitAlreadyInState &&
		act.GetDisplayState() == model.DisplayDim {
		act.SetDisplayState(model.DisplayOn, reason)
	}
	m.ResetInactiveTimer()

	if suspend != nil {
		suspend.TriggerSyncSleepCallback(true)
	}
}

// RefreshActivityInner records user activity and restarts the inactivity
// timer. It does nothing while the screen is off.
func (m *PowerStateMachine) RefreshActivityInner(pid int32, callTimeMs int64, typ model.UserActivityType, needChangeBacklight bool) {
	if !typ.IsValid() {
		m.warnLog("invalid activity type", "pid", pid, "type", uint32(typ))
		return
	}
	if m.CheckRefreshTime() {
		m.debugLog("refresh too fast", "pid", pid)
		return
	}
	if !m.IsScreenOn() {
		m.debugLog("refresh ignored, screen off", "pid", pid)
		return
	}

	flags := model.RefreshActivityNoChangeLights
	if needChangeBacklight {
		flags = model.RefreshActivityNeedChangeLights
	}
	act := m.stateAction()
	act.RefreshActivity(callTimeMs, typ, flags)
	m.setTime(func(t *DeviceTimes) { t.LastScreenOn = tick.Now() })
	act.SetDisplayState(model.DisplayOn, ReasonByUserActivity(typ))
	m.ResetInactiveTimer()
}

// CheckRefreshTime reports whether the previous accepted refresh was less
// than MinRefreshInterval ago. Otherwise it records now and returns false.
func (m *PowerStateMachine) CheckRefreshTime() bool {
	now := tick.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasRefreshed && now-m.times.LastRefresh < MinRefreshInterval.Milliseconds() {
		return true
	}
	m.hasRefreshed = true
	m.times.LastRefresh = now
	return false
}

// ForceSuspendDeviceInner enters SLEEP immediately, bypassing the
// transition checks.
func (m *PowerStateMachine) ForceSuspendDeviceInner(pid int32, callTimeMs int64) bool {
	m.debugLog("force suspend", "pid", pid)

	m.mu.RLock()
	c := m.controllers[model.PowerStateSleep]
	m.mu.RUnlock()
	if c == nil {
		return false
	}

	m.cancelInactivityTimers()
	m.setTime(func(t *DeviceTimes) { t.LastSuspendDevice = callTimeMs })

	m.transitMu.Lock()
	from := m.State()
	notify := from != model.PowerStateSleep && m.commit(c, from, model.ReasonSystem)
	m.transitMu.Unlock()

	if notify {
		m.notifyPowerStateChanged(model.PowerStateSleep, model.ReasonSystem)
	}

	m.stateAction().ForceSuspend()
	return true
}

// RegisterPowerStateCallback adds l to the notification set. When tok is
// non-nil, l is removed automatically when tok dies. Registering the same
// listener twice has no effect.
func (m *PowerStateMachine) RegisterPowerStateCallback(l PowerStateListener, tok *remote.Token) error {
	if l == nil {
		return ErrInvalidListener
	}
	if tok != nil && !tok.IsAlive() {
		return ErrInvalidListener
	}

	m.mu.Lock()
	if m.listeners.Has(l) {
		m.mu.Unlock()
		return nil
	}
	m.listeners.Add(l)
	var death *listenerDeath
	if tok != nil {
		death = &listenerDeath{m: m, listener: l, tok: tok}
		m.listenerDeaths[l] = death
	}
	m.mu.Unlock()

	if death != nil && !tok.AddDeathRecipient(death) {
		_ = m.UnRegisterPowerStateCallback(l)
		return ErrInvalidListener
	}
	m.debugLog("listener registered", "listeners", m.ListenerCount())
	return nil
}

// UnRegisterPowerStateCallback removes l from the notification set.
func (m *PowerStateMachine) UnRegisterPowerStateCallback(l PowerStateListener) error {
	if l == nil {
		return ErrInvalidListener
	}

	m.mu.Lock()
	if !m.listeners.Has(l) {
		m.mu.Unlock()
		return ErrListenerNotFound
	}
	delete(m.listeners, l)
	death := m.listenerDeaths[l]
	delete(m.listenerDeaths, l)
	m.mu.Unlock()

	if death != nil {
		death.tok.RemoveDeathRecipient(death)
	}
	m.debugLog("listener unregistered")
	return nil
}

// ListenerCount returns the number of registered listeners.
func (m *PowerStateMachine) ListenerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners)
}

func (m *PowerStateMachine) notifyPowerStateChanged(state model.PowerState, reason model.StateChangeReason) {
	m.mu.RLock()
	listeners := make([]PowerStateListener, 0, len(m.listeners))
	for l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l.OnPowerStateChanged(state, reason)
	}
}

// listenerDeath unregisters a listener when its owner dies.
type listenerDeath struct {
	m        *PowerStateMachine
	listener PowerStateListener
	tok      *remote.Token
}

func (d *listenerDeath) OnRemoteDied(*remote.Token) {
	_ = d.m.UnRegisterPowerStateCallback(d.listener)
}

// EnableMock swaps the device state action and resets the machine to AWAKE
// with default timeouts.
func (m *PowerStateMachine) EnableMock(a action.DeviceStateAction) {
	m.transitMu.Lock()

	m.mu.Lock()
	m.action = a
	m.displayOffTime = DefaultDisplayOffTime
	m.sleepTime = DefaultSleepTime
	m.overridden = false
	m.mu.Unlock()

	m.stateMu.Lock()
	m.currentState = model.PowerStateAwake
	m.stateMu.Unlock()

	m.transitMu.Unlock()

	m.debugLog("device state action replaced")
	m.ResetInactiveTimer()
}

// StateAction returns the current device state action.
func (m *PowerStateMachine) StateAction() action.DeviceStateAction {
	return m.stateAction()
}

func (m *PowerStateMachine) stateAction() action.DeviceStateAction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.action
}

// SetCoordinated forwards the coordination flag to the device action.
func (m *PowerStateMachine) SetCoordinated(coordinated bool) {
	m.stateAction().SetCoordinated(coordinated)
}

// SetDisplaySuspend selects DISPLAY_SUSPEND instead of DISPLAY_OFF for the
// screen-off states. The display is switched at once when INACTIVE.
func (m *PowerStateMachine) SetDisplaySuspend(enable bool) {
	m.mu.Lock()
	m.enableDisplaySuspend = enable
	m.mu.Unlock()

	if m.State() != model.PowerStateInactive {
		return
	}
	if enable {
		m.stateAction().SetDisplayState(model.DisplaySuspend, model.ReasonSettings)
	} else {
		m.stateAction().SetDisplayState(model.DisplayOff, model.ReasonSettings)
	}
}

// SetDisplayOffTime sets the inactivity timeout in milliseconds. A
// negative value disables auto display-off.
func (m *PowerStateMachine) SetDisplayOffTime(ms int64) {
	m.mu.Lock()
	m.displayOffTime = ms
	m.mu.Unlock()

	if m.State() == model.PowerStateAwake {
		m.ResetInactiveTimer()
	}
}

// DisplayOffTime returns the inactivity timeout in milliseconds.
func (m *PowerStateMachine) DisplayOffTime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.displayOffTime
}

// SetSleepTime sets the INACTIVE to SLEEP delay in milliseconds. A
// negative value disables auto sleep.
func (m *PowerStateMachine) SetSleepTime(ms int64) {
	m.mu.Lock()
	m.sleepTime = ms
	m.mu.Unlock()

	if m.State() == model.PowerStateInactive {
		m.ResetSleepTimer()
	}
}

// SleepTime returns the INACTIVE to SLEEP delay in milliseconds.
func (m *PowerStateMachine) SleepTime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sleepTime
}

// OverrideScreenOffTime applies a temporary display-off time. The value in
// effect before the first override is kept for RestoreScreenOffTime.
func (m *PowerStateMachine) OverrideScreenOffTime(ms int64) bool {
	if ms <= 0 {
		return false
	}
	m.mu.Lock()
	if !m.overridden {
		m.beforeOverrideTime = m.displayOffTime
		m.overridden = true
	}
	m.mu.Unlock()

	m.SetDisplayOffTime(ms)
	return true
}

// RestoreScreenOffTime undoes OverrideScreenOffTime. It returns false if no
// override is active.
func (m *PowerStateMachine) RestoreScreenOffTime() bool {
	m.mu.Lock()
	if !m.overridden {
		m.mu.Unlock()
		return false
	}
	before := m.beforeOverrideTime
	m.overridden = false
	m.mu.Unlock()

	m.SetDisplayOffTime(before)
	return true
}

// Times returns the last-event timestamps.
func (m *PowerStateMachine) Times() DeviceTimes {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.times
}

// Snapshot returns the current state with its timing context.
func (m *PowerStateMachine) Snapshot() Snapshot {
	display := m.DisplayState()
	state := m.State()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		State:          state,
		Reason:         m.lastReason,
		Display:        display,
		DisplayOffTime: m.displayOffTime,
		SleepTime:      m.sleepTime,
		Times:          m.times,
	}
}

func (m *PowerStateMachine) setTime(fn func(t *DeviceTimes)) {
	m.mu.Lock()
	fn(&m.times)
	m.mu.Unlock()
}

func (m *PowerStateMachine) logEvent(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = m.cfg.SessionID
	ev.Component = log.ComponentStateMachine
	m.events.Log(ev)
}

// debugLog logs a debug message if a logger is configured.
func (m *PowerStateMachine) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *PowerStateMachine) warnLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
