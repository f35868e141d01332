package runninglock

import (
	"cmp"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/powerpolicy/powermgr-go/internal/tick"
	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/taskqueue"
)

// Process identifies a process for ProxyRunningLocks.
type Process struct {
	Pid int32
	Uid int32
}

// Manager arbitrates running locks.
//
// All tables are guarded by mu. State machine calls, change callbacks and
// event logging queued while mu is held run after it is released, in the
// order they were queued.
type Manager struct {
	cfg Config

	mu          sync.RWMutex
	initialized bool
	records     map[*remote.Token]*Record
	counters    map[model.RunningLockType]*LockCounter
	proxy       *Proxy
	proximity   ProximityController
	refs        *action.LockRefs
	sm          StateMachine
	callback    ChangeCallback
	queue       *taskqueue.Queue[*remote.Token]
	death       *lockDeath
	after       []func()

	events log.Logger
	logger *slog.Logger
}

// New creates a manager. Call Init before use.
func New(cfg Config) *Manager {
	m := &Manager{
		cfg:      cfg,
		records:  make(map[*remote.Token]*Record),
		proxy:    NewProxy(),
		sm:       cfg.StateMachine,
		callback: cfg.Callback,
		events:   log.OrNoop(cfg.EventLogger),
		logger:   cfg.Logger,
	}
	m.death = &lockDeath{m: m}
	return m
}

// Init builds the lock counters. Calling it again has no effect.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Action == nil {
		return ErrNoAction
	}
	if m.initialized {
		return nil
	}
	m.refs = action.NewLockRefs(m.cfg.Action, m.logger)
	m.queue = taskqueue.New[*remote.Token]()
	m.initCounters()
	m.initialized = true
	m.debugLog("running lock manager initialized", "counters", len(m.counters))
	return nil
}

func (m *Manager) initCounters() {
	m.counters = make(map[model.RunningLockType]*LockCounter, len(model.AllLockTypes))

	m.counters[model.LockScreen] = newLockCounter(model.LockScreen, m.activateScreen)

	background := func(active bool, p model.RunningLockParam) error {
		if active {
			if m.refs.Refs(p.Type) > 0 {
				// Still held after a failed release on a destroyed record.
				return nil
			}
			return m.refs.Acquire(p.Type)
		}
		return m.refs.Release(p.Type)
	}
	m.counters[model.LockBackground] = newLockCounter(model.LockBackground, background)
	for _, typ := range model.BackgroundLockTypes {
		m.counters[typ] = newLockCounter(typ, background)
	}

	m.counters[model.LockProximityScreenControl] = newLockCounter(model.LockProximityScreenControl, m.activateProximity)
	m.counters[model.LockCoordination] = newLockCounter(model.LockCoordination, m.activateCoordination)

	for _, c := range m.counters {
		c.changed = m.notifyChanged
	}
}

func (m *Manager) activateScreen(active bool, p model.RunningLockParam) error {
	sm := m.sm
	if sm == nil {
		return nil
	}
	if active {
		m.debugLog("screen lock active")
		m.later(func() {
			sm.RefreshActivityInner(p.Pid, tick.Now(), model.UserActivitySoftware, true)
		})
		return nil
	}
	m.debugLog("screen lock inactive")
	m.later(func() {
		if sm.State() == model.PowerStateAwake {
			sm.ResetInactiveTimer()
		}
	})
	return nil
}

func (m *Manager) activateProximity(active bool, _ model.RunningLockParam) error {
	if active {
		m.debugLog("proximity lock active")
		m.proximity.Enable()
		return nil
	}
	m.debugLog("proximity lock inactive")
	if sm := m.sm; sm != nil {
		m.later(func() {
			sm.CancelProximityScreenOff()
			sm.SetState(model.PowerStateAwake, model.ReasonRunningLock, false)
		})
	}
	m.proximity.Disable()
	m.proximity.Clear()
	return nil
}

// activateCoordination counts a coordination lock as a BACKGROUND_TASK
// lock and marks the display as coordinated.
func (m *Manager) activateCoordination(active bool, p model.RunningLockParam) error {
	bg := m.counters[model.LockBackgroundTask]
	if bg == nil {
		return ErrInvalidType
	}
	p.Name = model.LockCoordination.String()
	p.Type = model.LockBackgroundTask

	sm := m.sm
	if active {
		if err := bg.Increase(p); err != nil {
			return err
		}
		if sm != nil {
			m.later(func() { sm.SetCoordinated(true) })
		}
		return nil
	}
	if sm != nil {
		m.later(func() { sm.SetCoordinated(false) })
	}
	return bg.Decrease(p)
}

func needNotify(typ model.RunningLockType) bool {
	return typ == model.LockScreen || typ == model.LockProximityScreenControl || typ.IsScene()
}

func (m *Manager) notifyChanged(p model.RunningLockParam, tag string) {
	if !needNotify(p.Type) {
		return
	}
	cb := m.callback
	if cb == nil {
		return
	}
	msg := LockMessage{
		LockID:     p.LockID,
		Pid:        p.Pid,
		Uid:        p.Uid,
		Type:       p.Type,
		Name:       messageName(p.Name),
		BundleName: p.BundleName,
		Tag:        tag,
		Timestamp:  time.Now(),
	}
	m.later(func() { cb.HandleRunningLockMessage(msg) })
}

// update runs fn under the manager lock, then the work fn queued with later.
func (m *Manager) update(fn func() error) error {
	m.mu.Lock()
	err := fn()
	after := m.after
	m.after = nil
	m.mu.Unlock()

	for _, f := range after {
		f()
	}
	return err
}

// later queues f to run after the manager lock is released. mu must be held.
func (m *Manager) later(f func()) {
	m.after = append(m.after, f)
}

// SetStateMachine sets the state machine the lock hooks drive.
func (m *Manager) SetStateMachine(sm StateMachine) {
	m.mu.Lock()
	m.sm = sm
	m.mu.Unlock()
}

// RegisterRunningLockCallback sets the lock message receiver, replacing
// any previous one.
func (m *Manager) RegisterRunningLockCallback(cb ChangeCallback) {
	m.mu.Lock()
	m.callback = cb
	m.mu.Unlock()
}

// UnRegisterRunningLockCallback removes the lock message receiver.
func (m *Manager) UnRegisterRunningLockCallback() {
	m.mu.Lock()
	m.callback = nil
	m.mu.Unlock()
}

// Close cancels all pending lock timers.
func (m *Manager) Close() {
	m.mu.RLock()
	q := m.queue
	m.mu.RUnlock()
	if q != nil {
		q.Close()
	}
}

// CreateRunningLock creates the record for tok. If tok already has a
// record, that record is returned unchanged. The record is released
// automatically when tok dies.
func (m *Manager) CreateRunningLock(tok *remote.Token, param model.RunningLockParam) (RecordInfo, error) {
	if tok == nil {
		return RecordInfo{}, ErrInvalidToken
	}
	if !param.Type.IsValid() {
		m.warnLog("create: invalid type", "type", uint32(param.Type), "name", param.Name)
		return RecordInfo{}, ErrInvalidType
	}

	var info RecordInfo
	err := m.update(func() error {
		if !m.initialized {
			return ErrNotInitialized
		}
		if rec, ok := m.records[tok]; ok {
			info = rec.info()
			return nil
		}
		if !tok.AddDeathRecipient(m.death) {
			return ErrInvalidToken
		}
		rec := newRecord(tok, param)
		m.records[tok] = rec
		if rec.typ() != model.LockProximityScreenControl {
			m.proxy.Add(tok, param.Pid, param.Uid)
			m.syncProxy(tok, rec)
		}
		m.debugLog("running lock created", "name", param.Name, "type", param.Type, "lockId", rec.param.LockID)
		info = rec.info()
		return nil
	})
	return info, err
}

// Lock enables the record of tok. timeoutMs overrides the record's timeout
// when it is not negative; a positive timeout releases the lock
// automatically. A proxied record keeps the request and returns ErrProxied;
// the lock is counted when the proxy is lifted.
func (m *Manager) Lock(tok *remote.Token, timeoutMs int32) error {
	return m.update(func() error {
		rec, ok := m.records[tok]
		if !ok {
			m.debugLog("lock: no record", "token", tok)
			return ErrNotFound
		}
		if timeoutMs >= 0 {
			rec.param.TimeoutMs = timeoutMs
		}
		if !m.allowedInState(rec.typ()) {
			m.warnLog("lock: type not allowed", "name", rec.param.Name, "type", rec.typ())
			return ErrNotAllowed
		}

		switch rec.state {
		case model.LockStateEnable:
			return ErrAlreadyLocked
		case model.LockStateProxied:
			rec.needRestore = true
			rec.lockTimeMs = tick.Now()
			rec.overTime = false
			m.armTimer(tok, rec)
			m.debugLog("lock: proxied, request kept", "name", rec.param.Name)
			return ErrProxied
		}

		c := m.counters[rec.typ()]
		if c == nil {
			return ErrInvalidType
		}
		if err := c.Increase(rec.param); err != nil {
			m.warnLog("lock: activation failed", "name", rec.param.Name, "type", rec.typ(), "error", err)
			return err
		}
		rec.state = model.LockStateEnable
		rec.needRestore = false
		rec.overTime = false
		rec.lockTimeMs = tick.Now()
		m.armTimer(tok, rec)
		m.lockEvent(log.LockOpAdd, rec)
		return nil
	})
}

// allowedInState reports whether typ may be locked in the current power
// state. COORDINATION is refused in SLEEP and HIBERNATE.
func (m *Manager) allowedInState(typ model.RunningLockType) bool {
	if typ != model.LockCoordination || m.sm == nil {
		return true
	}
	switch m.sm.State() {
	case model.PowerStateSleep, model.PowerStateHibernate:
		return false
	default:
		return true
	}
}

// UnLock disables the record of tok.
func (m *Manager) UnLock(tok *remote.Token) error {
	return m.update(func() error {
		rec, ok := m.records[tok]
		if !ok {
			m.debugLog("unlock: no record", "token", tok)
			return ErrNotFound
		}
		return m.unlockRecord(tok, rec, log.LockOpRemove)
	})
}

func (m *Manager) unlockRecord(tok *remote.Token, rec *Record, op log.LockOp) error {
	m.cancelTimer(tok)

	switch rec.state {
	case model.LockStateEnable:
		c := m.counters[rec.typ()]
		if c == nil {
			return ErrInvalidType
		}
		if err := c.Decrease(rec.param); err != nil {
			m.warnLog("unlock: deactivation failed", "name", rec.param.Name, "type", rec.typ(), "error", err)
			return err
		}
		rec.state = model.LockStateDisable
	case model.LockStateProxied, model.LockStateUnproxiedRestore:
		if !rec.needRestore {
			return ErrNotLocked
		}
		rec.needRestore = false
		if rec.state == model.LockStateUnproxiedRestore {
			rec.state = model.LockStateDisable
		}
	default:
		return ErrNotLocked
	}
	m.lockEvent(op, rec)
	return nil
}

// ReleaseLock unlocks and removes the record of tok. It returns false when
// tok has no record.
func (m *Manager) ReleaseLock(tok *remote.Token) bool {
	var released bool
	_ = m.update(func() error {
		rec, ok := m.records[tok]
		if !ok {
			m.debugLog("release: no record", "token", tok)
			return nil
		}
		if rec.wantsLock() {
			if err := m.unlockRecord(tok, rec, log.LockOpRemove); err != nil && rec.enabled() {
				m.dropRecord(rec)
			}
		}
		m.cancelTimer(tok)
		delete(m.records, tok)
		m.proxy.Remove(tok)
		tok.RemoveDeathRecipient(m.death)
		m.debugLog("running lock released", "name", rec.param.Name, "type", rec.typ())
		released = true
		return nil
	})
	return released
}

// dropRecord takes an enabled record out of its counter after the normal
// unlock failed. The record is about to be destroyed.
func (m *Manager) dropRecord(rec *Record) {
	if c := m.counters[rec.typ()]; c != nil {
		if err := c.Drop(rec.param); err != nil {
			m.warnLog("release: deactivation failed, lock dropped", "name", rec.param.Name, "type", rec.typ(), "error", err)
		}
	}
	rec.state = model.LockStateDisable
	m.lockEvent(log.LockOpRemove, rec)
}

// ForceUnLock releases the record of a token whose owner died.
func (m *Manager) ForceUnLock(tok *remote.Token) bool {
	ok := m.ReleaseLock(tok)
	if ok && m.logger != nil {
		m.logger.Info("running lock released by owner death", "token", tok, "pid", tok.Pid())
	}
	return ok
}

type lockDeath struct {
	m *Manager
}

func (d *lockDeath) OnRemoteDied(t *remote.Token) {
	d.m.ForceUnLock(t)
}

// IsUsed reports whether the record of tok is enabled and counted.
func (m *Manager) IsUsed(tok *remote.Token) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[tok]
	return ok && rec.enabled()
}

// ExistValidRunningLock reports whether any record is enabled and counted.
func (m *Manager) ExistValidRunningLock() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.enabled() {
			return true
		}
	}
	return false
}

// GetRunningLockNum returns the number of records of typ, or of all
// records when typ is LockButt.
func (m *Manager) GetRunningLockNum(typ model.RunningLockType) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if typ == model.LockButt {
		return uint32(len(m.records))
	}
	var n uint32
	for _, rec := range m.records {
		if rec.typ() == typ {
			n++
		}
	}
	return n
}

// ValidRunningLockNum returns the counted locks of typ, or the number of
// enabled records when typ is LockButt.
func (m *Manager) ValidRunningLockNum(typ model.RunningLockType) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validNum(typ)
}

func (m *Manager) validNum(typ model.RunningLockType) uint32 {
	if typ == model.LockButt {
		var n uint32
		for _, rec := range m.records {
			if rec.enabled() {
				n++
			}
		}
		return n
	}
	if c := m.counters[typ]; c != nil {
		return c.Count()
	}
	return 0
}

// QueryRunningLockLists returns the enabled SCREEN and background scene
// locks keyed by name.
func (m *Manager) QueryRunningLockLists() map[string]model.RunningLockInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]model.RunningLockInfo)
	for _, rec := range m.records {
		if !rec.enabled() || !(rec.typ() == model.LockScreen || rec.typ().IsScene()) {
			continue
		}
		out[rec.param.Name] = model.RunningLockInfo{
			Name:       rec.param.Name,
			Type:       rec.typ(),
			BundleName: rec.param.BundleName,
			Pid:        rec.param.Pid,
			Uid:        rec.param.Uid,
		}
	}
	return out
}

// Record returns the record of tok.
func (m *Manager) Record(tok *remote.Token) (RecordInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[tok]
	if !ok {
		return RecordInfo{}, false
	}
	return rec.info(), true
}

// Records returns every record ordered by lock id.
func (m *Manager) Records() []RecordInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordInfo, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.info())
	}
	slices.SortFunc(out, func(a, b RecordInfo) int { return cmp.Compare(a.LockID, b.LockID) })
	return out
}

// UpdateWorkSource replaces the work sources (uid to bundle name) of the
// record of tok. The record is proxied when every work-source uid is
// proxied.
func (m *Manager) UpdateWorkSource(tok *remote.Token, sources map[int32]string) error {
	return m.update(func() error {
		rec, ok := m.records[tok]
		if !ok || !m.proxy.SetWorkSources(tok, sources) {
			m.debugLog("update work source: no record", "token", tok)
			return ErrNotFound
		}
		if names := m.proxy.BundleNames(tok); names != "" {
			rec.param.BundleName = names
		}
		m.syncProxy(tok, rec)
		m.notifyChanged(rec.param, TagUpdate)
		return nil
	})
}

// ProxyRunningLock suppresses (isProxied) or restores the locks of a
// process. Calls nest; the locks are restored when every proxy call has
// been matched.
func (m *Manager) ProxyRunningLock(isProxied bool, pid, uid int32) error {
	if pid < minValidPid {
		m.warnLog("proxy: invalid pid", "pid", pid, "uid", uid)
		return ErrInvalidPid
	}
	return m.update(func() error {
		if isProxied {
			m.proxy.Increase(pid, uid)
		} else if !m.proxy.Decrease(pid, uid) {
			m.debugLog("unproxy: process not proxied", "pid", pid, "uid", uid)
			return nil
		}
		m.debugLog("proxy running locks", "proxied", isProxied, "pid", pid, "uid", uid,
			"depth", m.proxy.Depth(pid, uid))
		m.syncAllProxies()
		return nil
	})
}

// ProxyRunningLocks applies ProxyRunningLock to every process.
func (m *Manager) ProxyRunningLocks(isProxied bool, procs []Process) error {
	var errs []error
	for _, p := range procs {
		if err := m.ProxyRunningLock(isProxied, p.Pid, p.Uid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResetRunningLocks drops every proxy and restores the suppressed locks.
func (m *Manager) ResetRunningLocks() {
	_ = m.update(func() error {
		m.proxy.Reset()
		m.syncAllProxies()
		m.debugLog("running lock proxies reset")
		return nil
	})
}

func (m *Manager) syncAllProxies() {
	toks := slices.SortedFunc(maps.Keys(m.records), func(a, b *remote.Token) int {
		return cmp.Compare(m.records[a].param.LockID, m.records[b].param.LockID)
	})
	for _, tok := range toks {
		m.syncProxy(tok, m.records[tok])
	}
}

// syncProxy brings the record state in line with the proxy table.
func (m *Manager) syncProxy(tok *remote.Token, rec *Record) {
	want := m.proxy.IsProxied(tok)
	switch {
	case want && !rec.proxied():
		m.suppress(rec)
	case !want && (rec.proxied() || rec.state == model.LockStateUnproxiedRestore):
		m.restore(rec)
	}
}

func (m *Manager) suppress(rec *Record) {
	switch rec.state {
	case model.LockStateEnable:
		if err := m.counters[rec.typ()].Decrease(rec.param); err != nil {
			m.warnLog("proxy: deactivation failed", "name", rec.param.Name, "error", err)
			return
		}
		rec.needRestore = true
	case model.LockStateDisable:
		rec.needRestore = false
	}
	rec.state = model.LockStateProxied
	m.lockEvent(log.LockOpProxy, rec)
}

func (m *Manager) restore(rec *Record) {
	if !rec.needRestore {
		rec.state = model.LockStateDisable
		m.lockEvent(log.LockOpUnproxy, rec)
		return
	}
	rec.state = model.LockStateUnproxiedRestore
	if err := m.counters[rec.typ()].Increase(rec.param); err != nil {
		m.warnLog("unproxy: activation failed", "name", rec.param.Name, "error", err)
		return
	}
	rec.state = model.LockStateEnable
	rec.needRestore = false
	m.lockEvent(log.LockOpUnproxy, rec)
}

// SetProximity feeds a proximity sensor reading. Readings are ignored
// unless a PROXIMITY_SCREEN_CONTROL lock is counted.
func (m *Manager) SetProximity(status ProximityStatus) error {
	if status != ProximityClose && status != ProximityAway {
		m.warnLog("invalid proximity status", "status", uint32(status))
		return ErrInvalidStatus
	}
	delay := ForegroundInCallDelay
	if m.cfg.IsForeground != nil && !m.cfg.IsForeground(InCallBundleName) {
		delay = BackgroundInCallDelay
	}

	return m.update(func() error {
		var changed bool
		if status == ProximityClose {
			changed = m.proximity.onClose()
		} else {
			changed = m.proximity.onAway()
		}
		if !changed {
			m.debugLog("proximity reading ignored", "status", status, "enabled", m.proximity.IsEnabled())
			return nil
		}
		sm := m.sm
		if sm == nil || m.validNum(model.LockProximityScreenControl) == 0 {
			return nil
		}
		if status == ProximityClose {
			m.debugLog("proximity close, screen off scheduled", "delay", delay)
			m.later(func() { sm.ScheduleProximityScreenOff(delay) })
			return nil
		}
		m.debugLog("proximity away, waking")
		m.later(func() {
			sm.CancelProximityScreenOff()
			sm.SetState(model.PowerStateAwake, model.ReasonProximity, true)
		})
		return nil
	})
}

// ProximityState returns whether the proximity controller is enabled and
// whether the last reading was close.
func (m *Manager) ProximityState() (enabled, isClose bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.proximity.IsEnabled(), m.proximity.IsClose()
}

// EnableMock replaces the backend and drops every record, counter and
// proxy without calling the old backend.
func (m *Manager) EnableMock(a action.RunningLockAction) {
	_ = m.update(func() error {
		if m.queue != nil {
			m.queue.CancelAll()
		}
		for tok := range m.records {
			tok.RemoveDeathRecipient(m.death)
		}
		clear(m.records)
		for _, c := range m.counters {
			c.Clear()
		}
		m.proxy.Clear()
		m.proximity.Disable()
		m.proximity.Clear()
		m.cfg.Action = a
		if m.refs != nil {
			m.refs.Swap(a)
		}
		m.debugLog("running lock mock enabled")
		return nil
	})
}

func (m *Manager) lockEvent(op log.LockOp, rec *Record) {
	ev := log.Event{
		Category: log.CategoryLock,
		Lock: &log.LockEvent{
			Op:         op,
			LockID:     rec.param.LockID,
			Name:       rec.param.Name,
			Type:       rec.typ(),
			Pid:        rec.param.Pid,
			Uid:        rec.param.Uid,
			BundleName: rec.param.BundleName,
		},
	}
	m.later(func() { m.logEvent(ev) })
}

func (m *Manager) logEvent(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = m.cfg.SessionID
	ev.Component = log.ComponentRunningLock
	m.events.Log(ev)
}

// debugLog logs a debug message if a logger is configured.
func (m *Manager) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *Manager) warnLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
