package service

import (
	"strings"
	"time"

	"github.com/powerpolicy/powermgr-go/internal/tick"
	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/persistence"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/sources"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
)

// PowerState returns the current power state.
func (s *PowerService) PowerState() model.PowerState { return s.sm.State() }

// IsScreenOn reports whether the display is on or dimmed.
func (s *PowerService) IsScreenOn() bool { return s.sm.IsScreenOn() }

// WakeupDevice turns the screen on. Types configurable in the wakeup
// table are refused while their source is disabled.
func (s *PowerService) WakeupDevice(pid int32, typ model.WakeupDeviceType, details, pkgName string) error {
	if !typ.IsValid() {
		s.warnLog("wakeup: invalid type", "pid", pid, "type", uint32(typ))
		return ErrInvalidArgument
	}
	s.mu.RLock()
	table := s.wakeupSources
	s.mu.RUnlock()
	if wakeupConfigurable(typ) && !table.Enabled(typ) {
		s.debugLog("wakeup: source disabled", "pid", pid, "type", typ)
		return ErrSourceDisabled
	}
	if n := s.pending.CancelFunc(func(model.SuspendDeviceType) bool { return true }); n > 0 {
		s.debugLog("wakeup: delayed suspend cancelled", "pid", pid, "count", n)
	}
	s.sm.WakeupDeviceInner(pid, tick.Now(), typ, details, pkgName)
	return nil
}

// wakeupConfigurable reports whether typ is governed by a wakeup table key.
func wakeupConfigurable(typ model.WakeupDeviceType) bool {
	for _, key := range sources.WakeupKeys {
		if sources.MapWakeupKey(key, model.ClickSingle) == typ ||
			sources.MapWakeupKey(key, model.ClickDouble) == typ {
			return true
		}
	}
	return false
}

// SuspendDevice applies the action configured for typ in the suspend
// table. A source with a delay runs its action on a timer; a later wakeup
// cancels it. Types missing from the table take the AUTO_SUSPEND path.
func (s *PowerService) SuspendDevice(pid int32, typ model.SuspendDeviceType, suspendImmed bool) error {
	if !typ.IsValid() {
		s.warnLog("suspend: invalid type", "pid", pid, "type", uint32(typ))
		return ErrInvalidArgument
	}
	s.mu.RLock()
	src, ok := s.suspendSources.Get(typ)
	s.mu.RUnlock()
	if !ok {
		src = sources.SuspendSource{Type: typ, Action: model.SuspendActionAutoSuspend}
	}

	var run func()
	switch src.Action {
	case model.SuspendActionNone:
		s.debugLog("suspend: source action NONE", "pid", pid, "type", typ)
		return nil
	case model.SuspendActionAutoSuspend:
		run = func() { s.sm.SuspendDeviceInner(pid, tick.Now(), typ, suspendImmed, false) }
	case model.SuspendActionForceSuspend:
		run = func() { s.sm.ForceSuspendDeviceInner(pid, tick.Now()) }
	case model.SuspendActionHibernate:
		run = func() { s.sm.SetState(model.PowerStateHibernate, statemachine.ReasonBySuspendType(typ), true) }
	case model.SuspendActionShutdown:
		run = func() { s.sm.SetState(model.PowerStateShutdown, statemachine.ReasonBySuspendType(typ), true) }
	default:
		s.warnLog("suspend: unknown source action", "pid", pid, "type", typ, "action", uint32(src.Action))
		return nil
	}

	if src.DelayMs == 0 {
		_ = s.pending.Cancel(typ)
		run()
		return nil
	}
	s.debugLog("suspend: delayed", "pid", pid, "type", typ, "action", src.Action, "delayMs", src.DelayMs)
	return s.pending.Set(typ, time.Duration(src.DelayMs)*time.Millisecond, run)
}

// PendingSuspend reports whether a delayed suspend action for typ is armed.
func (s *PowerService) PendingSuspend(typ model.SuspendDeviceType) bool {
	return s.pending.Pending(typ)
}

// RefreshActivity records user activity.
func (s *PowerService) RefreshActivity(pid int32, typ model.UserActivityType, needChangeBacklight bool) error {
	if !typ.IsValid() {
		s.warnLog("refresh: invalid type", "pid", pid, "type", uint32(typ))
		return ErrInvalidArgument
	}
	s.sm.RefreshActivityInner(pid, tick.Now(), typ, needChangeBacklight)
	return nil
}

// ForceSuspendDevice enters SLEEP immediately.
func (s *PowerService) ForceSuspendDevice(pid int32) bool {
	return s.sm.ForceSuspendDeviceInner(pid, tick.Now())
}

// OverrideScreenOffTime applies a temporary display-off timeout.
func (s *PowerService) OverrideScreenOffTime(ms int64) bool {
	return s.sm.OverrideScreenOffTime(ms)
}

// RestoreScreenOffTime undoes OverrideScreenOffTime.
func (s *PowerService) RestoreScreenOffTime() bool {
	return s.sm.RestoreScreenOffTime()
}

// SetDisplayOffTime sets and persists the display-off timeout.
func (s *PowerService) SetDisplayOffTime(ms int64) error {
	s.sm.SetDisplayOffTime(ms)
	return s.persist(func(st *persistence.Settings) { st.DisplayOffTimeMs = persistence.Int64(ms) })
}

// SetSleepTime sets and persists the INACTIVE to SLEEP delay.
func (s *PowerService) SetSleepTime(ms int64) error {
	s.sm.SetSleepTime(ms)
	return s.persist(func(st *persistence.Settings) { st.SleepTimeMs = persistence.Int64(ms) })
}

func (s *PowerService) persist(fn func(*persistence.Settings)) error {
	if s.config.Settings == nil {
		return nil
	}
	return s.config.Settings.Update(fn)
}

// SetDisplaySuspend selects DISPLAY_SUSPEND for the screen-off states.
func (s *PowerService) SetDisplaySuspend(enable bool) { s.sm.SetDisplaySuspend(enable) }

// RegisterPowerStateCallback adds l to the state change listeners.
func (s *PowerService) RegisterPowerStateCallback(l statemachine.PowerStateListener, tok *remote.Token) error {
	return s.sm.RegisterPowerStateCallback(l, tok)
}

// UnRegisterPowerStateCallback removes l.
func (s *PowerService) UnRegisterPowerStateCallback(l statemachine.PowerStateListener) error {
	return s.sm.UnRegisterPowerStateCallback(l)
}

// CreateRunningLock creates the lock record of tok and watches the owning
// process.
func (s *PowerService) CreateRunningLock(tok *remote.Token, param model.RunningLockParam) error {
	if _, err := s.locks.CreateRunningLock(tok, param); err != nil {
		s.debugLog("create running lock", "name", param.Name, "error", err)
		return err
	}
	s.watcher.Watch(tok)
	return nil
}

// Lock enables the lock of tok. See runninglock.Manager.Lock for
// timeoutMs.
func (s *PowerService) Lock(tok *remote.Token, timeoutMs int32) bool {
	if err := s.locks.Lock(tok, timeoutMs); err != nil {
		s.debugLog("lock", "token", tok, "error", err)
		return false
	}
	return true
}

// UnLock disables the lock of tok.
func (s *PowerService) UnLock(tok *remote.Token) bool {
	if err := s.locks.UnLock(tok); err != nil {
		s.debugLog("unlock", "token", tok, "error", err)
		return false
	}
	return true
}

// ReleaseLock removes the lock record of tok.
func (s *PowerService) ReleaseLock(tok *remote.Token) bool {
	s.watcher.Unwatch(tok)
	return s.locks.ReleaseLock(tok)
}

// ForceUnLock releases the lock of tok as if its owner died.
func (s *PowerService) ForceUnLock(tok *remote.Token) bool {
	s.watcher.Unwatch(tok)
	return s.locks.ForceUnLock(tok)
}

// IsUsed reports whether the lock of tok is counted.
func (s *PowerService) IsUsed(tok *remote.Token) bool { return s.locks.IsUsed(tok) }

// UpdateWorkSource sets the work sources of the lock of tok.
func (s *PowerService) UpdateWorkSource(tok *remote.Token, workSources map[int32]string) bool {
	return s.locks.UpdateWorkSource(tok, workSources) == nil
}

// ProxyRunningLock suppresses or restores the locks of a process.
func (s *PowerService) ProxyRunningLock(isProxied bool, pid, uid int32) bool {
	return s.locks.ProxyRunningLock(isProxied, pid, uid) == nil
}

// ProxyRunningLocks applies ProxyRunningLock to every process.
func (s *PowerService) ProxyRunningLocks(isProxied bool, procs []runninglock.Process) bool {
	return s.locks.ProxyRunningLocks(isProxied, procs) == nil
}

// ResetRunningLocks drops every proxy.
func (s *PowerService) ResetRunningLocks() { s.locks.ResetRunningLocks() }

// SetProximity feeds a proximity sensor reading.
func (s *PowerService) SetProximity(status runninglock.ProximityStatus) bool {
	return s.locks.SetProximity(status) == nil
}

// QueryRunningLockLists returns the held SCREEN and scene locks by name.
func (s *PowerService) QueryRunningLockLists() map[string]model.RunningLockInfo {
	return s.locks.QueryRunningLockLists()
}

// Sources returns the loaded suspend and wakeup tables.
func (s *PowerService) Sources() (sources.SuspendTable, sources.WakeupTable) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suspendSources, s.wakeupSources
}

// EnableMock replaces both backends and resets the components.
func (s *PowerService) EnableMock(device action.DeviceStateAction, locks action.RunningLockAction) {
	if device != nil {
		s.sm.EnableMock(device)
	}
	if locks != nil {
		s.locks.EnableMock(locks)
	}
}

// Dump renders both components.
func (s *PowerService) Dump() string {
	var b strings.Builder
	b.WriteString(s.sm.DumpInfo())
	b.WriteString("\n")
	b.WriteString(s.locks.DumpInfo())
	return b.String()
}

// Snapshot returns a consistent read of the state machine.
func (s *PowerService) Snapshot() statemachine.Snapshot { return s.sm.Snapshot() }

// LockRecords returns every running lock record ordered by lock id.
func (s *PowerService) LockRecords() []runninglock.RecordInfo { return s.locks.Records() }
