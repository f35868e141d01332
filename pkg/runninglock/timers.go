package runninglock

import (
	"time"

	"github.com/powerpolicy/powermgr-go/internal/tick"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
)

// armTimer schedules the automatic release of rec when it has a timeout,
// replacing a pending one. mu must be held.
func (m *Manager) armTimer(tok *remote.Token, rec *Record) {
	d := rec.param.Timeout()
	if d <= 0 {
		m.cancelTimer(tok)
		return
	}
	if err := m.queue.Set(tok, d, func() { m.handleLockTimeout(tok) }); err != nil {
		m.debugLog("lock timer not set", "name", rec.param.Name, "error", err)
	}
}

// cancelTimer removes a pending release of tok. A fired or missing timer
// is ignored.
func (m *Manager) cancelTimer(tok *remote.Token) {
	if m.queue != nil {
		_ = m.queue.Cancel(tok)
	}
}

// TimerPending reports whether the automatic release of tok is armed.
func (m *Manager) TimerPending(tok *remote.Token) bool {
	m.mu.RLock()
	q := m.queue
	m.mu.RUnlock()
	return q != nil && q.Pending(tok)
}

func (m *Manager) handleLockTimeout(tok *remote.Token) {
	_ = m.update(func() error {
		rec, ok := m.records[tok]
		if !ok || !rec.wantsLock() {
			return nil
		}
		m.expire(tok, rec)
		return nil
	})
}

// expire unlocks rec because its timeout elapsed. mu must be held.
func (m *Manager) expire(tok *remote.Token, rec *Record) {
	if err := m.unlockRecord(tok, rec, log.LockOpTimeout); err != nil {
		m.warnLog("lock timeout: unlock failed", "name", rec.param.Name, "error", err)
		return
	}
	rec.overTime = true
	if m.logger != nil {
		m.logger.Info("running lock timed out", "name", rec.param.Name, "type", rec.typ(),
			"pid", rec.param.Pid, "heldMs", tick.Since(rec.lockTimeMs))
	}
}

// CheckOverTime unlocks every record held past its timeout and returns
// how many were unlocked. Records without a timeout never expire.
func (m *Manager) CheckOverTime() int {
	now := tick.Now()
	var n int
	_ = m.update(func() error {
		for tok, rec := range m.records {
			if !rec.wantsLock() {
				continue
			}
			d := rec.param.Timeout()
			if d <= 0 || time.Duration(now-rec.lockTimeMs)*time.Millisecond < d {
				continue
			}
			m.expire(tok, rec)
			n++
		}
		return nil
	})
	if n > 0 {
		m.debugLog("over-time sweep", "expired", n)
	}
	return n
}
