package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
)

// LockEntry is one stored running lock message.
type LockEntry struct {
	ID         int64                 `json:"id"`
	LockID     uint64                `json:"lockId"`
	Pid        int32                 `json:"pid"`
	Uid        int32                 `json:"uid"`
	Type       model.RunningLockType `json:"type"`
	Name       string                `json:"name"`
	BundleName string                `json:"bundleName"`
	Tag        string                `json:"tag"`
	At         time.Time             `json:"at"`
}

// TransitionEntry is one stored committed transition.
type TransitionEntry struct {
	ID     int64                   `json:"id"`
	State  model.PowerState        `json:"state"`
	Reason model.StateChangeReason `json:"reason"`
	At     time.Time               `json:"at"`
}

// SaveLockMessage stores msg.
func (s *Store) SaveLockMessage(msg runninglock.LockMessage) error {
	at := msg.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	return s.insert("running_lock_audit", `
		INSERT INTO running_lock_audit (lock_id, pid, uid, lock_type, name, bundle_name, tag, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(msg.LockID), msg.Pid, msg.Uid, uint32(msg.Type), msg.Name, msg.BundleName, msg.Tag,
		at.UTC().Format(time.RFC3339Nano))
}

// SaveTransition stores a committed transition into state.
func (s *Store) SaveTransition(state model.PowerState, reason model.StateChangeReason, at time.Time) error {
	return s.insert("power_state_audit", `
		INSERT INTO power_state_audit (state, reason, at) VALUES (?, ?, ?)`,
		uint32(state), uint32(reason), at.UTC().Format(time.RFC3339Nano))
}

// ListLockAudit returns the stored lock messages, newest first. A limit of
// zero or less returns every row.
func (s *Store) ListLockAudit(limit int) ([]LockEntry, error) {
	var out []LockEntry
	err := s.query(`SELECT id, lock_id, pid, uid, lock_type, name, bundle_name, tag, at FROM running_lock_audit`,
		limit, func(rows *sql.Rows) error {
			var (
				e      LockEntry
				lockID int64
				typ    uint32
				at     string
			)
			if err := rows.Scan(&e.ID, &lockID, &e.Pid, &e.Uid, &typ, &e.Name, &e.BundleName, &e.Tag, &at); err != nil {
				return fmt.Errorf("scan lock audit row: %w", err)
			}
			t, err := time.Parse(time.RFC3339Nano, at)
			if err != nil {
				return fmt.Errorf("parse lock audit at: %w", err)
			}
			e.LockID = uint64(lockID)
			e.Type = model.RunningLockType(typ)
			e.At = t
			out = append(out, e)
			return nil
		})
	return out, err
}

// ListTransitions returns the stored transitions, newest first. A limit of
// zero or less returns every row.
func (s *Store) ListTransitions(limit int) ([]TransitionEntry, error) {
	var out []TransitionEntry
	err := s.query(`SELECT id, state, reason, at FROM power_state_audit`,
		limit, func(rows *sql.Rows) error {
			var (
				e             TransitionEntry
				state, reason uint32
				at            string
			)
			if err := rows.Scan(&e.ID, &state, &reason, &at); err != nil {
				return fmt.Errorf("scan transition row: %w", err)
			}
			t, err := time.Parse(time.RFC3339Nano, at)
			if err != nil {
				return fmt.Errorf("parse transition at: %w", err)
			}
			e.State = model.PowerState(state)
			e.Reason = model.StateChangeReason(reason)
			e.At = t
			out = append(out, e)
			return nil
		})
	return out, err
}

// HandleRunningLockMessage stores msg. Failures are logged.
func (s *Store) HandleRunningLockMessage(msg runninglock.LockMessage) {
	if err := s.SaveLockMessage(msg); err != nil {
		s.warnLog("audit: save lock message", "lockId", msg.LockID, "tag", msg.Tag, "error", err)
	}
}

// OnPowerStateChanged stores the transition. Failures are logged.
func (s *Store) OnPowerStateChanged(state model.PowerState, reason model.StateChangeReason) {
	if err := s.SaveTransition(state, reason, time.Now()); err != nil {
		s.warnLog("audit: save transition", "state", state, "reason", reason, "error", err)
	}
}

var (
	_ runninglock.ChangeCallback      = (*Store)(nil)
	_ statemachine.PowerStateListener = (*Store)(nil)
)
