package action

import (
	"log/slog"
	"sync"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// LockRefs reference-counts acquisitions per lock type and calls the
// wrapped RunningLockAction only on the first acquire and last release.
// It is safe for concurrent use.
type LockRefs struct {
	mu     sync.Mutex
	action RunningLockAction
	refs   map[model.RunningLockType]uint32
	logger *slog.Logger
}

// NewLockRefs wraps action. A nil logger disables logging.
func NewLockRefs(action RunningLockAction, logger *slog.Logger) *LockRefs {
	return &LockRefs{
		action: action,
		refs:   make(map[model.RunningLockType]uint32),
		logger: logger,
	}
}

// Acquire takes one reference on typ. The backend lock is taken when the
// count leaves zero; if that fails the count is unchanged.
func (r *LockRefs) Acquire(typ model.RunningLockType) error {
	if !typ.IsValid() {
		r.debugLog("acquire: invalid type", "type", uint32(typ))
		return ErrInvalidType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs[typ] == 0 {
		if err := r.action.Lock(typ, LockTag(typ)); err != nil {
			return err
		}
	}
	r.refs[typ]++
	r.debugLog("acquire", "type", typ.String(), "refs", r.refs[typ])
	return nil
}

// Release drops one reference on typ. The backend lock is dropped when the
// count reaches zero; if the backend refuses, the reference is kept.
func (r *LockRefs) Release(typ model.RunningLockType) error {
	if !typ.IsValid() {
		r.debugLog("release: invalid type", "type", uint32(typ))
		return ErrInvalidType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs[typ] == 0 {
		if r.logger != nil {
			r.logger.Error("release without acquire", "type", typ.String())
		}
		return ErrNotHeld
	}
	if r.refs[typ] == 1 {
		// The last reference stays held until the backend lets go.
		if err := r.action.Unlock(typ, LockTag(typ)); err != nil {
			return err
		}
	}
	r.refs[typ]--
	r.debugLog("release", "type", typ.String(), "refs", r.refs[typ])
	return nil
}

// Refs returns the current reference count for typ.
func (r *LockRefs) Refs(typ model.RunningLockType) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs[typ]
}

// Action returns the wrapped backend.
func (r *LockRefs) Action() RunningLockAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.action
}

// Swap replaces the backend and clears all references without calling
// the old backend.
func (r *LockRefs) Swap(action RunningLockAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.action = action
	clear(r.refs)
}

func (r *LockRefs) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
