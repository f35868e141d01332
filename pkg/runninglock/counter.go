package runninglock

import "github.com/powerpolicy/powermgr-go/pkg/model"

// activateFunc is called when a counter leaves zero (active) or returns
// to zero (inactive). An error rolls the count back.
type activateFunc func(active bool, param model.RunningLockParam) error

// LockCounter counts the counted locks of one type. It is guarded by the
// manager lock.
type LockCounter struct {
	typ      model.RunningLockType
	count    uint32
	activate activateFunc

	// changed is called after every successful increase or decrease.
	changed func(param model.RunningLockParam, tag string)
}

func newLockCounter(typ model.RunningLockType, activate activateFunc) *LockCounter {
	return &LockCounter{typ: typ, activate: activate}
}

// Increase adds one lock. The activation hook runs on the 0 to 1 edge.
func (c *LockCounter) Increase(param model.RunningLockParam) error {
	c.count++
	if c.count == 1 && c.activate != nil {
		if err := c.activate(true, param); err != nil {
			c.count--
			return err
		}
	}
	if c.changed != nil {
		c.changed(param, TagAdd)
	}
	return nil
}

// Decrease removes one lock. The activation hook runs on the 1 to 0 edge.
func (c *LockCounter) Decrease(param model.RunningLockParam) error {
	if c.count == 0 {
		return ErrNotLocked
	}
	c.count--
	if c.count == 0 && c.activate != nil {
		if err := c.activate(false, param); err != nil {
			c.count++
			return err
		}
	}
	if c.changed != nil {
		c.changed(param, TagRemove)
	}
	return nil
}

// Drop removes one lock without rolling back. It is used when the record
// behind the lock is destroyed, so the count must fall even if the
// deactivation hook fails. The hook error is returned for logging.
func (c *LockCounter) Drop(param model.RunningLockParam) error {
	if c.count == 0 {
		return ErrNotLocked
	}
	c.count--
	var err error
	if c.count == 0 && c.activate != nil {
		err = c.activate(false, param)
	}
	if c.changed != nil {
		c.changed(param, TagRemove)
	}
	return err
}

// Count returns the number of counted locks.
func (c *LockCounter) Count() uint32 { return c.count }

// Type returns the counted lock type.
func (c *LockCounter) Type() model.RunningLockType { return c.typ }

// Clear resets the count without running the hook.
func (c *LockCounter) Clear() { c.count = 0 }
