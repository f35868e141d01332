// Package runninglock implements the running lock manager.
//
// A Manager keeps one Record per remote token. Locking a record increments
// the LockCounter for its type; the counter calls its activation hook only
// when the count leaves or reaches zero. Hooks take the backend inhibitor
// (background scene types), keep the screen awake (SCREEN), arm the
// proximity controller (PROXIMITY_SCREEN_CONTROL) or mark the display as
// coordinated (COORDINATION).
//
// Proxying suppresses the contribution of a process's locks without
// destroying the records. The Proxy table keeps a depth per (pid, uid)
// and per work-source uid, so any balanced sequence of proxy and unproxy
// calls restores exactly the locks that were counted before.
//
// Calls into the state machine are queued while the manager lock is held
// and run after it is released, because the state machine reads lock
// counts back through ValidRunningLockNum.
package runninglock
