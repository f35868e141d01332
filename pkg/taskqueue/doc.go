// Package taskqueue implements keyed delayed tasks.
//
// A Queue holds at most one pending task per key. Setting a key that already
// has a pending task replaces it; there is no stacking. Cancelling a task
// that has already fired, or was never set, returns ErrTaskNotFound and has
// no other effect.
//
// # Stale Fires
//
// A replaced or cancelled task whose timer has already started firing is
// detected by its generation number and dropped, so a callback never runs
// for a task that is no longer current.
//
// # Callbacks
//
// Callbacks run on their own goroutine, outside the queue lock. They may
// freely call back into the queue.
package taskqueue
