// Package audit keeps a SQLite history of running lock messages and
// committed power state transitions.
//
// A Store implements both runninglock.ChangeCallback and
// statemachine.PowerStateListener, so it can be registered directly with
// the lock manager and the state machine. Each insert prunes the table to
// the configured number of rows in the same transaction.
package audit
