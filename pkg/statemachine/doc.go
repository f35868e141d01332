// Package statemachine implements the power state machine.
//
// A PowerStateMachine owns the current PowerState and a table of state
// controllers, one per declared state. Every transition goes through
// Transit, which reconciles the believed state with the display, checks
// the blocking-lock table, runs the target state's driver action, and
// commits and publishes the result only when the action succeeds.
//
// Inactivity handling uses three keyed timers on a task queue:
//
//	activity timeout   at displayOffTime*2/3: dim the display
//	off timeout        at displayOffTime/3:   enter INACTIVE
//	sleep timeout      at sleepTime:          enter SLEEP
//
// Running locks are consulted through the LockCounter interface, so the
// machine has no compile-time dependency on the lock manager.
package statemachine
