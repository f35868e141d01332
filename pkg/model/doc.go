// Package model defines the shared power-management vocabulary.
//
// # States
//
// PowerState is the coarse state owned by the state machine. DisplayState is
// the finer driver-level state it reconciles against:
//
//	AWAKE     <-> DISPLAY_ON / DISPLAY_DIM
//	INACTIVE  <-> DISPLAY_OFF / DISPLAY_SUSPEND
//	SLEEP, HIBERNATE, SHUTDOWN are terminal for reconciliation
//
// # Reasons and Sources
//
// Every transition carries a StateChangeReason. Reasons are derived from the
// external UserActivityType, WakeupDeviceType and SuspendDeviceType
// enumerations by the state machine's mapping functions.
//
// # Running Locks
//
// RunningLockType values match the platform ABI. Background sub-kinds share
// the BACKGROUND bit, and BUTT marks the first invalid value.
//
// All numeric values are stable and may be persisted or sent over the wire.
package model
