// Package action defines the capability interfaces the power core drives
// and the production backends that implement them.
//
// DeviceStateAction controls the display and the system suspend entry
// points. RunningLockAction takes and drops the kernel or session level
// inhibitor behind each running lock type. LockRefs wraps a
// RunningLockAction with per-type reference counting so the backend only
// sees the first acquire and the last release.
package action
