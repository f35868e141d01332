// Package service composes the power state machine and the running lock
// manager into a PowerService.
//
// PowerService owns both components and wires them together explicitly:
// the state machine reads lock counts from the manager, and the manager
// drives the state machine from its lock hooks. It also loads the suspend
// and wakeup source tables, restores persisted timeouts, records audit rows
// and runs the background loops:
//   - the over-time sweep of running locks
//   - the process watcher that reports dead lock owners
//
// Example usage:
//
//	svc, err := service.NewPowerService(service.Config{
//		DeviceAction: action.NewSoftDevice(),
//		LockAction:   action.NewSoftLocks(),
//	})
//	if err := svc.Init(); err != nil { ... }
//	svc.Start(ctx)
//	defer svc.Close()
package service
