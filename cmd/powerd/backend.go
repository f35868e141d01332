package main

import (
	"fmt"
	"log/slog"

	"github.com/powerpolicy/powermgr-go/pkg/action"
)

// backends holds the device and lock backends and releases them.
type backends struct {
	device action.DeviceStateAction
	locks  action.RunningLockAction
	close  func() error
}

func newBackends(cfg Config, logger *slog.Logger) (*backends, error) {
	switch cfg.Backend {
	case BackendNull:
		return &backends{
			device: action.NewSoftDevice(),
			locks:  action.NewSoftLocks(),
			close:  func() error { return nil },
		}, nil

	case BackendSysfs:
		return &backends{
			device: action.NewSysfsDevice(action.SysfsConfig{
				BacklightDir: cfg.BacklightDir,
				Logger:       logger,
			}),
			locks: action.NewWakeLocks(),
			close: func() error { return nil },
		}, nil

	case BackendLogind:
		inhibitor, err := action.NewLogindInhibitor("powerd")
		if err != nil {
			return nil, err
		}
		return &backends{
			device: action.NewSysfsDevice(action.SysfsConfig{
				BacklightDir: cfg.BacklightDir,
				Sleep:        inhibitor.Suspend,
				Logger:       logger,
			}),
			locks: inhibitor,
			close: inhibitor.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend: %q", cfg.Backend)
	}
}
