package action

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Default sysfs locations.
const (
	DefaultPowerStatePath = "/sys/power/state"
	DefaultWakeLockPath   = "/sys/power/wake_lock"
	DefaultWakeUnlockPath = "/sys/power/wake_unlock"
)

// blPowerOff is FB_BLANK_POWERDOWN.
const blPowerOff = 4

// SysfsConfig configures a SysfsDevice.
type SysfsConfig struct {
	// BacklightDir is a /sys/class/backlight/<name> directory.
	BacklightDir string

	// PowerStatePath receives "mem" on GoToSleep. Defaults to /sys/power/state.
	PowerStatePath string

	// DimPercent is the brightness used for DISPLAY_DIM, as a percentage of
	// max_brightness. Defaults to 10.
	DimPercent int

	// Sleep replaces the PowerStatePath write, e.g. with a logind call.
	Sleep func(force bool) error

	// Logger for backend diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// SysfsDevice drives a backlight through sysfs and suspends the system
// by writing to the power state file.
type SysfsDevice struct {
	config SysfsConfig

	mu          sync.Mutex
	last        model.DisplayState
	coordinated bool
}

// NewSysfsDevice creates a SysfsDevice.
func NewSysfsDevice(config SysfsConfig) *SysfsDevice {
	if config.PowerStatePath == "" {
		config.PowerStatePath = DefaultPowerStatePath
	}
	if config.DimPercent <= 0 || config.DimPercent > 100 {
		config.DimPercent = 10
	}
	return &SysfsDevice{config: config, last: model.DisplayOn}
}

func (d *SysfsDevice) Suspend(callTimeMs int64, typ model.SuspendDeviceType, flags uint32) {
	d.debugLog("suspend", "time_ms", callTimeMs, "type", typ.String(), "flags", flags)
}

func (d *SysfsDevice) ForceSuspend() {
	d.GoToSleep(true)
}

func (d *SysfsDevice) Wakeup(callTimeMs int64, typ model.WakeupDeviceType, details, pkgName string) {
	d.debugLog("wakeup", "time_ms", callTimeMs, "type", typ.String(), "details", details, "pkg", pkgName)
}

func (d *SysfsDevice) RefreshActivity(callTimeMs int64, typ model.UserActivityType, flags uint32) {
	d.debugLog("refresh activity", "time_ms", callTimeMs, "type", typ.String(), "flags", flags)
}

// GetDisplayState reads bl_power and brightness. A panel that is dark while
// the last requested state was lit reports DISPLAY_OFF.
func (d *SysfsDevice) GetDisplayState() model.DisplayState {
	d.mu.Lock()
	last := d.last
	d.mu.Unlock()

	if power, err := d.readInt("bl_power"); err == nil && power != 0 {
		if last == model.DisplaySuspend {
			return model.DisplaySuspend
		}
		return model.DisplayOff
	}
	brightness, err := d.readInt("brightness")
	if err != nil {
		d.debugLog("read brightness failed", "error", err)
		return model.DisplayUnknown
	}
	if brightness == 0 {
		if last == model.DisplaySuspend {
			return model.DisplaySuspend
		}
		return model.DisplayOff
	}
	if last == model.DisplayDim {
		return model.DisplayDim
	}
	return model.DisplayOn
}

func (d *SysfsDevice) SetDisplayState(state model.DisplayState, reason model.StateChangeReason) model.ActionResult {
	maxBrightness, err := d.readInt("max_brightness")
	if err != nil {
		d.errorLog("read max_brightness failed", err)
		return model.ActionFailed
	}

	var brightness, power int
	switch state {
	case model.DisplayOn:
		brightness = maxBrightness
	case model.DisplayDim:
		brightness = maxBrightness * d.config.DimPercent / 100
		if brightness == 0 {
			brightness = 1
		}
	case model.DisplayOff, model.DisplaySuspend:
		power = blPowerOff
	default:
		d.debugLog("unsupported display state", "state", state.String())
		return model.ActionFailed
	}

	if power == 0 {
		if err := d.writeInt("bl_power", 0); err != nil && !os.IsNotExist(err) {
			d.errorLog("write bl_power failed", err)
			return model.ActionFailed
		}
		if err := d.writeInt("brightness", brightness); err != nil {
			d.errorLog("write brightness failed", err)
			return model.ActionFailed
		}
	} else {
		err := d.writeInt("bl_power", power)
		if os.IsNotExist(err) {
			err = d.writeInt("brightness", 0)
		}
		if err != nil {
			d.errorLog("blank display failed", err)
			return model.ActionFailed
		}
	}

	d.mu.Lock()
	d.last = state
	d.mu.Unlock()
	d.debugLog("display state set", "state", state.String(), "reason", reason.String())
	return model.ActionSuccess
}

func (d *SysfsDevice) GoToSleep(force bool) model.ActionResult {
	var err error
	if d.config.Sleep != nil {
		err = d.config.Sleep(force)
	} else {
		err = os.WriteFile(d.config.PowerStatePath, []byte("mem"), 0)
	}
	if err != nil {
		d.errorLog("suspend failed", err)
		return model.ActionFailed
	}
	return model.ActionSuccess
}

func (d *SysfsDevice) SetCoordinated(coordinated bool) {
	d.mu.Lock()
	d.coordinated = coordinated
	d.mu.Unlock()
}

func (d *SysfsDevice) readInt(name string) (int, error) {
	data, err := os.ReadFile(filepath.Join(d.config.BacklightDir, name))
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func (d *SysfsDevice) writeInt(name string, v int) error {
	path := filepath.Join(d.config.BacklightDir, name)
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0)
}

func (d *SysfsDevice) debugLog(msg string, args ...any) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, args...)
	}
}

func (d *SysfsDevice) errorLog(msg string, err error) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, "error", err)
	}
}

// WakeLocks takes Android-style kernel wakelocks by writing the lock tag
// to the wake_lock and wake_unlock files.
type WakeLocks struct {
	LockPath   string
	UnlockPath string
}

// NewWakeLocks creates WakeLocks on the default sysfs paths.
func NewWakeLocks() *WakeLocks {
	return &WakeLocks{LockPath: DefaultWakeLockPath, UnlockPath: DefaultWakeUnlockPath}
}

func (w *WakeLocks) Lock(typ model.RunningLockType, tag string) error {
	if err := os.WriteFile(w.LockPath, []byte(tag), 0); err != nil {
		return fmt.Errorf("wake_lock %s: %w", typ, err)
	}
	return nil
}

func (w *WakeLocks) Unlock(typ model.RunningLockType, tag string) error {
	if err := os.WriteFile(w.UnlockPath, []byte(tag), 0); err != nil {
		return fmt.Errorf("wake_unlock %s: %w", typ, err)
	}
	return nil
}

var (
	_ DeviceStateAction = (*SysfsDevice)(nil)
	_ RunningLockAction = (*WakeLocks)(nil)
)
