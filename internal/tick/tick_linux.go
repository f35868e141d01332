//go:build linux

package tick

import "golang.org/x/sys/unix"

func bootMillis() (int64, bool) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return 0, false
	}
	return ts.Nano() / 1e6, true
}
