// Package tick provides the millisecond clock used for power timestamps.
//
// Timestamps count from boot and keep advancing while the system is
// suspended, so lock ages and transition times stay comparable across sleep.
package tick

import "time"

var start = time.Now()

// Now returns milliseconds since boot.
func Now() int64 {
	if ms, ok := bootMillis(); ok {
		return ms
	}
	return time.Since(start).Milliseconds()
}

// Since returns the milliseconds elapsed since ms.
func Since(ms int64) int64 {
	return Now() - ms
}
