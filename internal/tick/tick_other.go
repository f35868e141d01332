//go:build !linux

package tick

func bootMillis() (int64, bool) {
	return 0, false
}
