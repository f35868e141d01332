package interactive

import (
	"strconv"
	"strings"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Type arguments accept the numeric value or the name in any case.

func parseWakeup(s string) (model.WakeupDeviceType, bool) {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		t := model.WakeupDeviceType(v)
		return t, t.IsValid()
	}
	for t := model.WakeupUnknown; t < model.WakeupMax; t++ {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return 0, false
}

func parseSuspend(s string) (model.SuspendDeviceType, bool) {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		t := model.SuspendDeviceType(v)
		return t, t.IsValid()
	}
	for t := model.SuspendMin; t < model.SuspendMax; t++ {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return 0, false
}

func parseActivity(s string) (model.UserActivityType, bool) {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		t := model.UserActivityType(v)
		return t, t.IsValid()
	}
	for t := model.UserActivityOther; t <= model.UserActivityMax; t++ {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return 0, false
}

func parseLockType(s string) (model.RunningLockType, bool) {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		t := model.RunningLockType(v)
		return t, t.IsValid()
	}
	for _, t := range model.AllLockTypes {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return 0, false
}
