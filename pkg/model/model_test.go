package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerStateString(t *testing.T) {
	tests := []struct {
		state PowerState
		want  string
	}{
		{PowerStateAwake, "AWAKE"},
		{PowerStateInactive, "INACTIVE"},
		{PowerStateSleep, "SLEEP"},
		{PowerStateDim, "DIM"},
		{PowerStateUnknown, "UNKNOWN"},
		{PowerState(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestPowerStateABI(t *testing.T) {
	assert.Equal(t, PowerState(0), PowerStateAwake)
	assert.Equal(t, PowerState(2), PowerStateInactive)
	assert.Equal(t, PowerState(5), PowerStateSleep)
	assert.Equal(t, PowerState(9), PowerStateUnknown)
	assert.Equal(t, DisplayState(2), DisplayOn)
	assert.Equal(t, DisplayState(3), DisplaySuspend)
}

func TestPowerStateTerminal(t *testing.T) {
	assert.True(t, PowerStateSleep.IsTerminal())
	assert.True(t, PowerStateHibernate.IsTerminal())
	assert.True(t, PowerStateShutdown.IsTerminal())
	assert.False(t, PowerStateAwake.IsTerminal())
	assert.False(t, PowerStateInactive.IsTerminal())
}

func TestParsePowerState(t *testing.T) {
	s, ok := ParsePowerState("INACTIVE")
	assert.True(t, ok)
	assert.Equal(t, PowerStateInactive, s)

	_, ok = ParsePowerState("BOGUS")
	assert.False(t, ok)
}

func TestDisplayStateIsOn(t *testing.T) {
	assert.True(t, DisplayOn.IsOn())
	assert.True(t, DisplayDim.IsOn())
	assert.False(t, DisplayOff.IsOn())
	assert.False(t, DisplaySuspend.IsOn())
	assert.False(t, DisplayUnknown.IsOn())
}

func TestTransitResultSucceeded(t *testing.T) {
	assert.True(t, TransitSuccess.Succeeded())
	assert.True(t, TransitAlreadyInState.Succeeded())
	assert.False(t, TransitLocking.Succeeded())
	assert.False(t, TransitHDIErr.Succeeded())
	assert.Equal(t, "LOCKING", TransitLocking.String())
}

func TestRunningLockTypeValues(t *testing.T) {
	assert.Equal(t, RunningLockType(3), LockBackgroundPhone)
	assert.Equal(t, RunningLockType(5), LockBackgroundNotification)
	assert.Equal(t, RunningLockType(9), LockBackgroundAudio)
	assert.Equal(t, RunningLockType(17), LockBackgroundSport)
	assert.Equal(t, RunningLockType(33), LockBackgroundNavigation)
	assert.Equal(t, RunningLockType(65), LockBackgroundTask)
	assert.Equal(t, RunningLockType(66), LockButt)
}

func TestRunningLockTypeIsValid(t *testing.T) {
	for _, lt := range AllLockTypes {
		assert.True(t, lt.IsValid(), lt.String())
	}
	assert.False(t, LockButt.IsValid())
	assert.False(t, RunningLockType(100).IsValid())
	// Gaps in the ABI are not valid types either.
	assert.False(t, RunningLockType(6).IsValid())
}

func TestRunningLockTypeIsScene(t *testing.T) {
	assert.True(t, LockBackgroundAudio.IsScene())
	assert.False(t, LockBackground.IsScene())
	assert.False(t, LockScreen.IsScene())
}

func TestParseLockType(t *testing.T) {
	lt, ok := ParseLockType("BACKGROUND_TASK")
	assert.True(t, ok)
	assert.Equal(t, LockBackgroundTask, lt)

	_, ok = ParseLockType("NOPE")
	assert.False(t, ok)
}

func TestRunningLockParamTimeout(t *testing.T) {
	assert.Zero(t, RunningLockParam{TimeoutMs: -1}.Timeout())
	assert.Equal(t, int64(1500), RunningLockParam{TimeoutMs: 1500}.Timeout().Milliseconds())
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "HARD_KEY", ReasonHardKey.String())
	assert.Equal(t, "REMOTE", ReasonRemote.String())
	assert.Equal(t, "UNKNOWN", StateChangeReason(9999).String())
	assert.Equal(t, "100", ReasonRemote.Code())
}

func TestDeviceTypeValidity(t *testing.T) {
	assert.True(t, WakeupPowerButton.IsValid())
	assert.False(t, WakeupMax.IsValid())
	assert.Equal(t, "ABNORMAL_SCREEN_CONNECT", WakeupAbnormalScreenConnect.String())
	assert.Equal(t, "UNKNOWN", WakeupMax.String())

	assert.True(t, SuspendPowerKey.IsValid())
	assert.False(t, SuspendMax.IsValid())
	assert.Equal(t, "EX_SCREEN_INIT", SuspendExScreenInit.String())

	assert.True(t, UserActivityCable.IsValid())
	assert.False(t, UserActivityType(8).IsValid())
}
