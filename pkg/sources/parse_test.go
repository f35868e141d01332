package sources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

func TestParseSuspend(t *testing.T) {
	data := []byte(`{
  "powerkey": {"action": 1, "delayMs": 0},
  "timeout": {"action": 2, "delayMs": 5000},
  "lid": {"action": 3, "delayMs": 0},
  "switch": {"action": 0, "delayMs": 10}
}`)

	table, err := ParseSuspend(data)
	require.NoError(t, err)
	require.Len(t, table.Sources, 4)
	assert.Empty(t, table.Missing)

	assert.Equal(t, SuspendSource{
		Key:     KeyPowerKey,
		Type:    model.SuspendPowerKey,
		Action:  model.SuspendActionAutoSuspend,
		DelayMs: 0,
	}, table.Sources[0])

	src, ok := table.Get(model.SuspendTimeout)
	require.True(t, ok)
	assert.Equal(t, model.SuspendActionForceSuspend, src.Action)
	assert.Equal(t, uint32(5000), src.DelayMs)

	src, ok = table.Get(model.SuspendSwitch)
	require.True(t, ok)
	assert.Equal(t, model.SuspendActionNone, src.Action)

	_, ok = table.Get(model.SuspendHDMI)
	assert.False(t, ok)
}

func TestParseSuspendMissingKeys(t *testing.T) {
	table, err := ParseSuspend([]byte(`{"lid": {"action": 1, "delayMs": 0}}`))
	require.NoError(t, err)
	assert.Len(t, table.Sources, 1)
	assert.Equal(t, []string{KeyPowerKey, KeyTimeout, KeySwitch}, table.Missing)
}

func TestParseSuspendErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantParse int
		wantMsg   string
	}{
		{"invalid json", `{`, 0, "failed to parse JSON"},
		{"not object", `[1, 2]`, 0, "top level must be an object"},
		{"unknown key", `{"powerkey": {"action": 1, "delayMs": 0}, "bogus": {}}`, 1, `invalid key "bogus"`},
		{"duplicate key", `{"lid": {"action": 1, "delayMs": 0}, "lid": {"action": 1, "delayMs": 0}}`, 1, `invalid key "lid"`},
		{"entry not object", `{"powerkey": 1}`, 0, "entry must be an object"},
		{"negative action", `{"timeout": {"action": -1, "delayMs": 0}}`, 0, "unsigned integers"},
		{"string delay", `{"timeout": {"action": 1, "delayMs": "5"}}`, 0, "unsigned integers"},
		{"missing delay", `{"timeout": {"action": 1}}`, 0, "unsigned integers"},
		{"action out of range", `{"powerkey": {"action": 1, "delayMs": 0}, "timeout": {"action": 5, "delayMs": 0}}`, 1, "action out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseSuspend([]byte(tt.data))
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Contains(t, le.Message, tt.wantMsg)
			assert.Len(t, table.Sources, tt.wantParse)
		})
	}
}

func TestParseSuspendErrorLine(t *testing.T) {
	data := []byte("{\n  \"powerkey\": {\"action\": 1, \"delayMs\": 0},\n  \"nope\": {}\n}")
	_, err := ParseSuspend(data)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 3, le.Line)
	assert.Contains(t, le.Error(), "line 3")
}

func TestParseWakeup(t *testing.T) {
	data := []byte(`{
  "powerkey": {"enable": true},
  "mouse": {"enable": false},
  "keyborad": {"enable": true},
  "touchscreen": {"enable": true, "click": 1},
  "touchpad": {"enable": true},
  "pen": {"enable": false},
  "lid": {"enable": true},
  "switch": {"enable": true}
}`)

	table, err := ParseWakeup(data)
	require.NoError(t, err)
	assert.Empty(t, table.Missing)

	var types []model.WakeupDeviceType
	for _, s := range table.Sources {
		types = append(types, s.Type)
	}
	assert.Equal(t, []model.WakeupDeviceType{
		model.WakeupPowerButton,
		model.WakeupKeyboard,
		model.WakeupSingleClick,
		model.WakeupTouchpad,
		model.WakeupLid,
		model.WakeupSwitch,
	}, types)

	assert.True(t, table.Enabled(model.WakeupLid))
	assert.False(t, table.Enabled(model.WakeupMouse))
	assert.False(t, table.Enabled(model.WakeupPen))
}

func TestParseWakeupTouchscreenClick(t *testing.T) {
	tests := []struct {
		data string
		want model.WakeupDeviceType
	}{
		{`{"touchscreen": {"enable": true, "click": 1}}`, model.WakeupSingleClick},
		{`{"touchscreen": {"enable": true, "click": 2}}`, model.WakeupDoubleClick},
		{`{"touchscreen": {"enable": true}}`, model.WakeupDoubleClick},
		{`{"touchscreen": {"enable": true, "click": 7}}`, model.WakeupDoubleClick},
	}
	for _, tt := range tests {
		table, err := ParseWakeup([]byte(tt.data))
		require.NoError(t, err)
		require.Len(t, table.Sources, 1)
		assert.Equal(t, tt.want, table.Sources[0].Type, tt.data)
	}
}

func TestParseWakeupErrors(t *testing.T) {
	table, err := ParseWakeup([]byte(`{"powerkey": {"enable": true}, "mouse": {"enable": "yes"}}`))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Message, "enable must be a boolean")
	assert.Len(t, table.Sources, 1)

	_, err = ParseWakeup([]byte(`{"camera": {"enable": true}}`))
	require.Error(t, err)
}

func TestMapKeys(t *testing.T) {
	typ, ok := MapSuspendKey("powerkey")
	assert.True(t, ok)
	assert.Equal(t, model.SuspendPowerKey, typ)

	typ, ok = MapSuspendKey("bogus")
	assert.False(t, ok)
	assert.Equal(t, model.SuspendMin, typ)

	assert.Equal(t, model.WakeupUnknown, MapWakeupKey("bogus", 0))
	assert.Equal(t, model.WakeupKeyboard, MapWakeupKey(KeyKeyboard, 0))
}

func TestLoadErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &LoadError{File: "x.json", Message: "failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "x.json: failed: boom", err.Error())
}
