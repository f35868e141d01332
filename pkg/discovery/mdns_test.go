package discovery_test

import (
	"testing"

	"github.com/powerpolicy/powermgr-go/pkg/discovery"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvertiserValidation(t *testing.T) {
	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{}, nil)
	assert.ErrorIs(t, adv.Advertise(discovery.Info{Port: 8089}), discovery.ErrMissingRequired)
	assert.ErrorIs(t, adv.Advertise(discovery.Info{Instance: "powerd-test", Port: 0}), discovery.ErrInvalidPort)
	assert.ErrorIs(t, adv.UpdateState(model.PowerStateAwake), discovery.ErrNotAdvertising)

	// Not advertising: the listener path only logs.
	adv.OnPowerStateChanged(model.PowerStateSleep, model.ReasonTimeout)
	_, ok := adv.Info()
	assert.False(t, ok)
	adv.Stop()
}

func TestAdvertiserLifecycle(t *testing.T) {
	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{}, nil)
	defer adv.Stop()

	err := adv.Advertise(discovery.Info{Instance: "powerd-test", Port: 18089, State: model.PowerStateAwake.String()})
	if err != nil {
		t.Skipf("mDNS unavailable: %v", err)
	}

	adv.OnPowerStateChanged(model.PowerStateInactive, model.ReasonTimeout)
	info, ok := adv.Info()
	require.True(t, ok)
	assert.Equal(t, "INACTIVE", info.State)

	adv.Stop()
	_, ok = adv.Info()
	assert.False(t, ok)
	assert.ErrorIs(t, adv.UpdateState(model.PowerStateAwake), discovery.ErrNotAdvertising)
}
