package discovery

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryToService(t *testing.T) {
	entry := &zeroconf.ServiceEntry{}
	entry.Instance = "powerd-box"
	entry.HostName = "box.local."
	entry.Port = 8089
	entry.Text = []string{"txtvers=1", "state=AWAKE"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.2")}
	entry.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}

	svc := entryToService(entry)
	require.NotNil(t, svc)
	assert.Equal(t, "powerd-box", svc.Instance)
	assert.Equal(t, 8089, svc.Port)
	assert.Equal(t, "AWAKE", svc.State)
	assert.Equal(t, "box.local.", svc.Host)
	assert.Equal(t, []string{"192.168.1.2", "fe80::1"}, svc.Addresses)

	entry.Text = []string{"foo=bar"}
	assert.Nil(t, entryToService(entry))
}

func TestAddressAggregation(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, addrs)

	entry := &zeroconf.ServiceEntry{}
	entry.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.1")}
	assert.Equal(t, []string{"10.0.0.2"}, removeAddresses(addrs, entry))
}
