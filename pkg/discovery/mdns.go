package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
)

// Advertiser registers the daemon's monitor with zeroconf.
type Advertiser struct {
	config AdvertiserConfig
	logger *slog.Logger

	mu     sync.Mutex
	server *zeroconf.Server
	info   Info
}

// NewAdvertiser creates an advertiser. Nothing is registered until
// Advertise is called.
func NewAdvertiser(config AdvertiserConfig, logger *slog.Logger) *Advertiser {
	return &Advertiser{config: config, logger: logger}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func getInterfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise registers info, replacing any earlier registration.
func (a *Advertiser) Advertise(info Info) error {
	if err := ValidateInstanceName(info.Instance); err != nil {
		return err
	}
	if info.Port <= 0 || info.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, info.Port)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Instance,
		ServiceType,
		Domain,
		info.Port,
		TXTRecordsToStrings(EncodeTXT(&info)),
		getInterfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", ServiceType, err)
	}
	a.server = server
	a.info = info
	if a.logger != nil {
		a.logger.Debug("advertising monitor", "instance", info.Instance, "port", info.Port, "state", info.State)
	}
	return nil
}

// UpdateState replaces the state TXT record.
func (a *Advertiser) UpdateState(state model.PowerState) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.info.State = state.String()
	a.server.SetText(TXTRecordsToStrings(EncodeTXT(&a.info)))
	return nil
}

// OnPowerStateChanged updates the advertised state.
func (a *Advertiser) OnPowerStateChanged(state model.PowerState, _ model.StateChangeReason) {
	if err := a.UpdateState(state); err != nil && a.logger != nil {
		a.logger.Debug("advertised state not updated", "state", state, "error", err)
	}
}

// Info returns the advertised content and whether it is registered.
func (a *Advertiser) Info() (Info, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info, a.server != nil
}

// Stop withdraws the registration.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// Browse searches for daemons until ctx is done. Services are aggregated
// by instance name; addresses seen on several interfaces are merged and a
// service is emitted again when its TXT record changes. The channel is
// closed when ctx is done.
func Browse(ctx context.Context, config BrowserConfig) (<-chan *Service, error) {
	out := make(chan *Service)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := getInterfaces(config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)

		services := make(map[string]*Service)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if svc == nil {
					continue
				}
				if existing, found := services[svc.Instance]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					if existing.State == svc.State {
						continue
					}
					existing.State = svc.State
					copied := *existing
					svc = &copied
				} else {
					services[svc.Instance] = svc
					copied := *svc
					svc = &copied
				}
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// Find browses for config.Timeout and returns every daemon seen.
func Find(ctx context.Context, config BrowserConfig) ([]*Service, error) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = BrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch, err := Browse(ctx, config)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Service)
	var order []string
	for svc := range ch {
		if _, ok := byName[svc.Instance]; !ok {
			order = append(order, svc.Instance)
		}
		byName[svc.Instance] = svc
	}
	result := make([]*Service, 0, len(order))
	for _, name := range order {
		result = append(result, byName[name])
	}
	return result, nil
}

// entryToService converts a zeroconf entry. Entries with a foreign TXT
// layout are skipped.
func entryToService(entry *zeroconf.ServiceEntry) *Service {
	info, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	info.Instance = entry.Instance
	info.Port = entry.Port

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Service{
		Info:      *info,
		Host:      entry.HostName,
		Addresses: addrs,
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

var _ statemachine.PowerStateListener = (*Advertiser)(nil)
