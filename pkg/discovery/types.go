package discovery

import (
	"errors"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of the power daemon monitor.
	ServiceType = "_powerd._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// TXTVersion is the TXT record layout version.
	TXTVersion = "1"

	// BrowseTimeout is the default timeout for a Find.
	BrowseTimeout = 5 * time.Second
)

// TXT record keys.
const (
	TXTKeyVersion = "txtvers"
	TXTKeyState   = "state"
	TXTKeyPath    = "path"
)

// Errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrInvalidPort         = errors.New("invalid port")
	ErrNotAdvertising      = errors.New("not advertising")
)

// Info is the advertised content of one daemon.
type Info struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Port is the monitor TCP port.
	Port int

	// State is the power state name.
	State string

	// Path is the monitor API base path.
	Path string
}

// Service is a daemon found by browsing.
type Service struct {
	Info

	// Host is the advertised host name.
	Host string

	// Addresses holds the IPv4 and IPv6 addresses.
	Addresses []string
}

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty means all interfaces.
	Interface string

	// TTL overrides the record TTL. Zero uses the zeroconf default.
	TTL time.Duration
}

// BrowserConfig configures browsing.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	Interface string

	// Timeout bounds Find. Zero uses BrowseTimeout.
	Timeout time.Duration
}
