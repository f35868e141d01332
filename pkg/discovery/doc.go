// Package discovery advertises and browses power daemons over mDNS/DNS-SD.
//
// A daemon with the diagnostics monitor enabled registers one instance of
// _powerd._tcp on the monitor port. The TXT record carries:
//
//	txtvers  record version, currently 1
//	state    current power state name, e.g. AWAKE or INACTIVE
//	path     base path of the monitor API
//
// The advertiser implements statemachine.PowerStateListener so the state
// record follows committed transitions.
package discovery
