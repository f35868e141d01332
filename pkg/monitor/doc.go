// Package monitor serves read-only diagnostics for a running power service.
//
// Routes:
//
//	GET /api/v1/health   liveness and version
//	GET /api/v1/state    power state, display state and device timestamps
//	GET /api/v1/dump     text dump of the state machine and the lock manager
//	GET /api/v1/locks    live running lock records
//	GET /api/v1/events   WebSocket stream of JSON encoded events
//
// A Server implements log.Logger; add it to the daemon's MultiLogger so
// every captured event is fanned out to the connected event clients.
// Each client is rate limited. A client that cannot keep up is dropped.
package monitor
