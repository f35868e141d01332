// Package persistence provides the settings store for runtime-tunable power values.
//
// This package handles the JSON serialization of values that must survive a
// restart of the power daemon: the display-off and sleep timeouts and the
// raw suspend/wakeup source tables last accepted by the sources parser.
package persistence
