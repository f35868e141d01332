// Package sources parses the suspend and wakeup source tables.
//
// A table is a JSON object keyed by source name. Suspend entries map to an
// action and a delay; wakeup entries map to an enable flag and, for the
// touch screen, a click mode. Tables are read from the settings store first,
// then from a config file, then from the embedded defaults. A table that
// parses cleanly is written back to the settings store.
package sources
