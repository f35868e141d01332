// Package log provides structured diagnostic capture for the power core.
//
// This package defines the Logger interface and Event types for recording
// committed transitions, display desyncs, failed transition attempts and
// running lock edges. It is separate from operational logging (slog):
// capture provides a complete machine-readable trace for post-mortem
// analysis of power behavior.
//
// # Basic Usage
//
// Components accept a Logger in their config:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/powerd/events.plog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - StateChangeEvent: a transition committed
//   - DesyncEvent: believed state corrected from the display state
//   - TransitFailureEvent: a transition attempt was blocked or failed
//   - LockEvent: a running lock started or stopped counting
//
// # File Format
//
// Log files use CBOR encoding with .plog extension. The power-log CLI tool
// provides viewing, filtering, and export capabilities.
package log
