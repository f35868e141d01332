package log

import "sync"

// MultiLogger sends events to multiple loggers.
// Loggers may be added after construction, e.g. when a monitor starts.
type MultiLogger struct {
	mu      sync.RWMutex
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that sends events to all provided loggers.
// Nil loggers are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		m.Add(l)
	}
	return m
}

// Add appends a logger to the fan-out.
func (m *MultiLogger) Add(l Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.loggers = append(m.loggers, l)
	m.mu.Unlock()
}

// Len returns the number of configured loggers.
func (m *MultiLogger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.loggers)
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	m.mu.RLock()
	loggers := m.loggers
	m.mu.RUnlock()

	for _, l := range loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
