package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger writes power events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	path     string
	maxBytes int64

	file    *os.File
	encoder *cbor.Encoder
	size    int64
	mu      sync.Mutex
	closed  bool
}

// FileOption configures a FileLogger.
type FileOption func(*FileLogger)

// WithMaxBytes rotates the log to path+".1" once it grows past n bytes.
// Zero disables rotation.
func WithMaxBytes(n int64) FileOption {
	return func(l *FileLogger) {
		l.maxBytes = n
	}
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string, opts ...FileOption) (*FileLogger, error) {
	l := &FileLogger{path: path}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	l.encoder = NewEncoder(countingWriter{l})
	return nil
}

// countingWriter tracks the bytes written through the encoder.
type countingWriter struct {
	l *FileLogger
}

func (w countingWriter) Write(p []byte) (int, error) {
	n, err := w.l.file.Write(p)
	w.l.size += int64(n)
	return n, err
}

// rotate must be called with mu held.
func (l *FileLogger) rotate() {
	if err := l.file.Close(); err != nil {
		return
	}
	_ = os.Rename(l.path, l.path+".1")
	if err := l.open(); err != nil {
		l.closed = true
	}
}

// Log writes an event to the log file.
// This method is safe for concurrent use.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Ignore encoding errors - logging should not disrupt the application
	_ = l.encoder.Encode(event)

	if l.maxBytes > 0 && l.size >= l.maxBytes {
		l.rotate()
	}
}

// Path returns the file the logger writes to.
func (l *FileLogger) Path() string {
	return l.path
}

// Close closes the log file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
