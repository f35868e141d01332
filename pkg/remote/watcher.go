package remote

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/creachadair/mds/mapset"
	"github.com/shirou/gopsutil/process"
)

// DefaultWatchInterval is how often a ProcessWatcher polls.
const DefaultWatchInterval = 2 * time.Second

// ProcessWatcher kills watched tokens whose owning process has exited.
type ProcessWatcher struct {
	interval time.Duration
	exists   func(pid int32) (bool, error)
	logger   *slog.Logger

	mu     sync.Mutex
	tokens mapset.Set[*Token]
}

// NewProcessWatcher creates a watcher polling at interval.
// A zero interval uses DefaultWatchInterval.
func NewProcessWatcher(interval time.Duration, logger *slog.Logger) *ProcessWatcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &ProcessWatcher{
		interval: interval,
		exists:   process.PidExists,
		logger:   logger,
		tokens:   mapset.New[*Token](),
	}
}

// Watch adds t to the watched set. Tokens with pid < 1 are ignored.
func (w *ProcessWatcher) Watch(t *Token) {
	if t.Pid() < 1 {
		return
	}
	w.mu.Lock()
	w.tokens.Add(t)
	w.mu.Unlock()
}

// Unwatch removes t from the watched set.
func (w *ProcessWatcher) Unwatch(t *Token) {
	w.mu.Lock()
	delete(w.tokens, t)
	w.mu.Unlock()
}

// Len returns the number of watched tokens.
func (w *ProcessWatcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tokens)
}

// Check polls every watched token once and kills the ones whose process
// is gone. It returns the number of tokens killed.
func (w *ProcessWatcher) Check() int {
	w.mu.Lock()
	tokens := make([]*Token, 0, len(w.tokens))
	for t := range w.tokens {
		tokens = append(tokens, t)
	}
	w.mu.Unlock()

	killed := 0
	for _, t := range tokens {
		if !t.IsAlive() {
			w.Unwatch(t)
			continue
		}
		ok, err := w.exists(t.Pid())
		if err != nil {
			if w.logger != nil {
				w.logger.Debug("pid check failed", "pid", t.Pid(), "error", err)
			}
			continue
		}
		if ok {
			continue
		}
		w.Unwatch(t)
		if w.logger != nil {
			w.logger.Info("remote process died", "pid", t.Pid(), "uid", t.Uid(), "token", t.String())
		}
		t.Kill()
		killed++
	}
	return killed
}

// Run polls until ctx is cancelled.
func (w *ProcessWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check()
		}
	}
}
