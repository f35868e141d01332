package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/creachadair/taskgroup"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/sources"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
	"github.com/powerpolicy/powermgr-go/pkg/taskqueue"
)

// PowerService owns the state machine and the running lock manager.
type PowerService struct {
	mu sync.RWMutex

	config      Config
	state       ServiceState
	initialized bool

	sm      *statemachine.PowerStateMachine
	locks   *runninglock.Manager
	watcher *remote.ProcessWatcher

	suspendSources sources.SuspendTable
	wakeupSources  sources.WakeupTable

	// pending holds delayed suspend actions keyed by source type.
	pending *taskqueue.Queue[model.SuspendDeviceType]

	eventHandlers []EventHandler

	// Background loops
	cancel context.CancelFunc
	group  *taskgroup.Group

	logger *slog.Logger
}

// NewPowerService creates a service. Call Init before use.
func NewPowerService(config Config) (*PowerService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	svc := &PowerService{
		config:  config,
		state:   StateIdle,
		watcher: remote.NewProcessWatcher(config.WatchInterval, config.Logger),
		pending: taskqueue.New[model.SuspendDeviceType](),
		logger:  config.Logger,
	}
	svc.sm = statemachine.New(statemachine.Config{
		Action:               config.DeviceAction,
		Suspend:              config.Suspend,
		DisplayOffTime:       config.DisplayOffTime,
		SleepTime:            config.SleepTime,
		EnableDisplaySuspend: config.EnableDisplaySuspend,
		ResumeAfterSleep:     config.ResumeAfterSleep,
		SessionID:            config.SessionID,
		EventLogger:          config.EventLogger,
		Logger:               config.Logger,
	})
	svc.locks = runninglock.New(runninglock.Config{
		Action:       config.LockAction,
		StateMachine: svc.sm,
		Callback:     svc,
		IsForeground: config.IsForeground,
		SessionID:    config.SessionID,
		EventLogger:  config.EventLogger,
		Logger:       config.Logger,
	})
	svc.sm.SetLockCounter(svc.locks)
	return svc, nil
}

// Init initializes both components, loads the source tables and the
// persisted timeouts and sets the initial state from the display. A source
// table that fails to load is logged and left partial; Init still succeeds.
func (s *PowerService) Init() error {
	s.mu.RLock()
	done := s.initialized
	s.mu.RUnlock()
	if done {
		return nil
	}

	if err := s.sm.Init(); err != nil {
		return err
	}
	if err := s.locks.Init(); err != nil {
		return err
	}
	if err := s.sm.RegisterPowerStateCallback(s, nil); err != nil {
		return err
	}

	suspend, wakeup := s.loadSources()
	s.restoreTimeouts()

	s.mu.Lock()
	s.suspendSources = suspend
	s.wakeupSources = wakeup
	s.initialized = true
	s.mu.Unlock()

	// InitState notifies listeners, including s; mu must not be held.
	s.sm.InitState()
	s.debugLog("power service initialized", "state", s.sm.State())
	return nil
}

func (s *PowerService) loadSources() (sources.SuspendTable, sources.WakeupTable) {
	loader := &sources.Loader{
		Settings:    s.config.Settings,
		SuspendPath: s.config.SuspendSourcesPath,
		WakeupPath:  s.config.WakeupSourcesPath,
		Logger:      s.logger,
	}
	suspend, err := loader.LoadSuspend()
	if err != nil {
		s.warnLog("suspend sources", "error", err)
	}
	wakeup, err := loader.LoadWakeup()
	if err != nil {
		s.warnLog("wakeup sources", "error", err)
	}
	return suspend, wakeup
}

func (s *PowerService) restoreTimeouts() {
	if s.config.Settings == nil {
		return
	}
	settings, err := s.config.Settings.Load()
	if err != nil {
		s.warnLog("load settings", "error", err)
		return
	}
	if settings == nil {
		return
	}
	if settings.DisplayOffTimeMs != nil {
		s.sm.SetDisplayOffTime(*settings.DisplayOffTimeMs)
	}
	if settings.SleepTimeMs != nil {
		s.sm.SetSleepTime(*settings.SleepTimeMs)
	}
}

// State returns the service state.
func (s *PowerService) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnEvent registers an event handler.
func (s *PowerService) OnEvent(handler EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventHandlers = append(s.eventHandlers, handler)
}

// Start launches the over-time sweep and the process watcher. They stop
// when ctx is cancelled or Stop is called.
func (s *PowerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.state != StateIdle && s.state != StateStopped {
		return ErrAlreadyStarted
	}
	s.state = StateStarting

	ctx, cancel := context.WithCancel(ctx)
	interval := s.config.SweepInterval
	if interval == 0 {
		interval = runninglock.CheckOverTimeInterval
	}

	g := taskgroup.New(nil)
	g.Go(func() error { return s.sweepLoop(ctx, interval) })
	g.Go(func() error { return s.watcher.Run(ctx) })

	s.cancel = cancel
	s.group = g
	s.state = StateRunning
	s.debugLog("power service started", "sweepInterval", interval)
	return nil
}

func (s *PowerService) sweepLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.locks.CheckOverTime(); n > 0 {
				s.emitEvent(Event{Type: EventOverTime, Count: n})
			}
		}
	}
}

// Stop cancels the background loops and waits for them to exit.
func (s *PowerService) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopping
	cancel, g := s.cancel, s.group
	s.mu.Unlock()

	cancel()
	err := g.Wait()

	s.mu.Lock()
	s.state = StateStopped
	s.cancel = nil
	s.group = nil
	s.mu.Unlock()
	s.debugLog("power service stopped")
	return err
}

// Close stops the service if it is running and cancels every pending
// timer of both components.
func (s *PowerService) Close() error {
	err := s.Stop()
	if errors.Is(err, ErrNotStarted) {
		err = nil
	}
	s.pending.Close()
	s.locks.Close()
	s.sm.Close()
	return err
}

// StateMachine returns the owned state machine.
func (s *PowerService) StateMachine() *statemachine.PowerStateMachine { return s.sm }

// Locks returns the owned running lock manager.
func (s *PowerService) Locks() *runninglock.Manager { return s.locks }

// OnPowerStateChanged records committed transitions.
func (s *PowerService) OnPowerStateChanged(state model.PowerState, reason model.StateChangeReason) {
	if a := s.config.Audit; a != nil {
		a.OnPowerStateChanged(state, reason)
	}
	s.emitEvent(Event{Type: EventStateChanged, State: state, Reason: reason})
}

// HandleRunningLockMessage records running lock counter changes.
func (s *PowerService) HandleRunningLockMessage(msg runninglock.LockMessage) {
	if a := s.config.Audit; a != nil {
		a.HandleRunningLockMessage(msg)
	}
	s.emitEvent(Event{Type: EventLockChanged, Lock: &msg})
}

func (s *PowerService) emitEvent(event Event) {
	s.mu.RLock()
	handlers := s.eventHandlers
	s.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// debugLog logs a debug message if a logger is configured.
func (s *PowerService) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *PowerService) warnLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

var (
	_ statemachine.PowerStateListener = (*PowerService)(nil)
	_ runninglock.ChangeCallback      = (*PowerService)(nil)
)
