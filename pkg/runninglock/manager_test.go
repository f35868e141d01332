package runninglock_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/action"
	actionmocks "github.com/powerpolicy/powermgr-go/pkg/action/mocks"
	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStateMachine struct {
	mu          sync.Mutex
	state       model.PowerState
	coordinated bool
	calls       []string
}

func (f *fakeStateMachine) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeStateMachine) State() model.PowerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStateMachine) setState(s model.PowerState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *fakeStateMachine) SetState(state model.PowerState, reason model.StateChangeReason, force bool) bool {
	f.record(fmt.Sprintf("set-state %s %s %t", state, reason, force))
	f.setState(state)
	return true
}

func (f *fakeStateMachine) ResetInactiveTimer() { f.record("reset-inactive") }

func (f *fakeStateMachine) RefreshActivityInner(_ int32, _ int64, typ model.UserActivityType, needChangeBacklight bool) {
	f.record(fmt.Sprintf("refresh %s %t", typ, needChangeBacklight))
}

func (f *fakeStateMachine) SetCoordinated(coordinated bool) {
	f.mu.Lock()
	f.coordinated = coordinated
	f.mu.Unlock()
	f.record(fmt.Sprintf("coordinated %t", coordinated))
}

func (f *fakeStateMachine) ScheduleProximityScreenOff(delay time.Duration) {
	f.record("schedule-proximity " + delay.String())
}

func (f *fakeStateMachine) CancelProximityScreenOff() { f.record("cancel-proximity") }

func (f *fakeStateMachine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStateMachine) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

type captureCallback struct {
	mu   sync.Mutex
	msgs []runninglock.LockMessage
}

func (c *captureCallback) HandleRunningLockMessage(msg runninglock.LockMessage) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *captureCallback) Messages() []runninglock.LockMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]runninglock.LockMessage(nil), c.msgs...)
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(ev log.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureLogger) ops() []log.LockOp {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []log.LockOp
	for _, ev := range c.events {
		if ev.Lock != nil {
			out = append(out, ev.Lock.Op)
		}
	}
	return out
}

type fixture struct {
	mgr    *runninglock.Manager
	locks  *action.SoftLocks
	sm     *fakeStateMachine
	cb     *captureCallback
	events *captureLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		locks:  action.NewSoftLocks(),
		sm:     &fakeStateMachine{state: model.PowerStateAwake},
		cb:     &captureCallback{},
		events: &captureLogger{},
	}
	f.mgr = runninglock.New(runninglock.Config{
		Action:       f.locks,
		StateMachine: f.sm,
		Callback:     f.cb,
		SessionID:    "test-session",
		EventLogger:  f.events,
	})
	require.NoError(t, f.mgr.Init())
	t.Cleanup(f.mgr.Close)
	return f
}

func (f *fixture) create(t *testing.T, typ model.RunningLockType, pid, uid int32) *remote.Token {
	t.Helper()
	tok := remote.NewToken(pid, uid, "com.example.app")
	_, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{
		Name:       fmt.Sprintf("lock_%d", pid),
		BundleName: "com.example.app",
		Type:       typ,
		TimeoutMs:  -1,
		Pid:        pid,
		Uid:        uid,
	})
	require.NoError(t, err)
	return tok
}

func TestInit(t *testing.T) {
	t.Run("requires action", func(t *testing.T) {
		mgr := runninglock.New(runninglock.Config{})
		assert.ErrorIs(t, mgr.Init(), runninglock.ErrNoAction)
	})

	t.Run("create before init", func(t *testing.T) {
		mgr := runninglock.New(runninglock.Config{Action: action.NewSoftLocks()})
		_, err := mgr.CreateRunningLock(remote.NewToken(1, 1, "a"), model.RunningLockParam{Type: model.LockScreen})
		assert.ErrorIs(t, err, runninglock.ErrNotInitialized)
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, model.LockScreen, 100, 1000)
		require.NoError(t, f.mgr.Init())
		assert.Equal(t, uint32(1), f.mgr.GetRunningLockNum(model.LockButt))
	})
}

func TestScreenLockLifecycle(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockScreen, 100, 1000)

	require.NoError(t, f.mgr.Lock(tok, -1))
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockScreen))
	assert.True(t, f.mgr.IsUsed(tok))
	assert.True(t, f.mgr.ExistValidRunningLock())

	require.NoError(t, f.mgr.UnLock(tok))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))
	assert.False(t, f.mgr.IsUsed(tok))

	assert.True(t, f.mgr.ReleaseLock(tok))
	assert.False(t, f.mgr.ReleaseLock(tok))
	assert.Equal(t, uint32(0), f.mgr.GetRunningLockNum(model.LockButt))
	assert.Equal(t, 0, tok.Recipients())
}

func TestReleaseUnlocksHeldLock(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockBackgroundAudio, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, -1))
	require.True(t, f.locks.Held(action.LockTag(model.LockBackgroundAudio)))

	assert.True(t, f.mgr.ReleaseLock(tok))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundAudio))
	assert.False(t, f.locks.Held(action.LockTag(model.LockBackgroundAudio)))

	assert.False(t, f.mgr.ReleaseLock(tok))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundAudio))
}

func TestCreateRunningLock(t *testing.T) {
	f := newFixture(t)

	t.Run("invalid type", func(t *testing.T) {
		_, err := f.mgr.CreateRunningLock(remote.NewToken(1, 1, "a"), model.RunningLockParam{Type: model.LockButt})
		assert.ErrorIs(t, err, runninglock.ErrInvalidType)
		_, err = f.mgr.CreateRunningLock(remote.NewToken(1, 1, "a"), model.RunningLockParam{Type: 7})
		assert.ErrorIs(t, err, runninglock.ErrInvalidType)
	})

	t.Run("nil token", func(t *testing.T) {
		_, err := f.mgr.CreateRunningLock(nil, model.RunningLockParam{Type: model.LockScreen})
		assert.ErrorIs(t, err, runninglock.ErrInvalidToken)
	})

	t.Run("dead token", func(t *testing.T) {
		tok := remote.NewToken(1, 1, "a")
		tok.Kill()
		_, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockScreen})
		assert.ErrorIs(t, err, runninglock.ErrInvalidToken)
		_, ok := f.mgr.Record(tok)
		assert.False(t, ok)
	})

	t.Run("idempotent per token", func(t *testing.T) {
		tok := remote.NewToken(5, 5, "a")
		first, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{Name: "first", Type: model.LockScreen, Pid: 5, Uid: 5})
		require.NoError(t, err)
		second, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{Name: "second", Type: model.LockBackgroundTask, Pid: 5, Uid: 5})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "first", second.Name)
		assert.Equal(t, runninglock.LockID(tok), second.LockID)
		assert.Equal(t, 1, tok.Recipients())
	})

	t.Run("explicit lock id kept", func(t *testing.T) {
		tok := remote.NewToken(6, 6, "a")
		info, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{LockID: 42, Type: model.LockScreen})
		require.NoError(t, err)
		assert.Equal(t, uint64(42), info.LockID)
	})
}

func TestLockErrors(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockScreen, 100, 1000)

	assert.ErrorIs(t, f.mgr.Lock(remote.NewToken(1, 1, "x"), -1), runninglock.ErrNotFound)
	assert.ErrorIs(t, f.mgr.UnLock(remote.NewToken(1, 1, "x")), runninglock.ErrNotFound)
	assert.ErrorIs(t, f.mgr.UnLock(tok), runninglock.ErrNotLocked)

	require.NoError(t, f.mgr.Lock(tok, -1))
	assert.ErrorIs(t, f.mgr.Lock(tok, -1), runninglock.ErrAlreadyLocked)
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockScreen))
}

func TestCounterEdgeTriggering(t *testing.T) {
	backend := actionmocks.NewMockRunningLockAction(t)
	tag := action.LockTag(model.LockBackgroundAudio)
	backend.EXPECT().Lock(model.LockBackgroundAudio, tag).Return(nil).Once()
	backend.EXPECT().Unlock(model.LockBackgroundAudio, tag).Return(nil).Once()

	mgr := runninglock.New(runninglock.Config{Action: backend})
	require.NoError(t, mgr.Init())
	t.Cleanup(mgr.Close)

	var toks []*remote.Token
	for i := range 3 {
		tok := remote.NewToken(int32(100+i), 1000, "audio")
		_, err := mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockBackgroundAudio, Pid: int32(100 + i), Uid: 1000, TimeoutMs: -1})
		require.NoError(t, err)
		require.NoError(t, mgr.Lock(tok, -1))
		toks = append(toks, tok)
	}
	assert.Equal(t, uint32(3), mgr.ValidRunningLockNum(model.LockBackgroundAudio))

	for _, tok := range toks {
		require.NoError(t, mgr.UnLock(tok))
	}
	assert.Equal(t, uint32(0), mgr.ValidRunningLockNum(model.LockBackgroundAudio))
}

func TestActivationFailureRollsBack(t *testing.T) {
	backend := actionmocks.NewMockRunningLockAction(t)
	backend.EXPECT().Lock(model.LockBackgroundSport, action.LockTag(model.LockBackgroundSport)).
		Return(errors.New("wakelock refused")).Once()

	mgr := runninglock.New(runninglock.Config{Action: backend})
	require.NoError(t, mgr.Init())
	t.Cleanup(mgr.Close)

	tok := remote.NewToken(100, 1000, "sport")
	_, err := mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockBackgroundSport, Pid: 100, Uid: 1000})
	require.NoError(t, err)

	assert.Error(t, mgr.Lock(tok, -1))
	assert.Equal(t, uint32(0), mgr.ValidRunningLockNum(model.LockBackgroundSport))
	assert.False(t, mgr.IsUsed(tok))
	info, _ := mgr.Record(tok)
	assert.Equal(t, model.LockStateDisable, info.State)
}

func TestDeactivationFailure(t *testing.T) {
	tag := action.LockTag(model.LockBackgroundTask)
	newMgr := func(t *testing.T, backend *actionmocks.MockRunningLockAction) *runninglock.Manager {
		mgr := runninglock.New(runninglock.Config{Action: backend})
		require.NoError(t, mgr.Init())
		t.Cleanup(mgr.Close)
		return mgr
	}
	lock := func(t *testing.T, mgr *runninglock.Manager, pid int32) *remote.Token {
		tok := remote.NewToken(pid, 1000, "task")
		_, err := mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockBackgroundTask, Pid: pid, Uid: 1000, TimeoutMs: -1})
		require.NoError(t, err)
		require.NoError(t, mgr.Lock(tok, -1))
		return tok
	}

	t.Run("unlock can be retried", func(t *testing.T) {
		backend := actionmocks.NewMockRunningLockAction(t)
		backend.EXPECT().Lock(model.LockBackgroundTask, tag).Return(nil).Once()
		backend.EXPECT().Unlock(model.LockBackgroundTask, tag).Return(errors.New("busy")).Once()
		backend.EXPECT().Unlock(model.LockBackgroundTask, tag).Return(nil).Once()
		mgr := newMgr(t, backend)
		tok := lock(t, mgr, 100)

		assert.Error(t, mgr.UnLock(tok))
		assert.True(t, mgr.IsUsed(tok))
		assert.Equal(t, uint32(1), mgr.ValidRunningLockNum(model.LockBackgroundTask))

		require.NoError(t, mgr.UnLock(tok))
		assert.False(t, mgr.IsUsed(tok))
		assert.Equal(t, uint32(0), mgr.ValidRunningLockNum(model.LockBackgroundTask))
	})

	t.Run("release drops the count", func(t *testing.T) {
		backend := actionmocks.NewMockRunningLockAction(t)
		backend.EXPECT().Lock(model.LockBackgroundTask, tag).Return(nil).Once()
		backend.EXPECT().Unlock(model.LockBackgroundTask, tag).Return(errors.New("busy")).Once()
		mgr := newMgr(t, backend)
		tok := lock(t, mgr, 100)

		assert.True(t, mgr.ReleaseLock(tok))
		assert.Equal(t, uint32(0), mgr.ValidRunningLockNum(model.LockBackgroundTask))
		assert.False(t, mgr.ExistValidRunningLock())
		assert.Equal(t, uint32(0), mgr.GetRunningLockNum(model.LockButt))

		// The backend lock left behind is reused and released by the next owner.
		backend.EXPECT().Unlock(model.LockBackgroundTask, tag).Return(nil).Once()
		next := lock(t, mgr, 101)
		assert.Equal(t, uint32(1), mgr.ValidRunningLockNum(model.LockBackgroundTask))
		require.NoError(t, mgr.UnLock(next))
		assert.Equal(t, uint32(0), mgr.ValidRunningLockNum(model.LockBackgroundTask))
	})

	t.Run("owner death drops the count", func(t *testing.T) {
		backend := actionmocks.NewMockRunningLockAction(t)
		backend.EXPECT().Lock(model.LockBackgroundTask, tag).Return(nil).Once()
		backend.EXPECT().Unlock(model.LockBackgroundTask, tag).Return(errors.New("busy")).Once()
		mgr := newMgr(t, backend)
		tok := lock(t, mgr, 100)

		tok.Kill()
		assert.Equal(t, uint32(0), mgr.ValidRunningLockNum(model.LockBackgroundTask))
		assert.Equal(t, uint32(0), mgr.GetRunningLockNum(model.LockButt))
	})
}

func TestProxyRunningLock(t *testing.T) {
	t.Run("suppress and restore", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockScreen, 100, 1000)
		require.NoError(t, f.mgr.Lock(tok, -1))

		require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))
		assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))
		info, _ := f.mgr.Record(tok)
		assert.Equal(t, model.LockStateProxied, info.State)
		assert.True(t, info.NeedRestore)

		require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
		assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockScreen))
		assert.True(t, f.mgr.IsUsed(tok))
	})

	t.Run("nested calls are reversible", func(t *testing.T) {
		f := newFixture(t)
		held := f.create(t, model.LockBackgroundNavigation, 100, 1000)
		idle := f.create(t, model.LockBackgroundNavigation, 100, 1000)
		other := f.create(t, model.LockBackgroundNavigation, 200, 2000)
		require.NoError(t, f.mgr.Lock(held, -1))
		require.NoError(t, f.mgr.Lock(other, -1))
		before := []bool{f.mgr.IsUsed(held), f.mgr.IsUsed(idle), f.mgr.IsUsed(other)}

		for range 3 {
			require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))
		}
		assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockBackgroundNavigation))
		for range 2 {
			require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
			assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockBackgroundNavigation))
		}
		require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))

		after := []bool{f.mgr.IsUsed(held), f.mgr.IsUsed(idle), f.mgr.IsUsed(other)}
		assert.Equal(t, before, after)
		assert.Equal(t, uint32(2), f.mgr.ValidRunningLockNum(model.LockBackgroundNavigation))
		assert.True(t, f.locks.Held(action.LockTag(model.LockBackgroundNavigation)))
	})

	t.Run("unmatched unproxy is ignored", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockScreen, 100, 1000)
		require.NoError(t, f.mgr.Lock(tok, -1))
		require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
		assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockScreen))
	})

	t.Run("invalid pid", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.mgr.ProxyRunningLock(true, 0, 1000), runninglock.ErrInvalidPid)
		assert.ErrorIs(t, f.mgr.ProxyRunningLock(true, -5, 1000), runninglock.ErrInvalidPid)
	})

	t.Run("lock while proxied is kept", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockScreen, 100, 1000)
		require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))

		assert.ErrorIs(t, f.mgr.Lock(tok, -1), runninglock.ErrProxied)
		assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))

		require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
		assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockScreen))
	})

	t.Run("unlock while proxied drops the request", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockScreen, 100, 1000)
		require.NoError(t, f.mgr.Lock(tok, -1))
		require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))

		require.NoError(t, f.mgr.UnLock(tok))
		assert.ErrorIs(t, f.mgr.UnLock(tok), runninglock.ErrNotLocked)

		require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
		assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))
		info, _ := f.mgr.Record(tok)
		assert.Equal(t, model.LockStateDisable, info.State)
	})

	t.Run("release while proxied", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockScreen, 100, 1000)
		require.NoError(t, f.mgr.Lock(tok, -1))
		require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))

		assert.True(t, f.mgr.ReleaseLock(tok))
		require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
		assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))
	})

	t.Run("new lock of proxied process", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))
		tok := f.create(t, model.LockScreen, 100, 1000)
		info, _ := f.mgr.Record(tok)
		assert.Equal(t, model.LockStateProxied, info.State)
	})

	t.Run("proximity locks are not proxied", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockProximityScreenControl, 100, 1000)
		require.NoError(t, f.mgr.Lock(tok, -1))
		require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))
		assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockProximityScreenControl))
	})

	t.Run("batch", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, model.LockScreen, 100, 1000)
		b := f.create(t, model.LockScreen, 200, 2000)
		require.NoError(t, f.mgr.Lock(a, -1))
		require.NoError(t, f.mgr.Lock(b, -1))

		procs := []runninglock.Process{{Pid: 100, Uid: 1000}, {Pid: 200, Uid: 2000}}
		require.NoError(t, f.mgr.ProxyRunningLocks(true, procs))
		assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))

		err := f.mgr.ProxyRunningLocks(false, append(procs, runninglock.Process{Pid: 0, Uid: 1}))
		assert.ErrorIs(t, err, runninglock.ErrInvalidPid)
		assert.Equal(t, uint32(2), f.mgr.ValidRunningLockNum(model.LockScreen))
	})
}

func TestWorkSourceProxy(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockBackgroundTask, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, -1))
	require.NoError(t, f.mgr.UpdateWorkSource(tok, map[int32]string{2001: "com.a", 2002: "com.b"}))

	info, _ := f.mgr.Record(tok)
	assert.Equal(t, "com.a com.b", info.BundleName)

	require.NoError(t, f.mgr.ProxyRunningLock(true, 500, 2001))
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))

	require.NoError(t, f.mgr.ProxyRunningLock(true, 501, 2002))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))

	require.NoError(t, f.mgr.ProxyRunningLock(false, 500, 2001))
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))

	require.NoError(t, f.mgr.ProxyRunningLock(false, 501, 2002))
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))

	assert.ErrorIs(t, f.mgr.UpdateWorkSource(remote.NewToken(1, 1, "x"), nil), runninglock.ErrNotFound)
}

func TestResetRunningLocks(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.LockScreen, 100, 1000)
	b := f.create(t, model.LockBackgroundPhone, 200, 2000)
	require.NoError(t, f.mgr.Lock(a, -1))
	require.NoError(t, f.mgr.Lock(b, -1))
	require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))
	require.NoError(t, f.mgr.ProxyRunningLock(true, 200, 2000))
	require.NoError(t, f.mgr.ProxyRunningLock(true, 200, 2000))

	f.mgr.ResetRunningLocks()
	assert.True(t, f.mgr.IsUsed(a))
	assert.True(t, f.mgr.IsUsed(b))

	require.NoError(t, f.mgr.ProxyRunningLock(false, 200, 2000))
	assert.True(t, f.mgr.IsUsed(b))
}

func TestOwnerDeathReleasesLock(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockBackgroundAudio, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, -1))

	tok.Kill()
	assert.Equal(t, uint32(0), f.mgr.GetRunningLockNum(model.LockButt))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundAudio))
	assert.False(t, f.locks.Held(action.LockTag(model.LockBackgroundAudio)))
	assert.False(t, f.mgr.ReleaseLock(tok))
}

func TestDeathRacesRelease(t *testing.T) {
	f := newFixture(t)
	const n = 20
	toks := make([]*remote.Token, n)
	for i := range toks {
		toks[i] = f.create(t, model.LockScreen, int32(100+i), 1000)
		require.NoError(t, f.mgr.Lock(toks[i], -1))
	}

	var wg sync.WaitGroup
	for _, tok := range toks {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tok.Kill()
		}()
		go func() {
			defer wg.Done()
			f.mgr.ReleaseLock(tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(0), f.mgr.GetRunningLockNum(model.LockButt))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockScreen))
}

func TestLockTimeout(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockScreen, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, 20))
	assert.True(t, f.mgr.TimerPending(tok))

	assert.Eventually(t, func() bool {
		return f.mgr.ValidRunningLockNum(model.LockScreen) == 0
	}, time.Second, 5*time.Millisecond)

	info, ok := f.mgr.Record(tok)
	require.True(t, ok)
	assert.True(t, info.OverTime)
	assert.Equal(t, model.LockStateDisable, info.State)
	assert.Contains(t, f.events.ops(), log.LockOpTimeout)
}

func TestUnlockCancelsTimer(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockScreen, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, 1000))
	require.True(t, f.mgr.TimerPending(tok))

	require.NoError(t, f.mgr.UnLock(tok))
	assert.False(t, f.mgr.TimerPending(tok))

	require.NoError(t, f.mgr.Lock(tok, 0))
	assert.False(t, f.mgr.TimerPending(tok))
}

func TestCheckOverTime(t *testing.T) {
	f := newFixture(t)
	timed := f.create(t, model.LockScreen, 100, 1000)
	forever := f.create(t, model.LockScreen, 200, 2000)

	// Without the queue only the sweep can expire locks.
	f.mgr.Close()
	require.NoError(t, f.mgr.Lock(timed, 10))
	require.NoError(t, f.mgr.Lock(forever, -1))
	assert.Equal(t, 0, f.mgr.CheckOverTime())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, f.mgr.CheckOverTime())
	assert.False(t, f.mgr.IsUsed(timed))
	assert.True(t, f.mgr.IsUsed(forever))
	assert.Equal(t, 0, f.mgr.CheckOverTime())
}

func TestScreenLockDrivesStateMachine(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockScreen, 100, 1000)

	require.NoError(t, f.mgr.Lock(tok, -1))
	assert.Equal(t, []string{"refresh SOFTWARE true"}, f.sm.Calls())

	f.sm.reset()
	require.NoError(t, f.mgr.UnLock(tok))
	assert.Equal(t, []string{"reset-inactive"}, f.sm.Calls())

	f.sm.reset()
	f.sm.setState(model.PowerStateInactive)
	require.NoError(t, f.mgr.Lock(tok, -1))
	require.NoError(t, f.mgr.UnLock(tok))
	assert.Equal(t, []string{"refresh SOFTWARE true"}, f.sm.Calls())
}

func TestCoordinationLock(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockCoordination, 100, 1000)

	require.NoError(t, f.mgr.Lock(tok, -1))
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockCoordination))
	assert.Equal(t, uint32(1), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))
	assert.True(t, f.locks.Held(action.LockTag(model.LockBackgroundTask)))
	assert.Contains(t, f.sm.Calls(), "coordinated true")

	require.NoError(t, f.mgr.UnLock(tok))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))
	assert.False(t, f.locks.Held(action.LockTag(model.LockBackgroundTask)))
	assert.Contains(t, f.sm.Calls(), "coordinated false")

	for _, s := range []model.PowerState{model.PowerStateSleep, model.PowerStateHibernate} {
		f.sm.setState(s)
		assert.ErrorIs(t, f.mgr.Lock(tok, -1), runninglock.ErrNotAllowed, s.String())
	}
	f.sm.setState(model.PowerStateInactive)
	assert.NoError(t, f.mgr.Lock(tok, -1))
}

func TestProximity(t *testing.T) {
	t.Run("close and away", func(t *testing.T) {
		f := newFixture(t)
		tok := f.create(t, model.LockProximityScreenControl, 100, 1000)

		require.NoError(t, f.mgr.SetProximity(runninglock.ProximityClose))
		assert.Empty(t, f.sm.Calls(), "ignored while no proximity lock is held")

		require.NoError(t, f.mgr.Lock(tok, -1))
		enabled, isClose := f.mgr.ProximityState()
		assert.True(t, enabled)
		assert.False(t, isClose)

		require.NoError(t, f.mgr.SetProximity(runninglock.ProximityClose))
		require.NoError(t, f.mgr.SetProximity(runninglock.ProximityClose))
		assert.Equal(t, []string{"schedule-proximity 300ms"}, f.sm.Calls())

		f.sm.reset()
		require.NoError(t, f.mgr.SetProximity(runninglock.ProximityAway))
		assert.Equal(t, []string{"cancel-proximity", "set-state AWAKE PROXIMITY true"}, f.sm.Calls())

		f.sm.reset()
		require.NoError(t, f.mgr.UnLock(tok))
		assert.Equal(t, []string{"cancel-proximity", "set-state AWAKE RUNNING_LOCK false"}, f.sm.Calls())
		enabled, _ = f.mgr.ProximityState()
		assert.False(t, enabled)
	})

	t.Run("background in-call delay", func(t *testing.T) {
		sm := &fakeStateMachine{state: model.PowerStateAwake}
		mgr := runninglock.New(runninglock.Config{
			Action:       action.NewSoftLocks(),
			StateMachine: sm,
			IsForeground: func(bundle string) bool {
				assert.Equal(t, runninglock.InCallBundleName, bundle)
				return false
			},
		})
		require.NoError(t, mgr.Init())
		t.Cleanup(mgr.Close)

		tok := remote.NewToken(100, 1000, "call")
		_, err := mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockProximityScreenControl, Pid: 100, Uid: 1000})
		require.NoError(t, err)
		require.NoError(t, mgr.Lock(tok, -1))
		require.NoError(t, mgr.SetProximity(runninglock.ProximityClose))
		assert.Equal(t, []string{"schedule-proximity 800ms"}, sm.Calls())
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.mgr.SetProximity(runninglock.ProximityStatus(9)), runninglock.ErrInvalidStatus)
	})
}

func TestChangeCallback(t *testing.T) {
	f := newFixture(t)
	tok := remote.NewToken(100, 1000, "app")
	_, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{
		Name:       "music_player_1",
		BundleName: "com.example.music",
		Type:       model.LockBackgroundAudio,
		Pid:        100,
		Uid:        1000,
	})
	require.NoError(t, err)

	require.NoError(t, f.mgr.Lock(tok, -1))
	require.NoError(t, f.mgr.UnLock(tok))

	msgs := f.cb.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, runninglock.TagAdd, msgs[0].Tag)
	assert.Equal(t, runninglock.TagRemove, msgs[1].Tag)
	assert.Equal(t, "music_player", msgs[0].Name)
	assert.Equal(t, runninglock.LockID(tok), msgs[0].LockID)

	t.Run("generic background is silent", func(t *testing.T) {
		before := len(f.cb.Messages())
		bg := f.create(t, model.LockBackground, 300, 3000)
		require.NoError(t, f.mgr.Lock(bg, -1))
		assert.Len(t, f.cb.Messages(), before)
	})

	t.Run("unregister", func(t *testing.T) {
		f.mgr.UnRegisterRunningLockCallback()
		before := len(f.cb.Messages())
		require.NoError(t, f.mgr.Lock(tok, -1))
		assert.Len(t, f.cb.Messages(), before)
	})
}

func TestLockMessageString(t *testing.T) {
	msg := runninglock.LockMessage{
		LockID:     7,
		Pid:        100,
		Uid:        1000,
		Type:       model.LockBackgroundAudio,
		Name:       "player",
		BundleName: "com.example.music",
		Tag:        runninglock.TagAdd,
		Timestamp:  time.UnixMilli(1700000000123),
	}
	assert.Equal(t,
		"LOCKID=7 PID=100 UID=1000 TYPE=9 NAME=player BUNDLENAME=com.example.music TAG=RUNNINGLOCK_ADD TIMESTAMP=1700000000123",
		msg.String())
}

func TestLockEvents(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockScreen, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, -1))
	require.NoError(t, f.mgr.ProxyRunningLock(true, 100, 1000))
	require.NoError(t, f.mgr.ProxyRunningLock(false, 100, 1000))
	require.NoError(t, f.mgr.UnLock(tok))

	assert.Equal(t, []log.LockOp{log.LockOpAdd, log.LockOpProxy, log.LockOpUnproxy, log.LockOpRemove}, f.events.ops())

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	for _, ev := range f.events.events {
		assert.Equal(t, log.ComponentRunningLock, ev.Component)
		assert.Equal(t, log.CategoryLock, ev.Category)
		assert.Equal(t, "test-session", ev.SessionID)
	}
}

func TestQueryRunningLockLists(t *testing.T) {
	f := newFixture(t)
	screen := f.create(t, model.LockScreen, 100, 1000)
	phone := f.create(t, model.LockBackgroundPhone, 200, 2000)
	prox := f.create(t, model.LockProximityScreenControl, 300, 3000)
	f.create(t, model.LockScreen, 400, 4000)
	for _, tok := range []*remote.Token{screen, phone, prox} {
		require.NoError(t, f.mgr.Lock(tok, -1))
	}

	lists := f.mgr.QueryRunningLockLists()
	require.Len(t, lists, 2)
	assert.Equal(t, model.LockScreen, lists["lock_100"].Type)
	assert.Equal(t, int32(2000), lists["lock_200"].Uid)
}

func TestEnableMock(t *testing.T) {
	f := newFixture(t)
	tok := f.create(t, model.LockBackgroundAudio, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, -1))
	require.NoError(t, f.mgr.ProxyRunningLock(true, 200, 2000))

	replacement := action.NewSoftLocks()
	f.mgr.EnableMock(replacement)

	assert.Equal(t, uint32(0), f.mgr.GetRunningLockNum(model.LockButt))
	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundAudio))
	assert.Equal(t, 0, tok.Recipients())

	next := f.create(t, model.LockBackgroundAudio, 200, 2000)
	require.NoError(t, f.mgr.Lock(next, -1))
	assert.True(t, f.mgr.IsUsed(next), "proxies are cleared")
	assert.True(t, replacement.Held(action.LockTag(model.LockBackgroundAudio)))
}

func TestDumpInfo(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.mgr.DumpInfo(), "Lock List is Empty.")

	tok := f.create(t, model.LockScreen, 100, 1000)
	require.NoError(t, f.mgr.Lock(tok, -1))
	require.NoError(t, f.mgr.UpdateWorkSource(tok, map[int32]string{2001: "com.a"}))

	dump := f.mgr.DumpInfo()
	assert.True(t, strings.HasPrefix(dump, "RUNNING LOCK DUMP:\n"))
	assert.Contains(t, dump, "totalSize=1 validSize=1")
	assert.Contains(t, dump, "  SCREEN: 1\n")
	assert.Contains(t, dump, "type=SCREEN name=lock_100 uid=1000 pid=100 state=ENABLE overTime=false")
	assert.Contains(t, dump, "pid_uid=100_1000 depth=0 lock_cnt=1")
	assert.Contains(t, dump, "appuid=2001********bundleName=com.a********proxyState=0")
	assert.Contains(t, dump, "Proximity: Enabled=false Status=false")
}

func TestConcurrentLocking(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := remote.NewToken(int32(100+i), 1000, "worker")
			_, err := f.mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockBackgroundTask, Pid: int32(100 + i), Uid: 1000})
			assert.NoError(t, err)
			for range 20 {
				assert.NoError(t, f.mgr.Lock(tok, -1))
				_ = f.mgr.ProxyRunningLock(true, int32(100+i), 1000)
				_ = f.mgr.ProxyRunningLock(false, int32(100+i), 1000)
				assert.NoError(t, f.mgr.UnLock(tok))
			}
			assert.True(t, f.mgr.ReleaseLock(tok))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(0), f.mgr.ValidRunningLockNum(model.LockBackgroundTask))
	assert.False(t, f.locks.Held(action.LockTag(model.LockBackgroundTask)))
}

// The state machine reads lock counts back from the manager while the
// manager drives it, so both directions run here without a fake.
func TestStateMachineIntegration(t *testing.T) {
	device := action.NewSoftDevice()
	sm := statemachine.New(statemachine.Config{Action: device})
	require.NoError(t, sm.Init())
	t.Cleanup(sm.Close)

	mgr := runninglock.New(runninglock.Config{Action: action.NewSoftLocks(), StateMachine: sm})
	require.NoError(t, mgr.Init())
	t.Cleanup(mgr.Close)
	sm.SetLockCounter(mgr)
	sm.InitState()
	require.Equal(t, model.PowerStateAwake, sm.State())

	tok := remote.NewToken(100, 1000, "video")
	_, err := mgr.CreateRunningLock(tok, model.RunningLockParam{Type: model.LockScreen, Pid: 100, Uid: 1000})
	require.NoError(t, err)
	require.NoError(t, mgr.Lock(tok, -1))

	assert.Equal(t, model.TransitLocking, sm.Transit(model.PowerStateInactive, model.ReasonTimeout, false))
	assert.Equal(t, model.PowerStateAwake, sm.State())

	require.NoError(t, mgr.ProxyRunningLock(true, 100, 1000))
	assert.Equal(t, model.TransitSuccess, sm.Transit(model.PowerStateInactive, model.ReasonTimeout, false))
	require.NoError(t, mgr.ProxyRunningLock(false, 100, 1000))
	sm.SetState(model.PowerStateAwake, model.ReasonApplication, true)

	require.NoError(t, mgr.UnLock(tok))
	assert.Equal(t, model.TransitSuccess, sm.Transit(model.PowerStateInactive, model.ReasonTimeout, false))
	assert.Equal(t, model.PowerStateInactive, sm.State())

	coord := remote.NewToken(200, 2000, "cast")
	_, err = mgr.CreateRunningLock(coord, model.RunningLockParam{Type: model.LockCoordination, Pid: 200, Uid: 2000})
	require.NoError(t, err)
	require.NoError(t, mgr.Lock(coord, -1))
	assert.True(t, device.Coordinated())
	assert.False(t, sm.SetState(model.PowerStateSleep, model.ReasonTimeout, false))
	require.NoError(t, mgr.UnLock(coord))
	assert.False(t, device.Coordinated())
}
