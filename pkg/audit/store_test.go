package audit_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/action"
	"github.com/powerpolicy/powermgr-go/pkg/audit"
	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, maxRows int) *audit.Store {
	t.Helper()
	s, err := audit.Open(audit.Config{Path: filepath.Join(t.TempDir(), "audit.db"), MaxRows: maxRows})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLockAudit(t *testing.T) {
	s := openStore(t, 0)
	at := time.Date(2026, 3, 1, 12, 0, 0, 123000000, time.UTC)

	s.HandleRunningLockMessage(runninglock.LockMessage{
		LockID: 1 << 63, Pid: 100, Uid: 1000, Type: model.LockBackgroundAudio,
		Name: "player", BundleName: "com.example.music", Tag: runninglock.TagAdd, Timestamp: at,
	})
	s.HandleRunningLockMessage(runninglock.LockMessage{
		LockID: 1 << 63, Pid: 100, Uid: 1000, Type: model.LockBackgroundAudio,
		Name: "player", BundleName: "com.example.music", Tag: runninglock.TagRemove, Timestamp: at.Add(time.Second),
	})

	entries, err := s.ListLockAudit(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, runninglock.TagRemove, entries[0].Tag)
	assert.Equal(t, runninglock.TagAdd, entries[1].Tag)
	assert.Equal(t, uint64(1<<63), entries[1].LockID)
	assert.Equal(t, model.LockBackgroundAudio, entries[1].Type)
	assert.True(t, at.Equal(entries[1].At))

	limited, err := s.ListLockAudit(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTransitionAudit(t *testing.T) {
	s := openStore(t, 0)
	s.OnPowerStateChanged(model.PowerStateInactive, model.ReasonTimeout)
	require.NoError(t, s.SaveTransition(model.PowerStateAwake, model.ReasonPowerKey, time.Now()))

	entries, err := s.ListTransitions(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.PowerStateAwake, entries[0].State)
	assert.Equal(t, model.ReasonPowerKey, entries[0].Reason)
	assert.Equal(t, model.PowerStateInactive, entries[1].State)
}

func TestPrune(t *testing.T) {
	s := openStore(t, 3)
	for i := range 5 {
		require.NoError(t, s.SaveLockMessage(runninglock.LockMessage{LockID: uint64(i), Tag: runninglock.TagAdd}))
	}
	entries, err := s.ListLockAudit(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(4), entries[0].LockID)
	assert.Equal(t, uint64(2), entries[2].LockID)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := audit.Open(audit.Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.SaveTransition(model.PowerStateSleep, model.ReasonTimeout, time.Now()))
	require.NoError(t, s.Close())

	s, err = audit.Open(audit.Config{Path: path})
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.ListTransitions(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClosed(t *testing.T) {
	s := openStore(t, 0)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.SaveTransition(model.PowerStateAwake, model.ReasonInit, time.Now()), audit.ErrClosed)
	_, err := s.ListLockAudit(0)
	assert.ErrorIs(t, err, audit.ErrClosed)
}

func TestRecordsManagerMessages(t *testing.T) {
	s, err := audit.Open(audit.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	mgr := runninglock.New(runninglock.Config{Action: action.NewSoftLocks(), Callback: s})
	require.NoError(t, mgr.Init())
	t.Cleanup(mgr.Close)

	tok := remote.NewToken(10, 20, "nav")
	_, err = mgr.CreateRunningLock(tok, model.RunningLockParam{Name: "nav_2", Type: model.LockBackgroundNavigation, Pid: 10, Uid: 20})
	require.NoError(t, err)
	require.NoError(t, mgr.Lock(tok, -1))
	require.NoError(t, mgr.UnLock(tok))

	entries, err := s.ListLockAudit(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "nav", entries[0].Name)
	assert.Equal(t, runninglock.LockID(tok), entries[0].LockID)
}
