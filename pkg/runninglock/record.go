package runninglock

import (
	"encoding/binary"

	"github.com/powerpolicy/powermgr-go/pkg/model"
	"github.com/powerpolicy/powermgr-go/pkg/remote"
	"golang.org/x/crypto/blake2b"
)

// Record is the manager's entry for one token.
type Record struct {
	token *remote.Token
	param model.RunningLockParam
	state model.RunningLockState

	// needRestore is the caller's lock intent while the record is proxied.
	needRestore bool
	overTime    bool
	lockTimeMs  int64
}

func newRecord(tok *remote.Token, param model.RunningLockParam) *Record {
	if param.LockID == 0 {
		param.LockID = LockID(tok)
	}
	return &Record{
		token: tok,
		param: param,
		state: model.LockStateDisable,
	}
}

func (r *Record) enabled() bool { return r.state == model.LockStateEnable }
func (r *Record) proxied() bool { return r.state == model.LockStateProxied }
func (r *Record) typ() model.RunningLockType { return r.param.Type }

// wantsLock reports whether the caller currently asks for the lock,
// counted or not.
func (r *Record) wantsLock() bool {
	switch r.state {
	case model.LockStateEnable:
		return true
	case model.LockStateProxied, model.LockStateUnproxiedRestore:
		return r.needRestore
	default:
		return false
	}
}

func (r *Record) info() RecordInfo {
	return RecordInfo{
		LockID:      r.param.LockID,
		Name:        r.param.Name,
		BundleName:  r.param.BundleName,
		Type:        r.param.Type,
		Pid:         r.param.Pid,
		Uid:         r.param.Uid,
		TimeoutMs:   r.param.TimeoutMs,
		State:       r.state,
		NeedRestore: r.needRestore,
		OverTime:    r.overTime,
		LockTimeMs:  r.lockTimeMs,
	}
}

// LockID derives the stable 64-bit lock id of tok.
func LockID(tok *remote.Token) uint64 {
	id := tok.ID()
	sum := blake2b.Sum256(id[:])
	return binary.LittleEndian.Uint64(sum[:8])
}
