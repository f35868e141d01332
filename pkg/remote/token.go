package remote

import (
	"sync"

	"github.com/creachadair/mds/mapset"
	"github.com/google/uuid"
)

// DeathRecipient is notified when a token's owner dies.
// Implementations must be comparable (typically a pointer).
type DeathRecipient interface {
	OnRemoteDied(t *Token)
}

// Token identifies a remote caller. Tokens are compared by pointer.
type Token struct {
	id   uuid.UUID
	pid  int32
	uid  int32
	name string

	mu         sync.Mutex
	dead       bool
	recipients mapset.Set[DeathRecipient]
}

// NewToken creates a live token for the given process.
func NewToken(pid, uid int32, name string) *Token {
	return &Token{
		id:         uuid.New(),
		pid:        pid,
		uid:        uid,
		name:       name,
		recipients: mapset.New[DeathRecipient](),
	}
}

// ID returns the token's unique identity.
func (t *Token) ID() uuid.UUID { return t.id }

// Pid returns the owning process id.
func (t *Token) Pid() int32 { return t.pid }

// Uid returns the owning user id.
func (t *Token) Uid() int32 { return t.uid }

// Name returns the caller-supplied name (bundle or process name).
func (t *Token) Name() string { return t.name }

// String returns the token identity.
func (t *Token) String() string { return t.id.String() }

// IsAlive reports whether Kill has not yet been called.
func (t *Token) IsAlive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.dead
}

// AddDeathRecipient registers r. It returns false if the token is already
// dead; r is not called in that case.
func (t *Token) AddDeathRecipient(r DeathRecipient) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return false
	}
	t.recipients.Add(r)
	return true
}

// RemoveDeathRecipient unregisters r. It returns false if r was not registered.
func (t *Token) RemoveDeathRecipient(r DeathRecipient) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.recipients.Has(r) {
		return false
	}
	delete(t.recipients, r)
	return true
}

// Recipients returns the number of registered recipients.
func (t *Token) Recipients() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.recipients)
}

// Kill marks the token dead and notifies every recipient once.
// Later calls do nothing.
func (t *Token) Kill() {
	t.mu.Lock()
	if t.dead {
		t.mu.Unlock()
		return
	}
	t.dead = true
	recipients := make([]DeathRecipient, 0, len(t.recipients))
	for r := range t.recipients {
		recipients = append(recipients, r)
	}
	clear(t.recipients)
	t.mu.Unlock()

	for _, r := range recipients {
		r.OnRemoteDied(t)
	}
}
