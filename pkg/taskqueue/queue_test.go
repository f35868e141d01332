package taskqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueFires(t *testing.T) {
	q := New[string]()

	done := make(chan struct{})
	if err := q.Set("a", 10*time.Millisecond, func() { close(done) }); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
	}

	if q.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after fire", q.Count())
	}
	if q.Pending("a") {
		t.Error("Pending() = true after fire")
	}
}

func TestQueueInvalidDelay(t *testing.T) {
	q := New[int]()
	if err := q.Set(1, -time.Second, func() {}); err != ErrInvalidDelay {
		t.Errorf("Set() error = %v, want ErrInvalidDelay", err)
	}
}

func TestQueueReplace(t *testing.T) {
	q := New[int]()

	var first, second atomic.Int32
	_ = q.Set(1, 20*time.Millisecond, func() { first.Add(1) })
	_ = q.Set(1, 30*time.Millisecond, func() { second.Add(1) })

	if q.Count() != 1 {
		t.Errorf("Count() = %d, want 1", q.Count())
	}

	time.Sleep(80 * time.Millisecond)

	if first.Load() != 0 {
		t.Errorf("replaced task fired %d times", first.Load())
	}
	if second.Load() != 1 {
		t.Errorf("replacement fired %d times, want 1", second.Load())
	}
}

func TestQueueCancel(t *testing.T) {
	q := New[int]()

	var fired atomic.Bool
	_ = q.Set(1, 20*time.Millisecond, func() { fired.Store(true) })

	if err := q.Cancel(1); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Error("cancelled task fired")
	}
}

func TestQueueCancelMissing(t *testing.T) {
	q := New[int]()
	if err := q.Cancel(42); err != ErrTaskNotFound {
		t.Errorf("Cancel() error = %v, want ErrTaskNotFound", err)
	}
}

func TestQueueCancelAfterFire(t *testing.T) {
	q := New[int]()

	done := make(chan struct{})
	_ = q.Set(1, time.Millisecond, func() { close(done) })
	<-done

	if err := q.Cancel(1); err != ErrTaskNotFound {
		t.Errorf("Cancel() after fire error = %v, want ErrTaskNotFound", err)
	}
}

func TestQueueStaleGenerationDropped(t *testing.T) {
	q := New[int]()

	var fired atomic.Int32
	_ = q.Set(1, time.Hour, func() { fired.Add(1) })
	stale := q.tasks[1].gen
	_ = q.Set(1, time.Hour, func() { fired.Add(1) })

	// Simulate the old timer firing after it was replaced.
	q.fire(1, stale)

	if fired.Load() != 0 {
		t.Errorf("stale fire ran callback")
	}
	if !q.Pending(1) {
		t.Error("stale fire removed the current task")
	}
	q.CancelAll()
}

func TestQueueCancelFunc(t *testing.T) {
	q := New[string]()
	_ = q.Set("lock/1", time.Hour, func() {})
	_ = q.Set("lock/2", time.Hour, func() {})
	_ = q.Set("state/x", time.Hour, func() {})

	n := q.CancelFunc(func(k string) bool { return k[:4] == "lock" })
	if n != 2 {
		t.Errorf("CancelFunc() = %d, want 2", n)
	}
	if q.Count() != 1 {
		t.Errorf("Count() = %d, want 1", q.Count())
	}
	q.CancelAll()
}

func TestQueueGet(t *testing.T) {
	q := New[int]()
	_ = q.Set(7, time.Minute, func() {})
	defer q.CancelAll()

	task := q.Get(7)
	if task == nil {
		t.Fatal("Get() returned nil")
	}
	if task.Delay != time.Minute {
		t.Errorf("Delay = %v, want 1m", task.Delay)
	}
	if r := task.Remaining(); r <= 0 || r > time.Minute {
		t.Errorf("Remaining() = %v", r)
	}
	if q.Get(8) != nil {
		t.Error("Get() of missing key returned task")
	}
}

func TestQueueClose(t *testing.T) {
	q := New[int]()
	_ = q.Set(1, time.Hour, func() {})
	q.Close()

	if q.Count() != 0 {
		t.Errorf("Count() = %d after Close", q.Count())
	}
	if err := q.Set(2, time.Second, func() {}); err != ErrClosed {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
}

func TestQueueCallbackMayReenter(t *testing.T) {
	q := New[int]()

	var wg sync.WaitGroup
	wg.Add(2)
	_ = q.Set(1, time.Millisecond, func() {
		defer wg.Done()
		_ = q.Set(1, time.Millisecond, func() { wg.Done() })
	})

	waitCh := make(chan struct{})
	go func() { wg.Wait(); close(waitCh) }()

	select {
	case <-waitCh:
	case <-time.After(time.Second):
		t.Fatal("re-entrant Set deadlocked or did not fire")
	}
}
