package taskqueue

import (
	"errors"
	"sync"
	"time"
)

// Task queue errors.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidDelay = errors.New("invalid delay")
	ErrClosed       = errors.New("queue closed")
)

// Task describes a pending delayed task.
type Task[K comparable] struct {
	// Key identifies this task.
	Key K

	// StartTime is when the task was scheduled.
	StartTime time.Time

	// Delay is how long after StartTime the task fires.
	Delay time.Duration

	fn    func()
	gen   uint64
	timer *time.Timer
}

// ExpiresAt returns when the task will fire.
func (t *Task[K]) ExpiresAt() time.Time {
	return t.StartTime.Add(t.Delay)
}

// Remaining returns the time until the task fires.
func (t *Task[K]) Remaining() time.Duration {
	remaining := t.Delay - time.Since(t.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Queue schedules keyed delayed callbacks.
type Queue[K comparable] struct {
	mu     sync.Mutex
	tasks  map[K]*Task[K]
	gen    uint64
	closed bool
}

// New creates an empty queue.
func New[K comparable]() *Queue[K] {
	return &Queue[K]{
		tasks: make(map[K]*Task[K]),
	}
}

// Set schedules fn to run after delay, replacing any pending task for key.
func (q *Queue[K]) Set(key K, delay time.Duration, fn func()) error {
	if delay < 0 {
		return ErrInvalidDelay
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if existing, ok := q.tasks[key]; ok {
		existing.timer.Stop()
	}

	q.gen++
	task := &Task[K]{
		Key:       key,
		StartTime: time.Now(),
		Delay:     delay,
		fn:        fn,
		gen:       q.gen,
	}
	gen := task.gen
	task.timer = time.AfterFunc(delay, func() {
		q.fire(key, gen)
	})
	q.tasks[key] = task
	return nil
}

// Cancel removes the pending task for key without running it.
func (q *Queue[K]) Cancel(key K) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[key]
	if !ok {
		return ErrTaskNotFound
	}
	task.timer.Stop()
	delete(q.tasks, key)
	return nil
}

// CancelAll removes every pending task.
func (q *Queue[K]) CancelAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for key, task := range q.tasks {
		task.timer.Stop()
		delete(q.tasks, key)
	}
}

// CancelFunc removes every pending task whose key matches.
func (q *Queue[K]) CancelFunc(match func(K) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for key, task := range q.tasks {
		if match(key) {
			task.timer.Stop()
			delete(q.tasks, key)
			n++
		}
	}
	return n
}

// Pending reports whether a task is scheduled for key.
func (q *Queue[K]) Pending(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.tasks[key]
	return ok
}

// Get returns a copy of the pending task for key, or nil.
func (q *Queue[K]) Get(key K) *Task[K] {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[key]
	if !ok {
		return nil
	}
	return &Task[K]{
		Key:       task.Key,
		StartTime: task.StartTime,
		Delay:     task.Delay,
	}
}

// Count returns the number of pending tasks.
func (q *Queue[K]) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close cancels every pending task and rejects further Set calls.
func (q *Queue[K]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.CancelAll()
}

// fire runs the task for key if gen is still current.
func (q *Queue[K]) fire(key K, gen uint64) {
	q.mu.Lock()

	task, ok := q.tasks[key]
	if !ok || task.gen != gen {
		q.mu.Unlock()
		return
	}
	delete(q.tasks, key)
	fn := task.fn

	q.mu.Unlock()

	// Call outside lock
	if fn != nil {
		fn()
	}
}
