package navigation

import (
	"slices"
	"sync"
	"time"
)

// Cancel stops a scheduled callback. It reports whether the call prevented
// the callback from running.
type Cancel func() bool

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
}

// RealScheduler schedules callbacks on the wall clock with [time.AfterFunc].
type RealScheduler struct{}

// AfterFunc implements [Scheduler].
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Cancel {
	return time.AfterFunc(d, fn).Stop
}

// ManualScheduler is a deterministic [Scheduler] whose clock only moves when
// [ManualScheduler.Advance] is called. Callbacks run synchronously inside
// Advance, ordered by due time and then by scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at  time.Duration
	seq int
	fn  func()
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// AfterFunc implements [Scheduler].
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	task := &manualTask{at: m.now + max(d, 0), seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		before := len(m.tasks)
		m.tasks = slices.DeleteFunc(m.tasks, func(t *manualTask) bool { return t == task })
		return len(m.tasks) < before
	}
}

// Advance moves the clock forward by d and runs every callback that became
// due, including callbacks scheduled by other callbacks within the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *manualTask
		for _, t := range m.tasks {
			if t.at > target {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.tasks = slices.DeleteFunc(m.tasks, func(t *manualTask) bool { return t == next })
		m.mu.Unlock()

		next.fn()
	}
}

// Now returns the elapsed manual time.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of callbacks that have not run yet.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
