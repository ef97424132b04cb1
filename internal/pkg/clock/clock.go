// internal/pkg/clock/clock.go
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// Clock schedules callbacks. Production code uses Real; tests use Manual.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manual only moves when Advance is called. Callbacks run synchronously on
// the goroutine calling Advance, in due-time order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int64
	timers []*manualTimer
}

type manualTimer struct {
	clock   *Manual
	due     time.Time
	seq     int64
	f       func()
	stopped bool
	fired   bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{clock: m, due: m.now.Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of timers that are scheduled and not stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that becomes due,
// including timers scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		next.fired = true
		m.compactLocked()
		m.mu.Unlock()

		next.f()
	}
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if t.stopped || t.fired || t.due.After(target) {
			continue
		}
		due = append(due, t)
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}

func (m *Manual) compactLocked() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
