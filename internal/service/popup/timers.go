// internal/service/popup/timers.go
package popup

import (
	"sync"
	"time"

	"bakery-popup/internal/pkg/clock"
)

// timerArena owns every timer of one popup session so they can be released
// together. It is not safe for concurrent use; Session guards it with its
// own mutex.
type timerArena struct {
	clock   clock.Clock
	handles []clock.Timer
}

func newTimerArena(c clock.Clock) *timerArena {
	return &timerArena{clock: c}
}

// After schedules a one-shot callback.
func (a *timerArena) After(d time.Duration, f func()) {
	a.handles = append(a.handles, a.clock.AfterFunc(d, f))
}

// Every schedules f every d until the arena is released.
func (a *timerArena) Every(d time.Duration, f func()) {
	t := &repeatingTimer{clock: a.clock, interval: d, fire: f}
	t.arm()
	a.handles = append(a.handles, t)
}

// Live is the number of handles held.
func (a *timerArena) Live() int {
	return len(a.handles)
}

// ReleaseAll stops every handle.
func (a *timerArena) ReleaseAll() {
	for _, h := range a.handles {
		h.Stop()
	}
	a.handles = nil
}

type repeatingTimer struct {
	clock    clock.Clock
	interval time.Duration
	fire     func()

	mu      sync.Mutex
	current clock.Timer
	stopped bool
}

func (t *repeatingTimer) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = t.clock.AfterFunc(t.interval, t.run)
}

func (t *repeatingTimer) run() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.current = t.clock.AfterFunc(t.interval, t.run)
	t.mu.Unlock()

	t.fire()
}

func (t *repeatingTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	return t.current.Stop()
}
