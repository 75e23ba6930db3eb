// Package schedule provides a cancellable, re-armable delayed task.
//
// A Task runs a function once after a delay. Arming an armed task replaces
// the pending run; Cancel drops it. Each arm carries a generation number so
// a timer that fires after being cancelled or re-armed is ignored.
package schedule

import (
	"sync"
	"time"
)

// Timer is a stoppable pending call.
type Timer interface {
	// Stop prevents the call from running. It returns false if the call
	// already ran or was stopped.
	Stop() bool
}

// Clock creates timers. It exists so tests can control time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

// Task is a single-slot delayed function.
type Task struct {
	clock Clock

	mu       sync.Mutex
	timer    Timer
	gen      uint64
	deadline time.Time
}

// NewTask creates an idle task. A nil clock uses RealClock.
func NewTask(clock Clock) *Task {
	if clock == nil {
		clock = RealClock()
	}
	return &Task{clock: clock}
}

// Arm schedules fn to run after d, replacing any pending run.
func (t *Task) Arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.deadline = t.clock.Now().Add(d)
	t.timer = t.clock.AfterFunc(d, func() {
		if !t.claim(gen) {
			return
		}
		fn()
	})
}

// Cancel drops the pending run. It reports whether a run was pending.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	t.deadline = time.Time{}
	return true
}

// Pending reports whether a run is armed.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Deadline returns when the pending run fires, or the zero time.
func (t *Task) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}

// claim moves an armed task to idle if gen is still current.
func (t *Task) claim(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || t.timer == nil {
		return false
	}
	t.timer = nil
	t.deadline = time.Time{}
	return true
}
