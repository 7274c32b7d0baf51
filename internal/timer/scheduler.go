// Package timer implements the timed advancement engine: a scheduler
// abstraction for repeating callbacks and the per-session cooking clock
// built on top of it.
package timer

import (
	"sync"
	"time"
)

// Scheduler schedules a repeating callback and returns a handle that
// cancels it. The callback reports whether it wants to keep running;
// returning false releases the timer from inside the callback. The stop
// function cancels from outside: it must be safe to call more than once,
// and once it returns the callback never runs again. Never call stop from
// inside the callback; return false instead.
type Scheduler interface {
	Every(interval time.Duration, fn func() bool) (stop func())
}

// Wall drives callbacks from real wall-clock tickers. The zero value is
// ready to use.
type Wall struct{}

// Every runs fn on its own goroutine every interval until fn returns false
// or stop is called. Each invocation runs under a per-task lock that stop
// also acquires, so stop does not return while a callback is in flight.
func (Wall) Every(interval time.Duration, fn func() bool) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	var mu sync.Mutex
	stopped := false

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				mu.Lock()
				if stopped {
					mu.Unlock()
					return
				}
				keep := fn()
				if !keep {
					stopped = true
				}
				mu.Unlock()
				if !keep {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
		once.Do(func() { close(done) })
	}
}

// Manual is a Scheduler for tests. Callbacks fire only when the test calls
// Advance, on the caller's goroutine, so tests never sleep on wall-clock
// ticks.
type Manual struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	interval time.Duration
	fn       func() bool
	elapsed  time.Duration
	stopped  bool
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Every registers fn to fire once per interval of simulated time.
func (m *Manual) Every(interval time.Duration, fn func() bool) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTask{interval: interval, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.stopped = true
	}
}

// Advance moves simulated time forward by d, firing each registered
// callback as many times as its interval fits. Callbacks registered during
// an Advance start accumulating time on the next call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	tasks := make([]*manualTask, len(m.tasks))
	copy(tasks, m.tasks)
	m.mu.Unlock()

	for _, t := range tasks {
		m.mu.Lock()
		if t.stopped {
			m.mu.Unlock()
			continue
		}
		t.elapsed += d
		fires := 0
		for t.elapsed >= t.interval {
			t.elapsed -= t.interval
			fires++
		}
		m.mu.Unlock()

		for i := 0; i < fires; i++ {
			m.mu.Lock()
			stopped := t.stopped
			m.mu.Unlock()
			if stopped {
				break
			}
			if !t.fn() {
				m.mu.Lock()
				t.stopped = true
				m.mu.Unlock()
				break
			}
		}
	}
}

// Active returns the number of registered callbacks that have not been
// stopped. Useful for asserting that shutdown released every timer.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}
