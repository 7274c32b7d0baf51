package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWallFiresAndStops(t *testing.T) {
	var fires atomic.Int32
	stop := Wall{}.Every(10*time.Millisecond, func() bool {
		fires.Add(1)
		return true
	})

	time.Sleep(100 * time.Millisecond)
	stop()
	stop() // safe to call twice

	// stop is synchronous: once it returns, no callback is in flight and
	// none will fire again, even with a tick already buffered.
	got := fires.Load()
	if got == 0 {
		t.Fatal("expected at least one fire")
	}

	time.Sleep(50 * time.Millisecond)
	if after := fires.Load(); after != got {
		t.Fatalf("fired after stop: %d -> %d", got, after)
	}
}

func TestWallCallbackReleasesItself(t *testing.T) {
	var fires atomic.Int32
	Wall{}.Every(5*time.Millisecond, func() bool {
		return fires.Add(1) < 3
	})

	time.Sleep(100 * time.Millisecond)
	if got := fires.Load(); got != 3 {
		t.Fatalf("expected exactly 3 fires, got %d", got)
	}
}

func TestManualFiresPerInterval(t *testing.T) {
	m := NewManual()

	var fast, slow int
	m.Every(1*time.Second, func() bool { fast++; return true })
	m.Every(5*time.Second, func() bool { slow++; return true })

	m.Advance(10 * time.Second)

	if fast != 10 {
		t.Fatalf("expected 10 fast fires, got %d", fast)
	}
	if slow != 2 {
		t.Fatalf("expected 2 slow fires, got %d", slow)
	}
}

func TestManualCarriesRemainder(t *testing.T) {
	m := NewManual()

	var fires int
	m.Every(2*time.Second, func() bool { fires++; return true })

	m.Advance(3 * time.Second) // 1 fire, 1s carried
	m.Advance(1 * time.Second) // carried second completes the interval

	if fires != 2 {
		t.Fatalf("expected 2 fires, got %d", fires)
	}
}

func TestManualCallbackReleasesItself(t *testing.T) {
	m := NewManual()

	var fires int
	m.Every(1*time.Second, func() bool {
		fires++
		return fires < 3
	})

	m.Advance(10 * time.Second)

	if fires != 3 {
		t.Fatalf("expected exactly 3 fires, got %d", fires)
	}
	if m.Active() != 0 {
		t.Fatalf("expected no active tasks, got %d", m.Active())
	}
}

func TestManualStopCancelsTask(t *testing.T) {
	m := NewManual()

	var fires int
	stop := m.Every(1*time.Second, func() bool { fires++; return true })

	m.Advance(3 * time.Second)
	stop()
	m.Advance(3 * time.Second)

	if fires != 3 {
		t.Fatalf("expected 3 fires before stop, got %d", fires)
	}
	if m.Active() != 0 {
		t.Fatalf("expected no active tasks, got %d", m.Active())
	}
}
