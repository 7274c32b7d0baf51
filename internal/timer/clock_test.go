package timer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/logger"
	"github.com/hammamikhairi/hearth/internal/storage"
)

// recordingPub collects published events for assertions.
type recordingPub struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPub) Publish(ev domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPub) all() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPub) count(t domain.EventType) int {
	n := 0
	for _, ev := range p.all() {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func setupClock(t *testing.T) (*Clock, *storage.MemoryStore, *recordingPub, *Manual) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	pub := &recordingPub{}
	sched := NewManual()
	clock := New(store, pub, log, WithScheduler(sched))
	return clock, store, pub, sched
}

func minuteSteps(durations ...int) []domain.CookingStep {
	steps := make([]domain.CookingStep, len(durations))
	for i, d := range durations {
		steps[i] = domain.CookingStep{Index: i + 1, Instruction: "step", DurationMinutes: d}
	}
	return steps
}

func TestStartUnknownSession(t *testing.T) {
	clock, _, pub, _ := setupClock(t)

	err := clock.Start("missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.all()) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.all()))
	}
	if clock.Running("missing") {
		t.Fatal("no countdown should be armed for an unknown session")
	}
}

func TestStartActivatesFirstStep(t *testing.T) {
	clock, store, pub, _ := setupClock(t)
	store.Create("s1", "Pasta", minuteSteps(5, 8))

	if err := clock.Start("s1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	s, _ := store.Get("s1")
	if s.Status != domain.SessionCooking {
		t.Fatalf("expected cooking, got %s", s.Status)
	}
	if s.CurrentStepIndex != 1 {
		t.Fatalf("expected step index 1, got %d", s.CurrentStepIndex)
	}
	if s.TimeRemainingSeconds != 300 {
		t.Fatalf("expected 300s remaining, got %d", s.TimeRemainingSeconds)
	}

	events := pub.all()
	if len(events) != 1 || events[0].Type != domain.EventCookingStepStart {
		t.Fatalf("expected one cooking_step_start, got %+v", events)
	}
	data := events[0].Data.(domain.StepStartData)
	if data.Step != 1 || data.TimeRemainingSeconds != 300 {
		t.Fatalf("unexpected step start payload: %+v", data)
	}
	if !clock.Running("s1") {
		t.Fatal("countdown should be armed")
	}
}

func TestStepBoundaryAfterSixtyTicks(t *testing.T) {
	clock, store, pub, sched := setupClock(t)
	store.Create("s1", "Rice", minuteSteps(1, 1))
	clock.Start("s1")

	sched.Advance(60 * time.Second)

	if got := pub.count(domain.EventCookingStepComplete); got != 1 {
		t.Fatalf("expected exactly 1 step complete, got %d", got)
	}
	if got := pub.count(domain.EventCookingStepStart); got != 2 {
		t.Fatalf("expected 2 step starts (initial + step 2), got %d", got)
	}

	s, _ := store.Get("s1")
	if s.CurrentStepIndex != 2 {
		t.Fatalf("expected step index 2, got %d", s.CurrentStepIndex)
	}
	if s.TimeRemainingSeconds != 60 {
		t.Fatalf("expected remaining reset to 60, got %d", s.TimeRemainingSeconds)
	}
	if s.Status != domain.SessionCooking {
		t.Fatalf("expected still cooking, got %s", s.Status)
	}
}

func TestEventGrammarToCompletion(t *testing.T) {
	clock, store, pub, sched := setupClock(t)
	store.Create("s1", "Rice", minuteSteps(1, 1))
	clock.Start("s1")

	sched.Advance(5 * time.Minute) // well past the 2 minutes needed

	events := pub.all()
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}

	// Strip timer_update events; the remaining sequence must be
	// start(1) complete(1) start(2) complete(2) cooking_complete.
	var seq []domain.EventType
	for _, ev := range events {
		if ev.Type != domain.EventTimerUpdate {
			seq = append(seq, ev.Type)
		}
	}
	want := []domain.EventType{
		domain.EventCookingStepStart,
		domain.EventCookingStepComplete,
		domain.EventCookingStepStart,
		domain.EventCookingStepComplete,
		domain.EventCookingComplete,
	}
	if len(seq) != len(want) {
		t.Fatalf("expected %d boundary events, got %d (%v)", len(want), len(seq), seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], seq[i])
		}
	}

	if got := pub.count(domain.EventCookingComplete); got != 1 {
		t.Fatalf("expected exactly one cooking_complete, got %d", got)
	}

	s, _ := store.Get("s1")
	if s.Status != domain.SessionCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.TimeRemainingSeconds != 0 {
		t.Fatalf("expected 0 remaining, got %d", s.TimeRemainingSeconds)
	}
	if clock.Running("s1") {
		t.Fatal("countdown should be released after completion")
	}
}

func TestTimerUpdateCadence(t *testing.T) {
	clock, store, pub, sched := setupClock(t)
	store.Create("s1", "Stew", minuteSteps(2)) // 120 seconds
	clock.Start("s1")

	sched.Advance(120 * time.Second)

	// Updates fire when remaining hits 90, 60, and 30. Zero is a step
	// boundary, not a timer update.
	if got := pub.count(domain.EventTimerUpdate); got != 3 {
		t.Fatalf("expected 3 timer updates, got %d", got)
	}
	for _, ev := range pub.all() {
		if ev.Type != domain.EventTimerUpdate {
			continue
		}
		data := ev.Data.(domain.TimerUpdateData)
		if data.TimeRemainingSeconds%30 != 0 || data.TimeRemainingSeconds <= 0 {
			t.Fatalf("unexpected timer update remaining: %d", data.TimeRemainingSeconds)
		}
	}
}

func TestZeroDurationStepAdvancesImmediately(t *testing.T) {
	clock, store, pub, sched := setupClock(t)
	store.Create("s1", "Quick", minuteSteps(0, 1))
	clock.Start("s1")

	s, _ := store.Get("s1")
	if s.TimeRemainingSeconds != 0 {
		t.Fatalf("expected 0 remaining for zero-duration step, got %d", s.TimeRemainingSeconds)
	}

	// The very next tick completes step 1 and starts step 2.
	sched.Advance(1 * time.Second)

	if got := pub.count(domain.EventCookingStepComplete); got != 1 {
		t.Fatalf("expected step 1 complete after one tick, got %d completes", got)
	}
	s, _ = store.Get("s1")
	if s.CurrentStepIndex != 2 || s.TimeRemainingSeconds != 60 {
		t.Fatalf("expected step 2 with 60s remaining, got step %d / %ds", s.CurrentStepIndex, s.TimeRemainingSeconds)
	}
}

func TestAllZeroDurationsComplete(t *testing.T) {
	clock, store, pub, sched := setupClock(t)
	store.Create("s1", "Instant", minuteSteps(0, 0))
	clock.Start("s1")

	sched.Advance(2 * time.Second)

	if got := pub.count(domain.EventCookingComplete); got != 1 {
		t.Fatalf("expected completion after two ticks, got %d", got)
	}
}

func TestStopMarksSessionStopped(t *testing.T) {
	clock, store, pub, sched := setupClock(t)
	store.Create("s1", "Pasta", minuteSteps(5))
	clock.Start("s1")
	sched.Advance(10 * time.Second)

	if err := clock.Stop("s1"); err != nil {
		t.Fatalf("stop: %v", err)
	}

	s, _ := store.Get("s1")
	if s.Status != domain.SessionStopped {
		t.Fatalf("expected stopped, got %s", s.Status)
	}
	if s.TimeRemainingSeconds != 0 {
		t.Fatalf("expected 0 remaining, got %d", s.TimeRemainingSeconds)
	}
	if clock.Running("s1") {
		t.Fatal("countdown should be cancelled")
	}

	// No further ticks after cancellation is acknowledged.
	before := len(pub.all())
	sched.Advance(time.Minute)
	if after := len(pub.all()); after != before {
		t.Fatalf("events emitted after stop: %d -> %d", before, after)
	}
}

func TestStopUnknownSession(t *testing.T) {
	clock, _, _, _ := setupClock(t)

	if err := clock.Stop("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStartRejectsCompletedSession(t *testing.T) {
	clock, store, _, sched := setupClock(t)
	store.Create("s1", "Quick", minuteSteps(0))
	clock.Start("s1")
	sched.Advance(1 * time.Second)

	err := clock.Start("s1")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error restarting a completed session, got %v", err)
	}
}

func TestStopAllReleasesTimers(t *testing.T) {
	clock, store, _, sched := setupClock(t)
	store.Create("a", "A", minuteSteps(5))
	store.Create("b", "B", minuteSteps(5))
	clock.Start("a")
	clock.Start("b")

	clock.StopAll()

	if sched.Active() != 0 {
		t.Fatalf("expected all timers released, %d still active", sched.Active())
	}
}

// panickyPub panics on the first publish, then delegates to recordingPub.
type panickyPub struct {
	recordingPub
	armed bool
}

func (p *panickyPub) Publish(ev domain.Event) {
	if p.armed {
		p.armed = false
		panic("broken observer")
	}
	p.recordingPub.Publish(ev)
}

func TestTickPanicIsSkippedNotFatal(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	pub := &panickyPub{}
	sched := NewManual()
	clock := New(store, pub, log, WithScheduler(sched))

	store.Create("s1", "Stew", minuteSteps(1))
	clock.Start("s1")

	// Arm the panic so the tick that crosses the 30s mark blows up.
	pub.armed = true
	sched.Advance(30 * time.Second)

	// The countdown keeps going: later ticks still publish.
	sched.Advance(30 * time.Second)
	if got := pub.count(domain.EventCookingComplete); got != 1 {
		t.Fatalf("expected the session to complete despite a panicking tick, got %d completes", got)
	}
}
