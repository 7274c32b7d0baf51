package timer

import (
	"sync"
	"time"

	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/logger"
)

// Option configures the clock.
type Option func(*Clock)

// WithScheduler replaces the wall-clock scheduler. Tests pass a Manual.
func WithScheduler(s Scheduler) Option {
	return func(c *Clock) {
		c.sched = s
	}
}

// WithTickInterval sets the countdown tick length. One second by default.
func WithTickInterval(d time.Duration) Option {
	return func(c *Clock) {
		c.tickInterval = d
	}
}

// Clock runs one countdown per cooking session, decrementing the remaining
// time every tick and advancing the session through its steps. All session
// mutation goes through the store's atomic Update, and all of a session's
// events are emitted from its single tick callback, so per-session event
// order matches the state-machine transitions.
type Clock struct {
	store        domain.SessionStore
	pub          domain.Publisher
	log          *logger.Logger
	sched        Scheduler
	tickInterval time.Duration

	mu      sync.Mutex
	running map[string]func() // session id -> countdown cancel
}

// New creates a cooking clock with the given dependencies and options.
func New(store domain.SessionStore, pub domain.Publisher, log *logger.Logger, opts ...Option) *Clock {
	c := &Clock{
		store:        store,
		pub:          pub,
		log:          log,
		sched:        Wall{},
		tickInterval: 1 * time.Second,
		running:      make(map[string]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins the countdown for a session: step 1 becomes active, its
// duration is loaded into the remaining-time counter, cooking_step_start is
// emitted, and a ticker is armed. Starting a session that already has a
// countdown replaces it, so at most one countdown exists per session.
func (c *Clock) Start(sessionID string) error {
	session, err := c.store.Get(sessionID)
	if err != nil {
		return err
	}
	if len(session.Steps) == 0 {
		return domain.Invalidf("steps", "session %s has no steps", sessionID)
	}
	if session.Status.Terminal() {
		return domain.Invalidf("session", "session %s is already %s", sessionID, session.Status)
	}

	first := session.Steps[0]
	snap, err := c.store.Update(sessionID, func(s *domain.CookingSession) {
		s.Status = domain.SessionCooking
		s.CurrentStepIndex = 1
		s.TimeRemainingSeconds = first.DurationMinutes * 60
	})
	if err != nil {
		return err
	}

	c.pub.Publish(domain.NewEvent(domain.EventCookingStepStart, domain.StepStartData{
		SessionID:            sessionID,
		Step:                 first.Index,
		Instruction:          first.Instruction,
		TimeRemainingSeconds: snap.TimeRemainingSeconds,
	}))

	// Release any prior countdown before arming the new one. stopTicker is
	// synchronous, so no old tick fires once it returns.
	c.stopTicker(sessionID)

	c.mu.Lock()
	c.running[sessionID] = c.sched.Every(c.tickInterval, func() bool {
		if c.tick(sessionID) {
			return true
		}
		c.release(sessionID)
		return false
	})
	c.mu.Unlock()

	c.log.Info("started countdown for session %s (%d steps, first=%dm)",
		sessionID, len(session.Steps), first.DurationMinutes)
	return nil
}

// Stop terminates a session early: the countdown is cancelled and the
// session is marked stopped. The record stays in the store so status
// queries keep answering for it. Idempotent on already-terminal sessions.
func (c *Clock) Stop(sessionID string) error {
	c.stopTicker(sessionID)

	_, err := c.store.Update(sessionID, func(s *domain.CookingSession) {
		if !s.Status.Terminal() {
			s.Status = domain.SessionStopped
			s.TimeRemainingSeconds = 0
		}
	})
	if err != nil {
		return err
	}

	c.log.Info("stopped session %s", sessionID)
	return nil
}

// StopAll cancels every outstanding countdown. Called on shutdown before
// the broadcaster is torn down so no timer fires into it.
func (c *Clock) StopAll() {
	c.mu.Lock()
	stops := make([]func(), 0, len(c.running))
	for id, stop := range c.running {
		stops = append(stops, stop)
		delete(c.running, id)
	}
	c.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// Running reports whether a session currently has an armed countdown.
func (c *Clock) Running(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.running[sessionID]
	return ok
}

// stopTicker cancels a session's countdown. The stop handle is invoked
// outside c.mu: a tick that is releasing itself takes c.mu, so calling
// stop under the lock would deadlock against it.
func (c *Clock) stopTicker(sessionID string) {
	c.mu.Lock()
	stop, ok := c.running[sessionID]
	if ok {
		delete(c.running, sessionID)
	}
	c.mu.Unlock()

	if ok {
		stop()
	}
}

// release drops the bookkeeping for a countdown that ended on its own.
func (c *Clock) release(sessionID string) {
	c.mu.Lock()
	delete(c.running, sessionID)
	c.mu.Unlock()
}

// tick runs one countdown cycle for a session and reports whether the
// countdown should keep running. A panicking tick (a broken observer
// payload, for instance) is logged and treated as skipped; the next tick
// proceeds normally.
func (c *Clock) tick(sessionID string) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("tick for session %s panicked: %v (skipping tick)", sessionID, r)
			keep = true
		}
	}()

	var events []domain.Event
	var finished bool

	_, err := c.store.Update(sessionID, func(s *domain.CookingSession) {
		if s.Status != domain.SessionCooking {
			finished = true
			return
		}

		if s.TimeRemainingSeconds > 0 {
			s.TimeRemainingSeconds--
		}
		remaining := s.TimeRemainingSeconds

		if remaining > 0 {
			if remaining%30 == 0 {
				events = append(events, domain.NewEvent(domain.EventTimerUpdate, domain.TimerUpdateData{
					SessionID:            sessionID,
					Step:                 s.CurrentStepIndex,
					TimeRemainingSeconds: remaining,
				}))
			}
			return
		}

		// Remaining hit zero: the active step is done. A zero-duration
		// step lands here on its very first tick.
		done := s.Steps[s.CurrentStepIndex-1]
		events = append(events, domain.NewEvent(domain.EventCookingStepComplete, domain.StepCompleteData{
			SessionID:   sessionID,
			Step:        done.Index,
			Instruction: done.Instruction,
		}))

		if s.CurrentStepIndex < len(s.Steps) {
			s.CurrentStepIndex++
			next := s.Steps[s.CurrentStepIndex-1]
			s.TimeRemainingSeconds = next.DurationMinutes * 60
			events = append(events, domain.NewEvent(domain.EventCookingStepStart, domain.StepStartData{
				SessionID:            sessionID,
				Step:                 next.Index,
				Instruction:          next.Instruction,
				TimeRemainingSeconds: s.TimeRemainingSeconds,
			}))
			return
		}

		s.Status = domain.SessionCompleted
		s.TimeRemainingSeconds = 0
		events = append(events, domain.NewEvent(domain.EventCookingComplete, domain.CookingCompleteData{
			SessionID:  sessionID,
			RecipeName: s.RecipeName,
			TotalSteps: len(s.Steps),
		}))
		finished = true
	})
	if err != nil {
		// Session removed underneath us; release the ticker.
		c.log.Warn("tick for missing session %s, releasing countdown", sessionID)
		return false
	}

	for _, ev := range events {
		c.pub.Publish(ev)
	}

	return !finished
}
