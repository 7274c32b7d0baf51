// Package appliance simulates the physical kitchen devices: an oven
// preheat ramp and a pressure cooker cycle. Both run on their own timers,
// independent of cooking sessions, and broadcast through the same channel.
package appliance

import (
	"sync"
	"time"

	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/logger"
	"github.com/hammamikhairi/hearth/internal/timer"
)

// Validated input ranges and ramp increments.
const (
	MinOvenTemp = 50
	MaxOvenTemp = 300
	tempStep    = 10

	MinPressure  = 2
	MaxPressure  = 15
	pressureStep = 2

	ambientTemp = 20

	defaultRampInterval     = 2 * time.Second
	defaultDepressurizeWait = 10 * time.Second
)

// Option configures the simulator.
type Option func(*Simulator)

// WithScheduler replaces the wall-clock scheduler. Tests pass a Manual.
func WithScheduler(s timer.Scheduler) Option {
	return func(sim *Simulator) {
		sim.sched = s
	}
}

// WithRampInterval sets how often ramps step toward their target.
func WithRampInterval(d time.Duration) Option {
	return func(sim *Simulator) {
		sim.rampInterval = d
	}
}

// WithDepressurizeWait sets the fixed depressurization time.
func WithDepressurizeWait(d time.Duration) Option {
	return func(sim *Simulator) {
		sim.depressurizeWait = d
	}
}

// Simulator owns the oven and pressure cooker state machines. All state
// mutation happens in scheduler callbacks under the simulator's mutex;
// measurements approach their targets in fixed increments and never
// overshoot.
type Simulator struct {
	pub              domain.Publisher
	log              *logger.Logger
	sched            timer.Scheduler
	rampInterval     time.Duration
	depressurizeWait time.Duration

	mu         sync.Mutex
	oven       domain.OvenState
	cooker     domain.CookerState
	ovenStop   func()
	cookerStop func()
}

// New creates a simulator with an idle oven and cooker.
func New(pub domain.Publisher, log *logger.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		pub:              pub,
		log:              log,
		sched:            timer.Wall{},
		rampInterval:     defaultRampInterval,
		depressurizeWait: defaultDepressurizeWait,
		oven: domain.OvenState{
			ID:          "oven-1",
			Status:      domain.OvenIdle,
			CurrentTemp: ambientTemp,
			LastUpdate:  time.Now(),
		},
		cooker: domain.CookerState{
			ID:         "cooker-1",
			Status:     domain.CookerIdle,
			LastUpdate: time.Now(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Oven returns a snapshot of the oven state.
func (s *Simulator) Oven() domain.OvenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oven
}

// Cooker returns a snapshot of the cooker state.
func (s *Simulator) Cooker() domain.CookerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooker
}

// PreheatOven validates the request and starts the preheat ramp. Returns
// the estimated seconds to reach the target. Validation failures are
// synchronous and leave the oven untouched; no timer is armed.
func (s *Simulator) PreheatOven(targetTemp int, mode string) (int, error) {
	if targetTemp < MinOvenTemp || targetTemp > MaxOvenTemp {
		return 0, domain.Invalidf("temperature", "must be between %d and %d units, got %d", MinOvenTemp, MaxOvenTemp, targetTemp)
	}
	if mode == "" {
		mode = "bake"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.oven.Status == domain.OvenPreheating {
		return 0, domain.Invalidf("oven", "preheat already in progress")
	}

	s.oven.Status = domain.OvenPreheating
	s.oven.TargetTemp = targetTemp
	s.oven.Mode = mode
	s.oven.LastUpdate = time.Now()

	s.ovenStop = s.sched.Every(s.rampInterval, s.ovenTick)

	estimate := s.rampTicks(s.oven.CurrentTemp, targetTemp, tempStep) * int(s.rampInterval.Seconds())
	s.log.Info("oven preheating to %d (mode=%s, ~%ds)", targetTemp, mode, estimate)
	return estimate, nil
}

// ovenTick steps the preheat ramp once; a false return releases the ramp
// timer.
func (s *Simulator) ovenTick() bool {
	s.mu.Lock()

	if s.oven.Status != domain.OvenPreheating {
		s.ovenStop = nil
		s.mu.Unlock()
		return false
	}

	s.oven.CurrentTemp += tempStep
	if s.oven.CurrentTemp > s.oven.TargetTemp {
		s.oven.CurrentTemp = s.oven.TargetTemp
	}
	s.oven.LastUpdate = time.Now()

	if s.oven.CurrentTemp >= s.oven.TargetTemp {
		s.oven.Status = domain.OvenReady
		temp, mode := s.oven.TargetTemp, s.oven.Mode
		s.ovenStop = nil
		s.mu.Unlock()

		s.log.Info("oven preheated to %d", temp)
		s.pub.Publish(domain.NewEvent(domain.EventOvenPreheated, domain.OvenPreheatedData{
			Temperature: temp,
			Mode:        mode,
		}))
		return false
	}

	ev := domain.NewEvent(domain.EventDeviceStatus, domain.DeviceStatusData{
		DeviceID:    s.oven.ID,
		Status:      s.oven.Status.String(),
		Measurement: s.oven.CurrentTemp,
		Target:      s.oven.TargetTemp,
	})
	s.mu.Unlock()
	s.pub.Publish(ev)
	return true
}

// StartPressureCycle validates the request and starts the full
// pressurize / cook / depressurize cycle. Returns the estimated seconds
// for the whole cycle.
func (s *Simulator) StartPressureCycle(pressure, durationMinutes int) (int, error) {
	if pressure < MinPressure || pressure > MaxPressure {
		return 0, domain.Invalidf("pressure", "must be between %d and %d units, got %d", MinPressure, MaxPressure, pressure)
	}
	if durationMinutes < 1 {
		return 0, domain.Invalidf("duration", "must be at least 1 minute, got %d", durationMinutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.cooker.Status {
	case domain.CookerIdle, domain.CookerReady:
	default:
		return 0, domain.Invalidf("cooker", "cycle already in progress (%s)", s.cooker.Status)
	}

	s.cooker.Status = domain.CookerPressurizing
	s.cooker.CurrentPressure = 0
	s.cooker.TargetPressure = pressure
	s.cooker.HoldMinutes = durationMinutes
	s.cooker.LastUpdate = time.Now()

	s.cookerStop = s.sched.Every(s.rampInterval, s.cookerRampTick)

	estimate := s.rampTicks(0, pressure, pressureStep)*int(s.rampInterval.Seconds()) +
		durationMinutes*60 +
		int(s.depressurizeWait.Seconds())
	s.log.Info("pressure cycle started (target=%d, hold=%dm, ~%ds)", pressure, durationMinutes, estimate)
	return estimate, nil
}

// cookerRampTick steps pressurization once; when the target is reached the
// hold phase is armed and the ramp timer is released.
func (s *Simulator) cookerRampTick() bool {
	s.mu.Lock()

	if s.cooker.Status != domain.CookerPressurizing {
		s.cookerStop = nil
		s.mu.Unlock()
		return false
	}

	s.cooker.CurrentPressure += pressureStep
	if s.cooker.CurrentPressure > s.cooker.TargetPressure {
		s.cooker.CurrentPressure = s.cooker.TargetPressure
	}
	s.cooker.LastUpdate = time.Now()

	if s.cooker.CurrentPressure >= s.cooker.TargetPressure {
		s.cooker.Status = domain.CookerPressureCooking
		hold := time.Duration(s.cooker.HoldMinutes) * time.Minute
		s.cookerStop = s.sched.Every(hold, s.cookerHoldDone)
		ev := s.cookerStatusEventLocked()
		s.mu.Unlock()

		s.log.Info("cooker at pressure, holding for %s", hold)
		s.pub.Publish(ev)
		return false
	}

	ev := s.cookerStatusEventLocked()
	s.mu.Unlock()
	s.pub.Publish(ev)
	return true
}

// cookerHoldDone fires once when the cook hold elapses.
func (s *Simulator) cookerHoldDone() bool {
	s.mu.Lock()

	if s.cooker.Status != domain.CookerPressureCooking {
		s.cookerStop = nil
		s.mu.Unlock()
		return false
	}

	s.cooker.Status = domain.CookerDepressurizing
	s.cooker.LastUpdate = time.Now()
	s.cookerStop = s.sched.Every(s.depressurizeWait, s.cookerDepressurized)
	ev := s.cookerStatusEventLocked()
	s.mu.Unlock()

	s.log.Info("cooker depressurizing")
	s.pub.Publish(ev)
	return false
}

// cookerDepressurized fires once when the depressurization wait elapses.
func (s *Simulator) cookerDepressurized() bool {
	s.mu.Lock()

	if s.cooker.Status != domain.CookerDepressurizing {
		s.cookerStop = nil
		s.mu.Unlock()
		return false
	}

	s.cooker.Status = domain.CookerReady
	s.cooker.CurrentPressure = 0
	s.cooker.LastUpdate = time.Now()
	pressure, hold := s.cooker.TargetPressure, s.cooker.HoldMinutes
	s.cookerStop = nil
	s.mu.Unlock()

	s.log.Info("pressure cycle complete")
	s.pub.Publish(domain.NewEvent(domain.EventPressureCookingComplete, domain.PressureCompleteData{
		Pressure:    pressure,
		HoldMinutes: hold,
	}))
	return false
}

// StopAll cancels any running appliance timers. Called on shutdown.
func (s *Simulator) StopAll() {
	s.mu.Lock()
	ovenStop, cookerStop := s.ovenStop, s.cookerStop
	s.ovenStop, s.cookerStop = nil, nil
	s.mu.Unlock()

	if ovenStop != nil {
		ovenStop()
	}
	if cookerStop != nil {
		cookerStop()
	}
}

// cookerStatusEventLocked builds a device_status event for the cooker.
// Caller holds s.mu.
func (s *Simulator) cookerStatusEventLocked() domain.Event {
	return domain.NewEvent(domain.EventDeviceStatus, domain.DeviceStatusData{
		DeviceID:    s.cooker.ID,
		Status:      s.cooker.Status.String(),
		Measurement: s.cooker.CurrentPressure,
		Target:      s.cooker.TargetPressure,
	})
}

// rampTicks returns how many fixed increments it takes to move current up
// to target.
func (s *Simulator) rampTicks(current, target, step int) int {
	delta := target - current
	if delta <= 0 {
		return 0
	}
	return (delta + step - 1) / step
}
