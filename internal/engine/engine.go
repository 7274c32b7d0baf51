// Package engine orchestrates the start and stop of cooking sessions:
// it plans steps from the recipe text, registers the session in the store,
// and hands it to the cooking clock.
package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hammamikhairi/hearth/internal/domain"
	"github.com/hammamikhairi/hearth/internal/logger"
	"github.com/hammamikhairi/hearth/internal/planner"
)

// SessionClock drives a session's timed advancement. Satisfied by
// timer.Clock.
type SessionClock interface {
	Start(sessionID string) error
	Stop(sessionID string) error
}

// StartRequest is a request to start cooking a recipe.
type StartRequest struct {
	RecipeName       string `json:"recipeName"`
	Instructions     string `json:"instructions,omitempty"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
}

// StartResult is the synchronous answer to a start request; progress
// arrives via the push channel afterwards.
type StartResult struct {
	SessionID        string `json:"sessionId"`
	TotalSteps       int    `json:"totalSteps"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

// Option configures the engine.
type Option func(*Engine)

// WithDefaultMinutes sets the estimate used when a request omits one.
func WithDefaultMinutes(n int) Option {
	return func(e *Engine) {
		e.defaultMinutes = n
	}
}

// Engine wires the planner, store, and clock together.
type Engine struct {
	store          domain.SessionStore
	clock          SessionClock
	log            *logger.Logger
	defaultMinutes int
}

// New creates an engine with the given dependencies and options.
func New(store domain.SessionStore, clock SessionClock, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		clock:          clock,
		log:            log,
		defaultMinutes: 10,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartCooking validates the request, plans the steps, creates the session,
// and starts its countdown.
func (e *Engine) StartCooking(req StartRequest) (*StartResult, error) {
	name := strings.TrimSpace(req.RecipeName)
	if name == "" {
		return nil, domain.Invalidf("recipeName", "required")
	}

	minutes := req.EstimatedMinutes
	if minutes <= 0 {
		minutes = e.defaultMinutes
	}

	steps := planner.Plan(req.Instructions, minutes)

	id := uuid.NewString()
	if _, err := e.store.Create(id, name, steps); err != nil {
		return nil, err
	}

	if err := e.clock.Start(id); err != nil {
		// The countdown never armed; don't leave a dead session behind.
		e.store.Remove(id)
		return nil, err
	}

	e.log.Info("cooking %q as session %s (%d steps, ~%dm)", name, id, len(steps), minutes)
	return &StartResult{
		SessionID:        id,
		TotalSteps:       len(steps),
		EstimatedMinutes: minutes,
	}, nil
}

// StopCooking terminates a session early.
func (e *Engine) StopCooking(sessionID string) error {
	return e.clock.Stop(sessionID)
}
