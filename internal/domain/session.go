// Package domain defines the core types and interfaces for the kitchen
// simulation server. All other packages depend on domain; domain depends
// on nothing.
package domain

import "time"

// CookingStep is one unit of cooking work. Immutable once planned.
type CookingStep struct {
	Index           int    `json:"index"` // 1-based
	Instruction     string `json:"instruction"`
	DurationMinutes int    `json:"durationMinutes"`
}

// CookingSession is one simulated cooking run progressing through an
// ordered list of steps. CurrentStepIndex is 0 before the first step
// starts and equals len(Steps) while the final step runs and after the
// session completes.
type CookingSession struct {
	ID                   string
	RecipeName           string
	Steps                []CookingStep
	CurrentStepIndex     int
	Status               SessionStatus
	TimeRemainingSeconds int
	StartedAt            time.Time
	UpdatedAt            time.Time
}

// ActiveStep returns the step currently being cooked, or nil when the
// session has not started or is in a terminal state.
func (s *CookingSession) ActiveStep() *CookingStep {
	if s.Status != SessionCooking {
		return nil
	}
	idx := s.CurrentStepIndex - 1
	if idx < 0 || idx >= len(s.Steps) {
		return nil
	}
	return &s.Steps[idx]
}

// SessionStatus tracks the lifecycle of a cooking session.
type SessionStatus int

const (
	// SessionStarting means the session exists but its countdown has not begun.
	SessionStarting SessionStatus = iota
	// SessionCooking means a step countdown is running.
	SessionCooking
	// SessionCompleted means every step finished naturally.
	SessionCompleted
	// SessionStopped means the session was terminated early by request.
	// Kept distinct from SessionCompleted so clients can tell a finished
	// meal from an abandoned one.
	SessionStopped
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionStarting:
		return "starting"
	case SessionCooking:
		return "cooking"
	case SessionCompleted:
		return "completed"
	case SessionStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session can make no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionStopped
}
