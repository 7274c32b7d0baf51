// Package status exposes the read-only, client-facing view of cooking
// sessions. It reads the store directly, so a snapshot always reflects the
// latest value written by the cooking clock.
package status

import (
	"github.com/hammamikhairi/hearth/internal/domain"
)

// Placeholder instruction texts for sessions without an active step.
const (
	instructionWaiting  = "Waiting to start"
	instructionComplete = "Complete"
	instructionStopped  = "Stopped"
)

// Snapshot is the client-facing shape of a session's progress.
type Snapshot struct {
	SessionID            string `json:"sessionId"`
	RecipeName           string `json:"recipeName"`
	Status               string `json:"status"`
	CurrentStep          int    `json:"currentStep"`
	TotalSteps           int    `json:"totalSteps"`
	TimeRemainingSeconds int    `json:"timeRemainingSeconds"`
	CurrentInstruction   string `json:"currentInstruction"`
}

// Query answers pull-based status requests.
type Query struct {
	store domain.SessionStore
}

// New creates a status query over the given store.
func New(store domain.SessionStore) *Query {
	return &Query{store: store}
}

// Snapshot returns the current view of one session, or domain.ErrNotFound.
func (q *Query) Snapshot(sessionID string) (*Snapshot, error) {
	session, err := q.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	instruction := instructionWaiting
	switch {
	case session.Status == domain.SessionCompleted:
		instruction = instructionComplete
	case session.Status == domain.SessionStopped:
		instruction = instructionStopped
	default:
		if step := session.ActiveStep(); step != nil {
			instruction = step.Instruction
		}
	}

	return &Snapshot{
		SessionID:            session.ID,
		RecipeName:           session.RecipeName,
		Status:               session.Status.String(),
		CurrentStep:          session.CurrentStepIndex,
		TotalSteps:           len(session.Steps),
		TimeRemainingSeconds: session.TimeRemainingSeconds,
		CurrentInstruction:   instruction,
	}, nil
}
