package domain

// SessionStore owns cooking session records. Implementations must make
// Update an atomic read-modify-write of a single session.
type SessionStore interface {
	Create(id, recipeName string, steps []CookingStep) (*CookingSession, error)
	Get(id string) (*CookingSession, error)
	Update(id string, fn func(*CookingSession)) (*CookingSession, error)
	Remove(id string)
}

// Publisher delivers events to connected observers. Delivery is
// fire-and-forget; a failing observer must never block the publisher.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards every event. Used in tests and as a wiring default.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(Event) {}
