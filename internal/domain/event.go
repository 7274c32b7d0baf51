package domain

import "time"

// EventType tags a broadcast event. The values are the wire names sent to
// connected observers.
type EventType string

const (
	EventConnectionEstablished   EventType = "connection_established"
	EventCookingStepStart        EventType = "cooking_step_start"
	EventTimerUpdate             EventType = "timer_update"
	EventCookingStepComplete     EventType = "cooking_step_complete"
	EventCookingComplete         EventType = "cooking_complete"
	EventOvenPreheated           EventType = "oven_preheated"
	EventPressureCookingComplete EventType = "pressure_cooking_complete"
	EventDeviceStatus            EventType = "device_status"
)

// Event is a write-once broadcast message. Never persisted, only transmitted.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// StepStartData is the payload of cooking_step_start.
type StepStartData struct {
	SessionID            string `json:"sessionId"`
	Step                 int    `json:"step"`
	Instruction          string `json:"instruction"`
	TimeRemainingSeconds int    `json:"timeRemainingSeconds"`
}

// TimerUpdateData is the payload of timer_update.
type TimerUpdateData struct {
	SessionID            string `json:"sessionId"`
	Step                 int    `json:"step"`
	TimeRemainingSeconds int    `json:"timeRemainingSeconds"`
}

// StepCompleteData is the payload of cooking_step_complete.
type StepCompleteData struct {
	SessionID   string `json:"sessionId"`
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}

// CookingCompleteData is the payload of cooking_complete.
type CookingCompleteData struct {
	SessionID  string `json:"sessionId"`
	RecipeName string `json:"recipeName"`
	TotalSteps int    `json:"totalSteps"`
}

// OvenPreheatedData is the payload of oven_preheated.
type OvenPreheatedData struct {
	Temperature int    `json:"temperature"`
	Mode        string `json:"mode"`
}

// PressureCompleteData is the payload of pressure_cooking_complete.
type PressureCompleteData struct {
	Pressure    int `json:"pressure"`
	HoldMinutes int `json:"holdMinutes"`
}

// DeviceStatusData is the payload of device_status, emitted while an
// appliance ramp is in progress.
type DeviceStatusData struct {
	DeviceID    string `json:"deviceId"`
	Status      string `json:"status"`
	Measurement int    `json:"measurement"`
	Target      int    `json:"target"`
}
