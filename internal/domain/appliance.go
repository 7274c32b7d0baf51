package domain

import "time"

// OvenState is the simulated oven. CurrentTemp approaches TargetTemp in
// fixed increments per tick and never overshoots.
type OvenState struct {
	ID          string
	Status      OvenStatus
	CurrentTemp int
	TargetTemp  int
	Mode        string
	LastUpdate  time.Time
}

// OvenStatus enumerates the oven preheat state machine.
type OvenStatus int

const (
	OvenIdle OvenStatus = iota
	OvenPreheating
	OvenReady
)

// String returns a human-readable oven status.
func (s OvenStatus) String() string {
	switch s {
	case OvenIdle:
		return "idle"
	case OvenPreheating:
		return "preheating"
	case OvenReady:
		return "ready"
	default:
		return "unknown"
	}
}

// CookerState is the simulated pressure cooker. CurrentPressure approaches
// TargetPressure in fixed increments per tick during pressurization and is
// reset to 0 when the cycle finishes.
type CookerState struct {
	ID              string
	Status          CookerStatus
	CurrentPressure int
	TargetPressure  int
	HoldMinutes     int
	LastUpdate      time.Time
}

// CookerStatus enumerates the pressure cooker cycle.
type CookerStatus int

const (
	CookerIdle CookerStatus = iota
	CookerPressurizing
	CookerPressureCooking
	CookerDepressurizing
	CookerReady
)

// String returns a human-readable cooker status.
func (s CookerStatus) String() string {
	switch s {
	case CookerIdle:
		return "idle"
	case CookerPressurizing:
		return "pressurizing"
	case CookerPressureCooking:
		return "pressure_cooking"
	case CookerDepressurizing:
		return "depressurizing"
	case CookerReady:
		return "ready"
	default:
		return "unknown"
	}
}
