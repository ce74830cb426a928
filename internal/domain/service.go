package domain

import "time"

// ServiceState represents the public-facing state of a service.
type ServiceState string

// Service states, ordered from best to worst.
const (
	ServiceStateOperational ServiceState = "operational"
	ServiceStateMaintenance ServiceState = "maintenance"
	ServiceStateDegraded    ServiceState = "degraded"
	ServiceStateOutage      ServiceState = "outage"
)

// serviceStateRank fixes the roll-up order:
// operational < maintenance < degraded < outage.
var serviceStateRank = map[ServiceState]int{
	ServiceStateOperational: 0,
	ServiceStateMaintenance: 1,
	ServiceStateDegraded:    2,
	ServiceStateOutage:      3,
}

// IsValid checks if the service state is valid.
func (s ServiceState) IsValid() bool {
	_, ok := serviceStateRank[s]
	return ok
}

// WorseOf returns the worse of two states per the fixed roll-up order.
// Any outage anywhere dominates the overall banner; ties resolve to the
// worse state.
func WorseOf(a, b ServiceState) ServiceState {
	if serviceStateRank[b] > serviceStateRank[a] {
		return b
	}
	return a
}

// Service represents a monitored service.
type Service struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
