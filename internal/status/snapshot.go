package status

import (
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Snapshot is the aggregated, publicly safe view of the system: overall
// and per-service state, active incidents and the maintenance calendar.
// A snapshot is immutable once built.
type Snapshot struct {
	OverallState    domain.ServiceState `json:"overall_state"`
	Services        []ServiceState      `json:"services"`
	ActiveIncidents []PublicIncident    `json:"active_incidents"`
	Maintenance     []PublicMaintenance `json:"maintenance"`
	ComputedAt      time.Time           `json:"updated_at"`
	Generation      uint64              `json:"-"`
}

// ServiceState is the public state of one service.
type ServiceState struct {
	Slug  string              `json:"slug"`
	Name  string              `json:"name"`
	State domain.ServiceState `json:"state"`
}

// PublicIncident is the redacted projection of an active incident. It
// enumerates exactly the fields allowed on the public page; internal
// fields (assignee, root cause, narrative) never appear here.
type PublicIncident struct {
	Title     string                  `json:"title"`
	Severity  domain.IncidentSeverity `json:"severity"`
	Status    domain.IncidentStatus   `json:"status"`
	Service   string                  `json:"service"`
	StartedAt time.Time               `json:"started_at"`
}

// PublicMaintenance is the redacted projection of an in-progress or
// upcoming maintenance event.
type PublicMaintenance struct {
	Title    string                   `json:"title"`
	Status   domain.MaintenanceStatus `json:"status"`
	Service  string                   `json:"service,omitempty"` // empty when it applies to all services
	StartsAt time.Time                `json:"starts_at"`
	EndsAt   time.Time                `json:"ends_at"`
}

// Metrics holds today's SLA aggregates. Both averages are 0 when no
// qualifying incident exists today; they are never NaN.
type Metrics struct {
	AvgFirstResponseMinutesToday float64 `json:"avg_first_response_minutes_today"`
	AvgResolveMinutesToday       float64 `json:"avg_resolve_minutes_today"`
}
