package domain

import "time"

// IncidentStatus represents the lifecycle status of an incident.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusMonitoring    IncidentStatus = "monitoring"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusInvestigating,
		IncidentStatusMonitoring, IncidentStatusResolved:
		return true
	}
	return false
}

// IncidentSeverity represents the severity of an incident, ordered by impact.
type IncidentSeverity string

// Severity levels.
const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

var severityRank = map[IncidentSeverity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// IsValid checks if the severity is one of the four ranks.
func (s IncidentSeverity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank returns the numeric impact order of the severity. Higher is worse.
func (s IncidentSeverity) Rank() int {
	return severityRank[s]
}

// ServiceState maps an incident severity to the public service state it
// imposes while the incident is active. The mapping is intentionally kept
// in one place: severity thresholds are a product choice, not an
// aggregation invariant.
func (s IncidentSeverity) ServiceState() ServiceState {
	switch s {
	case SeverityCritical, SeverityHigh:
		return ServiceStateOutage
	default:
		return ServiceStateDegraded
	}
}

// Incident represents an operational incident on a single service.
type Incident struct {
	ID                string           `json:"id"`
	ServiceID         string           `json:"service_id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	ImpactScope       string           `json:"impact_scope,omitempty"`
	Severity          IncidentSeverity `json:"severity"`
	Status            IncidentStatus   `json:"status"`
	Assignee          *string          `json:"assignee,omitempty"`
	Tags              []string         `json:"tags,omitempty"`
	RootCause         string           `json:"root_cause,omitempty"`
	ResolutionSummary string           `json:"resolution_summary,omitempty"`
	CreatedBy         string           `json:"created_by"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	FirstResponseAt   *time.Time       `json:"first_response_at,omitempty"`
	ResolvedAt        *time.Time       `json:"resolved_at,omitempty"`

	// Version is the optimistic-concurrency token. Every status or
	// resolution write carries the version it read; the repository
	// rejects the write with ErrConflict when it no longer matches.
	Version int64 `json:"version"`
}

// IsActive reports whether the incident still affects aggregation.
func (i *Incident) IsActive() bool {
	return i.Status != IncidentStatusResolved
}

// Update is an immutable entry in an incident's append-only timeline.
// Ordering is by creation timestamp, ties broken by insertion sequence.
type Update struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incident_id"`
	Author     string    `json:"author"`
	Message    string    `json:"message"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"created_at"`
}
