package domain

import "time"

// MaintenanceStatus represents the effective status of a maintenance event.
type MaintenanceStatus string

// Maintenance statuses. in_progress and completed are derived from the
// clock, never stored; cancelled is the only operator-set terminal state.
const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
)

// MaintenanceEvent represents a scheduled maintenance window, scoped to a
// single service or to all services.
type MaintenanceEvent struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AppliesToAll bool       `json:"applies_to_all"`
	ServiceID    *string    `json:"service_id,omitempty"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       time.Time  `json:"ends_at"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int64      `json:"version"`
}

// EffectiveStatus derives the status of the event at the given instant.
// It is a pure function of (now, startsAt, endsAt, cancelled), so the
// computed status can never drift from wall-clock time.
func (m *MaintenanceEvent) EffectiveStatus(now time.Time) MaintenanceStatus {
	switch {
	case m.CancelledAt != nil:
		return MaintenanceStatusCancelled
	case now.Before(m.StartsAt):
		return MaintenanceStatusScheduled
	case now.Before(m.EndsAt):
		return MaintenanceStatusInProgress
	default:
		return MaintenanceStatusCompleted
	}
}

// Covers reports whether the event applies to the given service.
func (m *MaintenanceEvent) Covers(serviceID string) bool {
	if m.AppliesToAll {
		return true
	}
	return m.ServiceID != nil && *m.ServiceID == serviceID
}
