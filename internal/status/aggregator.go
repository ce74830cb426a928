package status

import (
	"log/slog"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// BuildSnapshot folds the current record set into a public snapshot.
//
// Per service, the state is the worst of: the highest-severity active
// incident mapped through the severity table, and maintenance if an
// in-progress event covers the service. The overall state is the worst
// per-service state. The fold is pure and never mutates its inputs.
//
// A record violating the storage invariants is excluded and logged
// rather than failing the snapshot: public status availability outranks
// strict correctness for a single bad record.
func BuildSnapshot(now time.Time, services []domain.Service, activeIncidents []*domain.Incident, events []*domain.MaintenanceEvent, logger *slog.Logger) *Snapshot {
	type serviceEntry struct {
		service domain.Service
		state   domain.ServiceState
	}

	byID := make(map[string]*serviceEntry, len(services))
	ordered := make([]*serviceEntry, 0, len(services))
	for _, svc := range services {
		entry := &serviceEntry{service: svc, state: domain.ServiceStateOperational}
		byID[svc.ID] = entry
		ordered = append(ordered, entry)
	}

	publicIncidents := make([]PublicIncident, 0, len(activeIncidents))
	for _, inc := range activeIncidents {
		entry, ok := byID[inc.ServiceID]
		if !ok {
			logger.Warn("skipping incident with unknown service", "incident_id", inc.ID, "service_id", inc.ServiceID)
			continue
		}
		if !inc.IsActive() || !inc.Severity.IsValid() || !inc.Status.IsValid() {
			logger.Warn("skipping malformed incident record", "incident_id", inc.ID,
				"status", inc.Status, "severity", inc.Severity)
			continue
		}

		entry.state = domain.WorseOf(entry.state, inc.Severity.ServiceState())
		publicIncidents = append(publicIncidents, PublicIncident{
			Title:     inc.Title,
			Severity:  inc.Severity,
			Status:    inc.Status,
			Service:   entry.service.Name,
			StartedAt: inc.CreatedAt,
		})
	}

	publicMaintenance := make([]PublicMaintenance, 0, len(events))
	for _, ev := range events {
		if !ev.EndsAt.After(ev.StartsAt) {
			logger.Warn("skipping malformed maintenance record", "maintenance_id", ev.ID)
			continue
		}

		effective := ev.EffectiveStatus(now)
		switch effective {
		case domain.MaintenanceStatusCancelled, domain.MaintenanceStatusCompleted:
			continue
		}

		// Only in_progress affects current state; scheduled events show
		// up in the forward-looking list only.
		if effective == domain.MaintenanceStatusInProgress {
			for _, entry := range ordered {
				if ev.Covers(entry.service.ID) {
					entry.state = domain.WorseOf(entry.state, domain.ServiceStateMaintenance)
				}
			}
		}

		pm := PublicMaintenance{
			Title:    ev.Title,
			Status:   effective,
			StartsAt: ev.StartsAt,
			EndsAt:   ev.EndsAt,
		}
		if !ev.AppliesToAll && ev.ServiceID != nil {
			if entry, ok := byID[*ev.ServiceID]; ok {
				pm.Service = entry.service.Name
			}
		}
		publicMaintenance = append(publicMaintenance, pm)
	}

	overall := domain.ServiceStateOperational
	serviceStates := make([]ServiceState, 0, len(ordered))
	for _, entry := range ordered {
		overall = domain.WorseOf(overall, entry.state)
		serviceStates = append(serviceStates, ServiceState{
			Slug:  entry.service.Slug,
			Name:  entry.service.Name,
			State: entry.state,
		})
	}

	return &Snapshot{
		OverallState:    overall,
		Services:        serviceStates,
		ActiveIncidents: publicIncidents,
		Maintenance:     publicMaintenance,
		ComputedAt:      now,
	}
}
