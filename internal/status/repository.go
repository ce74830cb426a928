package status

import (
	"context"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository is the read model the aggregator and SLA calculator pull
// from. It is consumed read-only; the aggregation itself never writes.
type Repository interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListActiveIncidents(ctx context.Context) ([]*domain.Incident, error)

	// ListMaintenanceOverlapping returns maintenance events whose window
	// overlaps [from, to), cancelled ones included (the aggregator
	// filters on effective status).
	ListMaintenanceOverlapping(ctx context.Context, from, to time.Time) ([]*domain.MaintenanceEvent, error)

	// ListIncidentsCreatedSince returns incidents with created_at >= t,
	// resolved ones included.
	ListIncidentsCreatedSince(ctx context.Context, t time.Time) ([]*domain.Incident, error)
}
