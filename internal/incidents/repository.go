package incidents

import (
	"context"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository defines the interface for incident storage. All mutating
// status writes carry the version read by the caller; on mismatch the
// implementation returns domain.ErrConflict.
type Repository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	GetIncident(ctx context.Context, id string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, filter Filter) ([]*domain.Incident, error)

	UpdateIncidentStatus(ctx context.Context, id string, expectedVersion int64, status domain.IncidentStatus, firstResponseAt, resolvedAt *time.Time) (*domain.Incident, error)
	UpdateIncidentResolution(ctx context.Context, id string, expectedVersion int64, rootCause, resolutionSummary string) (*domain.Incident, error)

	AppendUpdate(ctx context.Context, update *domain.Update) error
	ListUpdates(ctx context.Context, incidentID string) ([]*domain.Update, error)
}

// Filter holds filter options for listing incidents.
type Filter struct {
	ServiceID  *string
	Status     *domain.IncidentStatus
	ActiveOnly bool
	Limit      int
	Offset     int
}
