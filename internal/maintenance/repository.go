package maintenance

import (
	"context"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository defines the interface for maintenance event storage.
type Repository interface {
	CreateMaintenance(ctx context.Context, event *domain.MaintenanceEvent) error
	GetMaintenance(ctx context.Context, id string) (*domain.MaintenanceEvent, error)

	// ListMaintenance returns events whose [starts_at, ends_at) window
	// overlaps the given one, cancelled events included.
	ListMaintenance(ctx context.Context, window Window) ([]*domain.MaintenanceEvent, error)

	// CancelMaintenance stamps cancelled_at, guarded by the version the
	// caller read. Returns domain.ErrConflict on mismatch.
	CancelMaintenance(ctx context.Context, id string, expectedVersion int64, cancelledAt time.Time) (*domain.MaintenanceEvent, error)
}

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}
