package catalog

import (
	"context"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository defines the interface for service catalog storage.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	RenameService(ctx context.Context, id, name string) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error

	// CountReferences returns how many incidents and maintenance events
	// reference the service. Deletion is refused while either is non-zero.
	CountReferences(ctx context.Context, serviceID string) (incidents int, maintenance int, err error)
}
