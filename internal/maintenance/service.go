// Package maintenance implements the maintenance lifecycle controller.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// ServiceDirectory validates service references.
type ServiceDirectory interface {
	ServiceExists(ctx context.Context, id string) (bool, error)
}

// SnapshotInvalidator marks the cached status snapshot stale.
type SnapshotInvalidator interface {
	Invalidate()
}

// Service implements maintenance business logic. Effective status is
// never stored: it is derived from the clock on every read, so no
// background job is needed to keep it current.
type Service struct {
	repo    Repository
	catalog ServiceDirectory
	cache   SnapshotInvalidator
	now     func() time.Time
}

// NewService creates a new maintenance service.
func NewService(repo Repository, catalog ServiceDirectory, cache SnapshotInvalidator) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		now:     time.Now,
	}
}

// ScheduleInput holds data for scheduling a maintenance event.
type ScheduleInput struct {
	Title        string
	Description  string
	AppliesToAll bool
	ServiceID    *string
	StartsAt     time.Time
	EndsAt       time.Time
}

// Schedule creates a new maintenance event.
func (s *Service) Schedule(ctx context.Context, input ScheduleInput, createdBy string) (*domain.MaintenanceEvent, error) {
	if input.Title == "" {
		return nil, domain.Validationf("title must not be empty")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, domain.Validationf("ends_at must be after starts_at")
	}

	if !input.AppliesToAll {
		if input.ServiceID == nil {
			return nil, domain.Validationf("scope requires a service or applies_to_all")
		}
		exists, err := s.catalog.ServiceExists(ctx, *input.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("check service: %w", err)
		}
		if !exists {
			return nil, domain.Validationf("service %s does not exist", *input.ServiceID)
		}
	}

	event := &domain.MaintenanceEvent{
		Title:        input.Title,
		Description:  input.Description,
		AppliesToAll: input.AppliesToAll,
		ServiceID:    input.ServiceID,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		CreatedBy:    createdBy,
	}
	if input.AppliesToAll {
		event.ServiceID = nil
	}

	if err := s.repo.CreateMaintenance(ctx, event); err != nil {
		return nil, fmt.Errorf("create maintenance: %w", err)
	}

	s.cache.Invalidate()
	return event, nil
}

// GetMaintenance retrieves a maintenance event by ID.
func (s *Service) GetMaintenance(ctx context.Context, id string) (*domain.MaintenanceEvent, error) {
	return s.repo.GetMaintenance(ctx, id)
}

// Cancel cancels a maintenance event. Only events that have not yet
// completed (and are not already cancelled) can be cancelled.
func (s *Service) Cancel(ctx context.Context, id, actor string) (*domain.MaintenanceEvent, error) {
	event, err := s.repo.GetMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch event.EffectiveStatus(now) {
	case domain.MaintenanceStatusCompleted, domain.MaintenanceStatusCancelled:
		return nil, &domain.InvalidStateError{
			Current:   string(event.EffectiveStatus(now)),
			Requested: "cancel maintenance",
		}
	}

	cancelled, err := s.repo.CancelMaintenance(ctx, id, event.Version, now)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	return cancelled, nil
}

// ListWindow retrieves maintenance events overlapping the given window.
func (s *Service) ListWindow(ctx context.Context, window Window) ([]*domain.MaintenanceEvent, error) {
	return s.repo.ListMaintenance(ctx, window)
}
