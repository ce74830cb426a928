// Package catalog manages the set of monitored services.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Catalog errors.
var (
	ErrSlugTaken    = errors.New("service slug already in use")
	ErrServiceInUse = errors.New("service is referenced by incidents or maintenance events")
)

// SnapshotInvalidator marks the cached status snapshot stale.
type SnapshotInvalidator interface {
	Invalidate()
}

// Service implements catalog business logic.
type Service struct {
	repo  Repository
	cache SnapshotInvalidator
}

// NewService creates a new catalog service.
func NewService(repo Repository, cache SnapshotInvalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateServiceInput holds data for creating a service.
type CreateServiceInput struct {
	Name string
	Slug string // optional; derived from Name when empty
}

// CreateService registers a new monitored service. The slug is immutable
// after creation.
func (s *Service) CreateService(ctx context.Context, input CreateServiceInput) (*domain.Service, error) {
	if input.Name == "" {
		return nil, domain.Validationf("name must not be empty")
	}

	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if !IsValidSlug(slug) {
		return nil, domain.Validationf("invalid slug %q", slug)
	}

	if _, err := s.repo.GetServiceBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	service := &domain.Service{
		Name: input.Name,
		Slug: slug,
	}
	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.cache.Invalidate()
	return service, nil
}

// GetService retrieves a service by slug.
func (s *Service) GetService(ctx context.Context, slug string) (*domain.Service, error) {
	return s.repo.GetServiceBySlug(ctx, slug)
}

// ListServices retrieves all services.
func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

// RenameService changes a service's display name. The slug never changes.
func (s *Service) RenameService(ctx context.Context, slug, name string) (*domain.Service, error) {
	if name == "" {
		return nil, domain.Validationf("name must not be empty")
	}

	service, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	renamed, err := s.repo.RenameService(ctx, service.ID, name)
	if err != nil {
		return nil, fmt.Errorf("rename service: %w", err)
	}

	s.cache.Invalidate()
	return renamed, nil
}

// DeleteService removes a service. Refused while any incident or
// maintenance event still references it.
func (s *Service) DeleteService(ctx context.Context, slug string) error {
	service, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return err
	}

	incidents, maintenance, err := s.repo.CountReferences(ctx, service.ID)
	if err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if incidents > 0 || maintenance > 0 {
		return fmt.Errorf("%w: %d incidents, %d maintenance events", ErrServiceInUse, incidents, maintenance)
	}

	if err := s.repo.DeleteService(ctx, service.ID); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	s.cache.Invalidate()
	return nil
}

// ServiceExists reports whether a service with the given ID exists.
// Lifecycle controllers use this to validate references.
func (s *Service) ServiceExists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
