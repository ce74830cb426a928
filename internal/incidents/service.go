// Package incidents implements the incident lifecycle controller.
package incidents

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

// Service implements incident business logic.
type Service struct {
	repo    Repository
	catalog ServiceDirectory
	cache   SnapshotInvalidator
	now     func() time.Time
}

// NewService creates a new incident service.
func NewService(repo Repository, catalog ServiceDirectory, cache SnapshotInvalidator) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		now:     time.Now,
	}
}

// OpenIncidentInput holds data for opening an incident.
type OpenIncidentInput struct {
	ServiceID   string
	Title       string
	Severity    domain.IncidentSeverity
	Description string
	ImpactScope string
	Assignee    *string
	Tags        []string
}

// OpenIncident creates a new incident in the open state.
func (s *Service) OpenIncident(ctx context.Context, input OpenIncidentInput, createdBy string) (*domain.Incident, error) {
	if input.Title == "" {
		return nil, domain.Validationf("title must not be empty")
	}
	if !input.Severity.IsValid() {
		return nil, domain.Validationf("invalid severity %q", input.Severity)
	}

	exists, err := s.catalog.ServiceExists(ctx, input.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check service: %w", err)
	}
	if !exists {
		return nil, domain.Validationf("service %s does not exist", input.ServiceID)
	}

	incident := &domain.Incident{
		ServiceID:   input.ServiceID,
		Title:       input.Title,
		Description: input.Description,
		ImpactScope: input.ImpactScope,
		Severity:    input.Severity,
		Status:      domain.IncidentStatusOpen,
		Assignee:    input.Assignee,
		Tags:        input.Tags,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	s.cache.Invalidate()
	return incident, nil
}

// GetIncident retrieves an incident by ID.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	return s.repo.GetIncident(ctx, id)
}

// ListIncidents retrieves incidents with optional filters.
func (s *Service) ListIncidents(ctx context.Context, filter Filter) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, filter)
}

// Transition moves an incident to a new status.
//
// On the first transition away from open the first-response timestamp
// is stamped. Transitioning into resolved stamps the resolution
// timestamp and requires a first response to already exist. The write
// carries the version that was read; a concurrent change surfaces as
// domain.ErrConflict and is never retried here.
func (s *Service) Transition(ctx context.Context, id string, newStatus domain.IncidentStatus, actor string) (*domain.Incident, error) {
	if !newStatus.IsValid() {
		return nil, domain.Validationf("invalid status %q", newStatus)
	}

	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(incident.Status, newStatus) {
		return nil, &domain.InvalidTransitionError{From: incident.Status, To: newStatus}
	}

	now := s.now()

	firstResponseAt := incident.FirstResponseAt
	if incident.Status == domain.IncidentStatusOpen && firstResponseAt == nil {
		firstResponseAt = &now
	}

	var resolvedAt *time.Time
	if newStatus == domain.IncidentStatusResolved {
		if firstResponseAt == nil {
			return nil, domain.Validationf("cannot resolve incident without a first response")
		}
		resolvedAt = &now
	}

	updated, err := s.repo.UpdateIncidentStatus(ctx, id, incident.Version, newStatus, firstResponseAt, resolvedAt)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	return updated, nil
}

// AppendUpdate appends an immutable entry to the incident timeline.
// It never changes the incident status; callers pair it with Transition
// when commentary accompanies a status change.
func (s *Service) AppendUpdate(ctx context.Context, incidentID, author, message string) (*domain.Update, error) {
	if message == "" {
		return nil, domain.Validationf("message must not be empty")
	}

	if _, err := s.repo.GetIncident(ctx, incidentID); err != nil {
		return nil, err
	}

	update := &domain.Update{
		IncidentID: incidentID,
		Author:     author,
		Message:    message,
	}
	if err := s.repo.AppendUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("append update: %w", err)
	}

	s.cache.Invalidate()
	return update, nil
}

// ListUpdates retrieves the incident timeline in order.
func (s *Service) ListUpdates(ctx context.Context, incidentID string) ([]*domain.Update, error) {
	if _, err := s.repo.GetIncident(ctx, incidentID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, incidentID)
}

// RecordResolution attaches post-hoc root-cause and resolution-summary
// narrative. Only valid once the incident is resolved.
func (s *Service) RecordResolution(ctx context.Context, id, rootCause, resolutionSummary string) (*domain.Incident, error) {
	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	if incident.Status != domain.IncidentStatusResolved {
		return nil, &domain.InvalidStateError{
			Current:   string(incident.Status),
			Requested: "record resolution",
		}
	}

	updated, err := s.repo.UpdateIncidentResolution(ctx, id, incident.Version, rootCause, resolutionSummary)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	return updated, nil
}
