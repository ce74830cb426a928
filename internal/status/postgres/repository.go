// Package postgres provides the PostgreSQL read model for status aggregation.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository implements status.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL status read model.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListServices retrieves all services ordered by name.
func (r *Repository) ListServices(ctx context.Context) ([]domain.Service, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM services
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// ListActiveIncidents retrieves all unresolved incidents.
func (r *Repository) ListActiveIncidents(ctx context.Context) ([]*domain.Incident, error) {
	return r.listIncidents(ctx, `status <> 'resolved'`)
}

// ListIncidentsCreatedSince retrieves incidents created at or after t.
func (r *Repository) ListIncidentsCreatedSince(ctx context.Context, t time.Time) ([]*domain.Incident, error) {
	return r.listIncidents(ctx, `created_at >= $1`, t)
}

func (r *Repository) listIncidents(ctx context.Context, where string, args ...interface{}) ([]*domain.Incident, error) {
	query := `
		SELECT
			id, service_id, title, description, impact_scope, severity, status,
			assignee, tags, root_cause, resolution_summary, created_by,
			created_at, updated_at, first_response_at, resolved_at, version
		FROM incidents
		WHERE ` + where + `
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}

// ListMaintenanceOverlapping retrieves maintenance events overlapping [from, to).
func (r *Repository) ListMaintenanceOverlapping(ctx context.Context, from, to time.Time) ([]*domain.MaintenanceEvent, error) {
	query := `
		SELECT
			id, title, description, applies_to_all, service_id,
			starts_at, ends_at, cancelled_at, created_by, created_at, updated_at, version
		FROM maintenance_events
		WHERE starts_at < $2 AND ends_at > $1
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.MaintenanceEvent, 0)
	for rows.Next() {
		var ev domain.MaintenanceEvent
		err := rows.Scan(
			&ev.ID,
			&ev.Title,
			&ev.Description,
			&ev.AppliesToAll,
			&ev.ServiceID,
			&ev.StartsAt,
			&ev.EndsAt,
			&ev.CancelledAt,
			&ev.CreatedBy,
			&ev.CreatedAt,
			&ev.UpdatedAt,
			&ev.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	err := row.Scan(
		&incident.ID,
		&incident.ServiceID,
		&incident.Title,
		&incident.Description,
		&incident.ImpactScope,
		&incident.Severity,
		&incident.Status,
		&incident.Assignee,
		&incident.Tags,
		&incident.RootCause,
		&incident.ResolutionSummary,
		&incident.CreatedBy,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.FirstResponseAt,
		&incident.ResolvedAt,
		&incident.Version,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}
