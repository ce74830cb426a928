// Package postgres provides the PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/statuskeeper/statuskeeper/internal/incidents"
)

const incidentColumns = `
	id, service_id, title, description, impact_scope, severity, status,
	assignee, tags, root_cause, resolution_summary, created_by,
	created_at, updated_at, first_response_at, resolved_at, version
`

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL incidents repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateIncident inserts a new incident in the open state.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (
			service_id, title, description, impact_scope, severity, status,
			assignee, tags, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at, version
	`
	tags := incident.Tags
	if tags == nil {
		tags = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		incident.ServiceID,
		incident.Title,
		incident.Description,
		incident.ImpactScope,
		incident.Severity,
		incident.Status,
		incident.Assignee,
		tags,
		incident.CreatedBy,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt, &incident.Version)
	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// GetIncident retrieves an incident by ID.
func (r *Repository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// ListIncidents retrieves incidents with optional filters, newest first.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.Filter) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.ServiceID != nil {
		query += fmt.Sprintf(" AND service_id = $%d", argNum)
		args = append(args, *filter.ServiceID)
		argNum++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.ActiveOnly {
		query += " AND status <> 'resolved'"
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows)
}

// UpdateIncidentStatus writes a status transition guarded by the version
// the caller read. A zero-row update against an existing incident means
// a concurrent writer won; that surfaces as domain.ErrConflict.
func (r *Repository) UpdateIncidentStatus(ctx context.Context, id string, expectedVersion int64, status domain.IncidentStatus, firstResponseAt, resolvedAt *time.Time) (*domain.Incident, error) {
	query := `
		UPDATE incidents
		SET status = $3,
		    first_response_at = $4,
		    resolved_at = $5,
		    updated_at = now(),
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + incidentColumns

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id, expectedVersion, status, firstResponseAt, resolvedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedWrite(ctx, id)
		}
		return nil, fmt.Errorf("update incident status: %w", err)
	}
	return incident, nil
}

// UpdateIncidentResolution attaches root-cause narrative, version-guarded.
func (r *Repository) UpdateIncidentResolution(ctx context.Context, id string, expectedVersion int64, rootCause, resolutionSummary string) (*domain.Incident, error) {
	query := `
		UPDATE incidents
		SET root_cause = $3,
		    resolution_summary = $4,
		    updated_at = now(),
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + incidentColumns

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id, expectedVersion, rootCause, resolutionSummary))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedWrite(ctx, id)
		}
		return nil, fmt.Errorf("update incident resolution: %w", err)
	}
	return incident, nil
}

// classifyMissedWrite distinguishes a version conflict from a missing row.
func (r *Repository) classifyMissedWrite(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM incidents WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check incident %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("incident %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("incident %s: %w", id, domain.ErrConflict)
}

// AppendUpdate inserts an immutable timeline entry.
func (r *Repository) AppendUpdate(ctx context.Context, update *domain.Update) error {
	query := `
		INSERT INTO incident_updates (incident_id, author, message)
		VALUES ($1, $2, $3)
		RETURNING id, seq, created_at
	`
	err := r.db.QueryRow(ctx, query, update.IncidentID, update.Author, update.Message).
		Scan(&update.ID, &update.Seq, &update.CreatedAt)
	if err != nil {
		return fmt.Errorf("append update: %w", err)
	}
	return nil
}

// ListUpdates retrieves the timeline ordered by creation time, ties
// broken by insertion sequence.
func (r *Repository) ListUpdates(ctx context.Context, incidentID string) ([]*domain.Update, error) {
	query := `
		SELECT id, seq, incident_id, author, message, created_at
		FROM incident_updates
		WHERE incident_id = $1
		ORDER BY created_at, seq
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*domain.Update, 0)
	for rows.Next() {
		var u domain.Update
		if err := rows.Scan(&u.ID, &u.Seq, &u.IncidentID, &u.Author, &u.Message, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		updates = append(updates, &u)
	}
	return updates, rows.Err()
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

func collectIncidents(rows pgx.Rows) ([]*domain.Incident, error) {
	list := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, incident)
	}
	return list, rows.Err()
}
