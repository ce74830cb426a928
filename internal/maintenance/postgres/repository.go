// Package postgres provides the PostgreSQL implementation of the maintenance repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/statuskeeper/statuskeeper/internal/maintenance"
)

const maintenanceColumns = `
	id, title, description, applies_to_all, service_id,
	starts_at, ends_at, cancelled_at, created_by, created_at, updated_at, version
`

// Repository implements maintenance.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL maintenance repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateMaintenance inserts a new maintenance event.
func (r *Repository) CreateMaintenance(ctx context.Context, event *domain.MaintenanceEvent) error {
	query := `
		INSERT INTO maintenance_events (
			title, description, applies_to_all, service_id, starts_at, ends_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at, version
	`
	err := r.db.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.AppliesToAll,
		event.ServiceID,
		event.StartsAt,
		event.EndsAt,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt, &event.Version)
	if err != nil {
		return fmt.Errorf("create maintenance: %w", err)
	}
	return nil
}

// GetMaintenance retrieves a maintenance event by ID.
func (r *Repository) GetMaintenance(ctx context.Context, id string) (*domain.MaintenanceEvent, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_events WHERE id = $1`

	event, err := scanMaintenance(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("maintenance %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get maintenance: %w", err)
	}
	return event, nil
}

// ListMaintenance retrieves events overlapping the window, soonest first.
func (r *Repository) ListMaintenance(ctx context.Context, window maintenance.Window) ([]*domain.MaintenanceEvent, error) {
	query := `
		SELECT ` + maintenanceColumns + `
		FROM maintenance_events
		WHERE starts_at < $2 AND ends_at > $1
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.MaintenanceEvent, 0)
	for rows.Next() {
		event, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// CancelMaintenance stamps cancelled_at, guarded by the expected version.
func (r *Repository) CancelMaintenance(ctx context.Context, id string, expectedVersion int64, cancelledAt time.Time) (*domain.MaintenanceEvent, error) {
	query := `
		UPDATE maintenance_events
		SET cancelled_at = $3,
		    updated_at = now(),
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + maintenanceColumns

	event, err := scanMaintenance(r.db.QueryRow(ctx, query, id, expectedVersion, cancelledAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedWrite(ctx, id)
		}
		return nil, fmt.Errorf("cancel maintenance: %w", err)
	}
	return event, nil
}

func (r *Repository) classifyMissedWrite(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM maintenance_events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check maintenance %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("maintenance %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("maintenance %s: %w", id, domain.ErrConflict)
}

func scanMaintenance(row pgx.Row) (*domain.MaintenanceEvent, error) {
	var event domain.MaintenanceEvent
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.AppliesToAll,
		&event.ServiceID,
		&event.StartsAt,
		&event.EndsAt,
		&event.CancelledAt,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.Version,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
