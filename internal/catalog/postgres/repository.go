// Package postgres provides the PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository implements catalog.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL catalog repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateService inserts a new service.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, service.Name, service.Slug).
		Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// GetServiceByID retrieves a service by ID.
func (r *Repository) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	return r.getService(ctx, "id", id)
}

// GetServiceBySlug retrieves a service by slug.
func (r *Repository) GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return r.getService(ctx, "slug", slug)
}

func (r *Repository) getService(ctx context.Context, column, value string) (*domain.Service, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, created_at, updated_at
		FROM services
		WHERE %s = $1
	`, column)

	var service domain.Service
	err := r.db.QueryRow(ctx, query, value).Scan(
		&service.ID,
		&service.Name,
		&service.Slug,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service %s=%s: %w", column, value, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &service, nil
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

// RenameService updates a service's display name.
func (r *Repository) RenameService(ctx context.Context, id, name string) (*domain.Service, error) {
	query := `
		UPDATE services
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, slug, created_at, updated_at
	`
	var service domain.Service
	err := r.db.QueryRow(ctx, query, id, name).Scan(
		&service.ID,
		&service.Name,
		&service.Slug,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("rename service: %w", err)
	}
	return &service, nil
}

// DeleteService removes a service row.
func (r *Repository) DeleteService(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountReferences counts incidents and maintenance events referencing the service.
func (r *Repository) CountReferences(ctx context.Context, serviceID string) (int, int, error) {
	query := `
		SELECT
			(SELECT count(*) FROM incidents WHERE service_id = $1),
			(SELECT count(*) FROM maintenance_events WHERE service_id = $1)
	`
	var incidents, maintenance int
	if err := r.db.QueryRow(ctx, query, serviceID).Scan(&incidents, &maintenance); err != nil {
		return 0, 0, fmt.Errorf("count references: %w", err)
	}
	return incidents, maintenance, nil
}
