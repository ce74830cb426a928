// Package postgres provides the PostgreSQL implementation of the identity repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Repository implements identity.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL identity repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetOperatorByEmail retrieves an operator by email.
func (r *Repository) GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	return r.getOperator(ctx, "email", email)
}

// GetOperatorByID retrieves an operator by ID.
func (r *Repository) GetOperatorByID(ctx context.Context, id string) (*domain.Operator, error) {
	return r.getOperator(ctx, "id", id)
}

func (r *Repository) getOperator(ctx context.Context, column, value string) (*domain.Operator, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, password_hash, created_at
		FROM operators
		WHERE %s = $1
	`, column)

	var op domain.Operator
	err := r.db.QueryRow(ctx, query, value).Scan(
		&op.ID,
		&op.Email,
		&op.Name,
		&op.PasswordHash,
		&op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("operator: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}
	return &op, nil
}
