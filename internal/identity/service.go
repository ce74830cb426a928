// Package identity authenticates operators. Authorization beyond "is a
// known operator" is the surrounding system's concern; lifecycle
// operations only receive the actor ID resolved here.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// Identity errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Repository defines the interface for operator storage.
type Repository interface {
	GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error)
	GetOperatorByID(ctx context.Context, id string) (*domain.Operator, error)
}

// Authenticator issues and validates access tokens.
type Authenticator interface {
	IssueToken(operator *domain.Operator) (token string, expiresAt time.Time, err error)
	ValidateToken(ctx context.Context, token string) (operatorID string, err error)
}

// Service implements operator authentication.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{repo: repo, auth: auth}
}

// LoginResult holds an issued access token.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login verifies credentials and issues an access token. A missing
// operator and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	operator, err := s.repo.GetOperatorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.auth.IssueToken(operator)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken resolves a bearer token to an operator ID. Implements
// httputil.TokenValidator.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, error) {
	operatorID, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		return "", err
	}

	// The operator must still exist; tokens outlive account removal.
	if _, err := s.repo.GetOperatorByID(ctx, operatorID); err != nil {
		return "", fmt.Errorf("resolve operator: %w", err)
	}
	return operatorID, nil
}
