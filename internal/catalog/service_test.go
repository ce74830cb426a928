package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	services        map[string]*domain.Service // keyed by slug
	incidentRefs    int
	maintenanceRefs int
	deleted         []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{services: make(map[string]*domain.Service)}
}

func (m *mockRepository) CreateService(_ context.Context, service *domain.Service) error {
	service.ID = fmt.Sprintf("svc-%d", len(m.services)+1)
	m.services[service.Slug] = service
	return nil
}

func (m *mockRepository) GetServiceByID(_ context.Context, id string) (*domain.Service, error) {
	for _, svc := range m.services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepository) GetServiceBySlug(_ context.Context, slug string) (*domain.Service, error) {
	if svc, ok := m.services[slug]; ok {
		return svc, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepository) ListServices(_ context.Context) ([]domain.Service, error) {
	out := make([]domain.Service, 0, len(m.services))
	for _, svc := range m.services {
		out = append(out, *svc)
	}
	return out, nil
}

func (m *mockRepository) RenameService(_ context.Context, id, name string) (*domain.Service, error) {
	for _, svc := range m.services {
		if svc.ID == id {
			svc.Name = name
			return svc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepository) DeleteService(_ context.Context, id string) error {
	for slug, svc := range m.services {
		if svc.ID == id {
			delete(m.services, slug)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockRepository) CountReferences(_ context.Context, _ string) (int, int, error) {
	return m.incidentRefs, m.maintenanceRefs, nil
}

// mockInvalidator implements SnapshotInvalidator for testing.
type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) Invalidate() {
	m.calls++
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "API Gateway", "api-gateway"},
		{"diacritics stripped", "Café Búsqueda", "cafe-busqueda"},
		{"punctuation collapses", "Auth  --  Service (v2)", "auth-service-v2"},
		{"leading and trailing trimmed", "  Billing!  ", "billing"},
		{"already a slug", "payments", "payments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("api"))
	assert.True(t, IsValidSlug("api-gateway-v2"))
	assert.False(t, IsValidSlug(""))
	assert.False(t, IsValidSlug("-api"))
	assert.False(t, IsValidSlug("api-"))
	assert.False(t, IsValidSlug("API"))
	assert.False(t, IsValidSlug("api--gateway"))
}

func TestCreateService_DerivesSlug(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	cache := &mockInvalidator{}
	svc := NewService(repo, cache)

	// Act
	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API Gateway"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "api-gateway", created.Slug)
	assert.Equal(t, 1, cache.calls)
}

func TestCreateService_ExplicitSlug(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockInvalidator{})

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API Gateway", Slug: "gw"})

	require.NoError(t, err)
	assert.Equal(t, "gw", created.Slug)
}

func TestCreateService_SlugTaken(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockInvalidator{})
	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API"})
	require.NoError(t, err)

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API"})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreateService_InvalidSlug(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockInvalidator{})

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API", Slug: "Not A Slug"})

	assert.Nil(t, created)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRenameService_KeepsSlug(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockInvalidator{})
	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API"})
	require.NoError(t, err)

	renamed, err := svc.RenameService(context.Background(), "api", "Public API")

	require.NoError(t, err)
	assert.Equal(t, "Public API", renamed.Name)
	assert.Equal(t, "api", renamed.Slug)
}

func TestDeleteService_RefusedWhileReferenced(t *testing.T) {
	repo := newMockRepository()
	cache := &mockInvalidator{}
	svc := NewService(repo, cache)
	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API"})
	require.NoError(t, err)
	repo.incidentRefs = 2
	cache.calls = 0

	err = svc.DeleteService(context.Background(), "api")

	assert.ErrorIs(t, err, ErrServiceInUse)
	assert.Empty(t, repo.deleted)
	assert.Zero(t, cache.calls)
}

func TestDeleteService_Unreferenced(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockInvalidator{})
	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API"})
	require.NoError(t, err)

	err = svc.DeleteService(context.Background(), "api")

	require.NoError(t, err)
	assert.Len(t, repo.deleted, 1)
}

func TestServiceExists(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockInvalidator{})
	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "API"})
	require.NoError(t, err)

	exists, err := svc.ServiceExists(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ServiceExists(context.Background(), "svc-missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
