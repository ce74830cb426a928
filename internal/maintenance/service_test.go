package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	events map[string]*domain.MaintenanceEvent

	lastExpectedVersion int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{events: make(map[string]*domain.MaintenanceEvent)}
}

func (m *mockRepository) CreateMaintenance(_ context.Context, event *domain.MaintenanceEvent) error {
	event.ID = "test-maintenance-id"
	event.CreatedAt = time.Now()
	event.Version = 1
	m.events[event.ID] = event
	return nil
}

func (m *mockRepository) GetMaintenance(_ context.Context, id string) (*domain.MaintenanceEvent, error) {
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *ev
	return &copied, nil
}

func (m *mockRepository) ListMaintenance(_ context.Context, _ Window) ([]*domain.MaintenanceEvent, error) {
	out := make([]*domain.MaintenanceEvent, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}

func (m *mockRepository) CancelMaintenance(_ context.Context, id string, expectedVersion int64, cancelledAt time.Time) (*domain.MaintenanceEvent, error) {
	m.lastExpectedVersion = expectedVersion
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if ev.Version != expectedVersion {
		return nil, domain.ErrConflict
	}
	ev.CancelledAt = &cancelledAt
	ev.Version++
	copied := *ev
	return &copied, nil
}

// mockDirectory implements ServiceDirectory for testing.
type mockDirectory struct {
	existing map[string]bool
}

func (m *mockDirectory) ServiceExists(_ context.Context, id string) (bool, error) {
	return m.existing[id], nil
}

// mockInvalidator implements SnapshotInvalidator for testing.
type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) Invalidate() {
	m.calls++
}

func newTestService(repo *mockRepository) (*Service, *mockInvalidator) {
	cache := &mockInvalidator{}
	svc := NewService(repo, &mockDirectory{existing: map[string]bool{"svc-1": true}}, cache)
	return svc, cache
}

func strPtr(s string) *string { return &s }

func TestSchedule_Success(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	svc, cache := newTestService(repo)
	starts := time.Now().Add(time.Hour)

	// Act
	ev, err := svc.Schedule(context.Background(), ScheduleInput{
		Title:     "Database upgrade",
		ServiceID: strPtr("svc-1"),
		StartsAt:  starts,
		EndsAt:    starts.Add(2 * time.Hour),
	}, "operator-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Database upgrade", ev.Title)
	assert.Nil(t, ev.CancelledAt)
	assert.Equal(t, 1, cache.calls)
}

func TestSchedule_AllServicesScope(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)
	starts := time.Now().Add(time.Hour)

	ev, err := svc.Schedule(context.Background(), ScheduleInput{
		Title:        "Network maintenance",
		AppliesToAll: true,
		ServiceID:    strPtr("svc-1"), // ignored when applies_to_all is set
		StartsAt:     starts,
		EndsAt:       starts.Add(time.Hour),
	}, "operator-1")

	require.NoError(t, err)
	assert.True(t, ev.AppliesToAll)
	assert.Nil(t, ev.ServiceID)
}

func TestSchedule_EndBeforeStart(t *testing.T) {
	repo := newMockRepository()
	svc, cache := newTestService(repo)
	starts := time.Now().Add(time.Hour)

	ev, err := svc.Schedule(context.Background(), ScheduleInput{
		Title:     "Database upgrade",
		ServiceID: strPtr("svc-1"),
		StartsAt:  starts,
		EndsAt:    starts.Add(-time.Minute),
	}, "operator-1")

	assert.Nil(t, ev)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, cache.calls)
}

func TestSchedule_ZeroLengthWindow(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)
	starts := time.Now().Add(time.Hour)

	ev, err := svc.Schedule(context.Background(), ScheduleInput{
		Title:     "Database upgrade",
		ServiceID: strPtr("svc-1"),
		StartsAt:  starts,
		EndsAt:    starts,
	}, "operator-1")

	assert.Nil(t, ev)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSchedule_MissingScope(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)
	starts := time.Now().Add(time.Hour)

	ev, err := svc.Schedule(context.Background(), ScheduleInput{
		Title:    "Database upgrade",
		StartsAt: starts,
		EndsAt:   starts.Add(time.Hour),
	}, "operator-1")

	assert.Nil(t, ev)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSchedule_UnknownService(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)
	starts := time.Now().Add(time.Hour)

	ev, err := svc.Schedule(context.Background(), ScheduleInput{
		Title:     "Database upgrade",
		ServiceID: strPtr("svc-missing"),
		StartsAt:  starts,
		EndsAt:    starts.Add(time.Hour),
	}, "operator-1")

	assert.Nil(t, ev)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCancel_ScheduledEvent(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.events["mw-1"] = &domain.MaintenanceEvent{
		ID:       "mw-1",
		Title:    "Database upgrade",
		StartsAt: now.Add(time.Hour),
		EndsAt:   now.Add(3 * time.Hour),
		Version:  2,
	}
	svc, cache := newTestService(repo)
	svc.now = func() time.Time { return now }

	// Act
	cancelled, err := svc.Cancel(context.Background(), "mw-1", "operator-1")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, cancelled.CancelledAt.Equal(now))
	assert.Equal(t, domain.MaintenanceStatusCancelled, cancelled.EffectiveStatus(now))
	assert.Equal(t, int64(2), repo.lastExpectedVersion)
	assert.Equal(t, 1, cache.calls)
}

func TestCancel_InProgressEvent(t *testing.T) {
	repo := newMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.events["mw-1"] = &domain.MaintenanceEvent{
		ID:       "mw-1",
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Version:  1,
	}
	svc, _ := newTestService(repo)
	svc.now = func() time.Time { return now }

	cancelled, err := svc.Cancel(context.Background(), "mw-1", "operator-1")

	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestCancel_CompletedEvent(t *testing.T) {
	repo := newMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.events["mw-1"] = &domain.MaintenanceEvent{
		ID:       "mw-1",
		StartsAt: now.Add(-3 * time.Hour),
		EndsAt:   now.Add(-time.Hour),
		Version:  1,
	}
	svc, cache := newTestService(repo)
	svc.now = func() time.Time { return now }

	cancelled, err := svc.Cancel(context.Background(), "mw-1", "operator-1")

	assert.Nil(t, cancelled)
	var serr *domain.InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "completed", serr.Current)
	assert.Zero(t, cache.calls)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	repo := newMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)
	repo.events["mw-1"] = &domain.MaintenanceEvent{
		ID:          "mw-1",
		StartsAt:    now.Add(time.Hour),
		EndsAt:      now.Add(3 * time.Hour),
		CancelledAt: &earlier,
		Version:     2,
	}
	svc, _ := newTestService(repo)
	svc.now = func() time.Time { return now }

	cancelled, err := svc.Cancel(context.Background(), "mw-1", "operator-1")

	assert.Nil(t, cancelled)
	var serr *domain.InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

func TestCancel_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)

	cancelled, err := svc.Cancel(context.Background(), "mw-missing", "operator-1")

	assert.Nil(t, cancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cancelledAt := now.Add(-time.Hour)

	tests := []struct {
		name  string
		event domain.MaintenanceEvent
		want  domain.MaintenanceStatus
	}{
		{
			"before window",
			domain.MaintenanceEvent{StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour)},
			domain.MaintenanceStatusScheduled,
		},
		{
			"inside window",
			domain.MaintenanceEvent{StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
			domain.MaintenanceStatusInProgress,
		},
		{
			"at start boundary",
			domain.MaintenanceEvent{StartsAt: now, EndsAt: now.Add(time.Hour)},
			domain.MaintenanceStatusInProgress,
		},
		{
			"at end boundary",
			domain.MaintenanceEvent{StartsAt: now.Add(-time.Hour), EndsAt: now},
			domain.MaintenanceStatusCompleted,
		},
		{
			"after window",
			domain.MaintenanceEvent{StartsAt: now.Add(-2 * time.Hour), EndsAt: now.Add(-time.Hour)},
			domain.MaintenanceStatusCompleted,
		},
		{
			"cancelled dominates even inside window",
			domain.MaintenanceEvent{StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), CancelledAt: &cancelledAt},
			domain.MaintenanceStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.EffectiveStatus(now))
		})
	}
}
