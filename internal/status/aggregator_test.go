package status

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testServices() []domain.Service {
	return []domain.Service{
		{ID: "svc-api", Name: "API", Slug: "api"},
		{ID: "svc-web", Name: "Web", Slug: "web"},
		{ID: "svc-db", Name: "Database", Slug: "database"},
	}
}

func strPtr(s string) *string { return &s }

func findService(t *testing.T, snap *Snapshot, slug string) ServiceState {
	t.Helper()
	for _, s := range snap.Services {
		if s.Slug == slug {
			return s
		}
	}
	t.Fatalf("service %q not in snapshot", slug)
	return ServiceState{}
}

func TestBuildSnapshot_AllOperational(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	snap := BuildSnapshot(now, testServices(), nil, nil, testLogger)

	assert.Equal(t, domain.ServiceStateOperational, snap.OverallState)
	assert.Len(t, snap.Services, 3)
	assert.Empty(t, snap.ActiveIncidents)
	assert.Empty(t, snap.Maintenance)
	assert.True(t, snap.ComputedAt.Equal(now))
}

func TestBuildSnapshot_CriticalIncidentCausesOutage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	incidents := []*domain.Incident{
		{
			ID:        "inc-1",
			ServiceID: "svc-api",
			Title:     "API down",
			Severity:  domain.SeverityCritical,
			Status:    domain.IncidentStatusInvestigating,
			CreatedAt: now.Add(-time.Hour),
		},
	}

	snap := BuildSnapshot(now, testServices(), incidents, nil, testLogger)

	assert.Equal(t, domain.ServiceStateOutage, snap.OverallState)
	assert.Equal(t, domain.ServiceStateOutage, findService(t, snap, "api").State)
	assert.Equal(t, domain.ServiceStateOperational, findService(t, snap, "web").State)
	require.Len(t, snap.ActiveIncidents, 1)
	assert.Equal(t, "API", snap.ActiveIncidents[0].Service)
}

func TestBuildSnapshot_SeverityMapping(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		severity domain.IncidentSeverity
		want     domain.ServiceState
	}{
		{domain.SeverityCritical, domain.ServiceStateOutage},
		{domain.SeverityHigh, domain.ServiceStateOutage},
		{domain.SeverityMedium, domain.ServiceStateDegraded},
		{domain.SeverityLow, domain.ServiceStateDegraded},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			incidents := []*domain.Incident{
				{
					ID:        "inc-1",
					ServiceID: "svc-api",
					Severity:  tt.severity,
					Status:    domain.IncidentStatusOpen,
					CreatedAt: now.Add(-time.Hour),
				},
			}

			snap := BuildSnapshot(now, testServices(), incidents, nil, testLogger)

			assert.Equal(t, tt.want, findService(t, snap, "api").State)
		})
	}
}

func TestBuildSnapshot_WorstSeverityWinsPerService(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	incidents := []*domain.Incident{
		{ID: "inc-1", ServiceID: "svc-api", Severity: domain.SeverityLow, Status: domain.IncidentStatusOpen, CreatedAt: now},
		{ID: "inc-2", ServiceID: "svc-api", Severity: domain.SeverityHigh, Status: domain.IncidentStatusMonitoring, CreatedAt: now},
	}

	snap := BuildSnapshot(now, testServices(), incidents, nil, testLogger)

	assert.Equal(t, domain.ServiceStateOutage, findService(t, snap, "api").State)
	assert.Len(t, snap.ActiveIncidents, 2)
}

func TestBuildSnapshot_MaintenanceInProgress(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []*domain.MaintenanceEvent{
		{
			ID:        "mw-1",
			Title:     "Database upgrade",
			ServiceID: strPtr("svc-db"),
			StartsAt:  now.Add(-time.Hour),
			EndsAt:    now.Add(time.Hour),
		},
	}

	snap := BuildSnapshot(now, testServices(), nil, events, testLogger)

	assert.Equal(t, domain.ServiceStateMaintenance, snap.OverallState)
	assert.Equal(t, domain.ServiceStateMaintenance, findService(t, snap, "database").State)
	assert.Equal(t, domain.ServiceStateOperational, findService(t, snap, "api").State)
	require.Len(t, snap.Maintenance, 1)
	assert.Equal(t, domain.MaintenanceStatusInProgress, snap.Maintenance[0].Status)
	assert.Equal(t, "Database", snap.Maintenance[0].Service)
}

func TestBuildSnapshot_IncidentOutranksMaintenance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	incidents := []*domain.Incident{
		{ID: "inc-1", ServiceID: "svc-db", Severity: domain.SeverityMedium, Status: domain.IncidentStatusOpen, CreatedAt: now},
	}
	events := []*domain.MaintenanceEvent{
		{ID: "mw-1", ServiceID: strPtr("svc-db"), StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
	}

	snap := BuildSnapshot(now, testServices(), incidents, events, testLogger)

	assert.Equal(t, domain.ServiceStateDegraded, findService(t, snap, "database").State)
	assert.Equal(t, domain.ServiceStateDegraded, snap.OverallState)
}

func TestBuildSnapshot_ScheduledMaintenanceListedButHarmless(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []*domain.MaintenanceEvent{
		{
			ID:        "mw-1",
			Title:     "Planned upgrade",
			ServiceID: strPtr("svc-db"),
			StartsAt:  now.Add(24 * time.Hour),
			EndsAt:    now.Add(26 * time.Hour),
		},
	}

	snap := BuildSnapshot(now, testServices(), nil, events, testLogger)

	assert.Equal(t, domain.ServiceStateOperational, snap.OverallState)
	assert.Equal(t, domain.ServiceStateOperational, findService(t, snap, "database").State)
	require.Len(t, snap.Maintenance, 1)
	assert.Equal(t, domain.MaintenanceStatusScheduled, snap.Maintenance[0].Status)
}

func TestBuildSnapshot_CancelledAndCompletedExcluded(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cancelledAt := now.Add(-time.Hour)
	events := []*domain.MaintenanceEvent{
		{
			ID:          "mw-cancelled",
			ServiceID:   strPtr("svc-db"),
			StartsAt:    now.Add(-time.Hour),
			EndsAt:      now.Add(time.Hour),
			CancelledAt: &cancelledAt,
		},
		{
			ID:        "mw-completed",
			ServiceID: strPtr("svc-db"),
			StartsAt:  now.Add(-3 * time.Hour),
			EndsAt:    now.Add(-time.Hour),
		},
	}

	snap := BuildSnapshot(now, testServices(), nil, events, testLogger)

	assert.Equal(t, domain.ServiceStateOperational, snap.OverallState)
	assert.Empty(t, snap.Maintenance)
}

func TestBuildSnapshot_AllServicesMaintenance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []*domain.MaintenanceEvent{
		{
			ID:           "mw-1",
			Title:        "Network maintenance",
			AppliesToAll: true,
			StartsAt:     now.Add(-time.Hour),
			EndsAt:       now.Add(time.Hour),
		},
	}

	snap := BuildSnapshot(now, testServices(), nil, events, testLogger)

	for _, s := range snap.Services {
		assert.Equal(t, domain.ServiceStateMaintenance, s.State, "service %s", s.Slug)
	}
	require.Len(t, snap.Maintenance, 1)
	assert.Empty(t, snap.Maintenance[0].Service, "all-services events carry no service name")
}

func TestBuildSnapshot_RedactsInternalFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assignee := "oncall@example.com"
	incidents := []*domain.Incident{
		{
			ID:          "inc-1",
			ServiceID:   "svc-api",
			Title:       "API latency",
			Description: "internal details",
			Severity:    domain.SeverityHigh,
			Status:      domain.IncidentStatusInvestigating,
			Assignee:    &assignee,
			RootCause:   "secret root cause",
			CreatedBy:   "operator-1",
			CreatedAt:   now.Add(-time.Hour),
		},
	}

	snap := BuildSnapshot(now, testServices(), incidents, nil, testLogger)

	require.Len(t, snap.ActiveIncidents, 1)
	pub := snap.ActiveIncidents[0]
	assert.Equal(t, "API latency", pub.Title)
	assert.Equal(t, domain.SeverityHigh, pub.Severity)
	assert.Equal(t, domain.IncidentStatusInvestigating, pub.Status)
	assert.Equal(t, "API", pub.Service)
	assert.True(t, pub.StartedAt.Equal(incidents[0].CreatedAt))
}

func TestBuildSnapshot_SkipsMalformedRecords(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	incidents := []*domain.Incident{
		{ID: "inc-orphan", ServiceID: "svc-gone", Severity: domain.SeverityCritical, Status: domain.IncidentStatusOpen, CreatedAt: now},
		{ID: "inc-resolved", ServiceID: "svc-api", Severity: domain.SeverityCritical, Status: domain.IncidentStatusResolved, CreatedAt: now},
		{ID: "inc-bad-sev", ServiceID: "svc-api", Severity: domain.IncidentSeverity("apocalyptic"), Status: domain.IncidentStatusOpen, CreatedAt: now},
		{ID: "inc-ok", ServiceID: "svc-api", Severity: domain.SeverityLow, Status: domain.IncidentStatusOpen, CreatedAt: now},
	}
	events := []*domain.MaintenanceEvent{
		{ID: "mw-inverted", ServiceID: strPtr("svc-api"), StartsAt: now, EndsAt: now.Add(-time.Hour)},
	}

	snap := BuildSnapshot(now, testServices(), incidents, events, testLogger)

	require.Len(t, snap.ActiveIncidents, 1)
	assert.Equal(t, domain.ServiceStateDegraded, findService(t, snap, "api").State)
	assert.Empty(t, snap.Maintenance)
}

func TestWorseOf_RollupOrder(t *testing.T) {
	states := []domain.ServiceState{
		domain.ServiceStateOperational,
		domain.ServiceStateMaintenance,
		domain.ServiceStateDegraded,
		domain.ServiceStateOutage,
	}

	for i, a := range states {
		for j, b := range states {
			want := a
			if j > i {
				want = b
			}
			assert.Equal(t, want, domain.WorseOf(a, b), "WorseOf(%s, %s)", a, b)
		}
	}
}
