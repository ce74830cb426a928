// Package status derives the public status snapshot and SLA metrics
// from the current incident and maintenance record set.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config controls aggregation behavior.
type Config struct {
	// ReportingLocation is the timezone defining "today" for SLA metrics.
	ReportingLocation *time.Location

	// ScheduledLookahead bounds the forward-looking maintenance list.
	ScheduledLookahead time.Duration
}

// Service exposes the snapshot and metrics queries.
type Service struct {
	repo   Repository
	cache  *Cache
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new status service.
func NewService(repo Repository, cache *Cache, cfg Config, logger *slog.Logger) *Service {
	if cfg.ReportingLocation == nil {
		cfg.ReportingLocation = time.UTC
	}
	if cfg.ScheduledLookahead <= 0 {
		cfg.ScheduledLookahead = 7 * 24 * time.Hour
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// PublicSnapshot returns the current snapshot, served from cache when no
// mutation occurred since it was built. The query is read-only and safe
// to call anonymously; redaction happens inside the aggregator.
func (s *Service) PublicSnapshot(ctx context.Context) (*Snapshot, error) {
	return s.cache.Snapshot(ctx, s.rebuild)
}

func (s *Service) rebuild(ctx context.Context) (*Snapshot, error) {
	now := s.now()

	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	incidents, err := s.repo.ListActiveIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}

	events, err := s.repo.ListMaintenanceOverlapping(ctx, now, now.Add(s.cfg.ScheduledLookahead))
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}

	return BuildSnapshot(now, services, incidents, events, s.logger), nil
}

// TodayMetrics computes today's SLA aggregates on demand. They are
// deliberately not cached across reads: the day window is relative to
// now, so caching would need day-rollover invalidation for no gain.
func (s *Service) TodayMetrics(ctx context.Context) (Metrics, error) {
	dayStart := StartOfDay(s.now(), s.cfg.ReportingLocation)

	incidents, err := s.repo.ListIncidentsCreatedSince(ctx, dayStart)
	if err != nil {
		return Metrics{}, fmt.Errorf("list today's incidents: %w", err)
	}

	return ComputeDayMetrics(dayStart, incidents), nil
}
