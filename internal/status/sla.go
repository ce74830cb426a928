package status

import (
	"time"

	"github.com/statuskeeper/statuskeeper/internal/domain"
)

// StartOfDay returns midnight of now's calendar day in the reporting
// timezone. The reporting window resets implicitly at local-day
// rollover because the SLA filter is relative to this instant.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ComputeDayMetrics computes today's rolling SLA aggregates over the
// incidents created within [dayStart, now]. Incidents without a first
// response (or not yet resolved) simply do not contribute to the
// corresponding mean; an empty contributing set yields 0.
func ComputeDayMetrics(dayStart time.Time, incidents []*domain.Incident) Metrics {
	var (
		responseSum   float64
		responseCount int
		resolveSum    float64
		resolveCount  int
	)

	for _, inc := range incidents {
		if inc.CreatedAt.Before(dayStart) {
			continue
		}
		if inc.FirstResponseAt != nil {
			responseSum += inc.FirstResponseAt.Sub(inc.CreatedAt).Minutes()
			responseCount++
		}
		if inc.Status == domain.IncidentStatusResolved && inc.ResolvedAt != nil {
			resolveSum += inc.ResolvedAt.Sub(inc.CreatedAt).Minutes()
			resolveCount++
		}
	}

	var m Metrics
	if responseCount > 0 {
		m.AvgFirstResponseMinutesToday = responseSum / float64(responseCount)
	}
	if resolveCount > 0 {
		m.AvgResolveMinutesToday = resolveSum / float64(resolveCount)
	}
	return m
}
