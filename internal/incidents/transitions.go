package incidents

import "github.com/statuskeeper/statuskeeper/internal/domain"

// CanTransition reports whether an incident may move from one status to
// another. open, investigating and monitoring are freely reachable from
// each other in either direction; resolved is terminal and only
// reachable from investigating or monitoring, so an incident can never
// resolve without having been acknowledged first.
func CanTransition(from, to domain.IncidentStatus) bool {
	if from == to || from == domain.IncidentStatusResolved {
		return false
	}
	if to == domain.IncidentStatusResolved {
		return from == domain.IncidentStatusInvestigating ||
			from == domain.IncidentStatusMonitoring
	}
	switch to {
	case domain.IncidentStatusOpen, domain.IncidentStatusInvestigating,
		domain.IncidentStatusMonitoring:
		return true
	}
	return false
}
