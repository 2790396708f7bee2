// Package stats derives dashboard statistics from an event collection.
package stats

import "github.com/cybervision/siem/backend/internal/models"

// Compute aggregates events into DashboardStats in a single pass.
// Agent names are compared exactly, with no normalization.
func Compute(events []models.SecurityEvent) models.DashboardStats {
	agents := make(map[string]struct{})
	dist := make(map[models.Severity]int)
	critical := 0

	for _, ev := range events {
		agents[ev.AgentName] = struct{}{}
		dist[ev.Severity]++
		if ev.Severity == models.SeverityCritical {
			critical++
		}
	}

	return models.DashboardStats{
		TotalEvents:          len(events),
		CriticalCount:        critical,
		UniqueAgentCount:     len(agents),
		SeverityDistribution: dist,
	}
}
