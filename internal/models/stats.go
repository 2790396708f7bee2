package models

// DashboardStats is derived from the current event window and never
// persisted; it is a pure function of the events it was computed from.
type DashboardStats struct {
	TotalEvents          int              `json:"totalEvents"`
	CriticalCount        int              `json:"criticalCount"`
	UniqueAgentCount     int              `json:"uniqueAgentCount"`
	SeverityDistribution map[Severity]int `json:"severityDistribution"`
}
