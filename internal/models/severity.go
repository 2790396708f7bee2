package models

import "fmt"

// Severity is the closed set of risk levels attached to events and analyses.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists all levels in ascending order of risk.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank returns the position of s in the ordered level set, 0 for low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// ParseSeverity validates a raw severity label.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// LevelThresholds maps collector numeric rule levels onto severities.
// The zero value is not usable; DefaultLevelThresholds matches the
// thresholds the stock collector ships with.
type LevelThresholds struct {
	Critical int
	High     int
	Medium   int
}

// DefaultLevelThresholds mirrors the stock collector classification.
func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{Critical: 12, High: 10, Medium: 5}
}

// SeverityFromLevel classifies a numeric rule level using t.
func SeverityFromLevel(level int, t LevelThresholds) Severity {
	switch {
	case level >= t.Critical:
		return SeverityCritical
	case level >= t.High:
		return SeverityHigh
	case level >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
