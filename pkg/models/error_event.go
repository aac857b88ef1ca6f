package models

import "time"

// Error event severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// NormalizeSeverity maps unknown severities to info so that recording
// never fails on bad input from a scraper.
func NormalizeSeverity(s string) string {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return s
	default:
		return SeverityInfo
	}
}

// ErrorEvent is one append-only entry in the error ledger.
// Resolved is the only field that may change after creation.
type ErrorEvent struct {
	ID         string         `json:"id"`
	Severity   string         `json:"severity"`
	Source     string         `json:"source"`
	ErrorType  string         `json:"error_type,omitempty"`
	Message    string         `json:"message"`
	StackTrace string         `json:"stack_trace,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	Resolved   bool           `json:"resolved"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy string         `json:"resolved_by,omitempty"`
}
