package models

import "time"

// SourceHealth is the tracked state of one content source.
//
// IsEnabled is operator-controlled (and auto-flipped off by the
// circuit breaker); IsOnline is derived from the last successful
// outcome and the configured recency window.
type SourceHealth struct {
	SourceName          string     `json:"source_name"`
	IsEnabled           bool       `json:"is_enabled"`
	IsOnline            bool       `json:"is_online"`
	LastCheck           *time.Time `json:"last_check,omitempty"`
	LastSync            *time.Time `json:"last_sync,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	TotalMovies         int        `json:"total_movies"`
	SuccessRate         float64    `json:"success_rate"`
	AvgResponseTimeMs   float64    `json:"avg_response_time_ms"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}
