package models

import "time"

type Notification struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	TargetType string    `json:"target_type"`
	SentCount  int       `json:"sent_count"`
	SentAt     time.Time `json:"sent_at"`
	SentBy     string    `json:"sent_by,omitempty"`
}
