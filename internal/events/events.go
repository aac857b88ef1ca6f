package events

import "time"

// Admin event types broadcast to dashboard and pipeline clients.
const (
	TypeSourceTripped    = "source.tripped"
	TypeSourceToggled    = "source.toggled"
	TypeErrorRecorded    = "error.recorded"
	TypeLinkCreated      = "link.created"
	TypeLinkDeleted      = "link.deleted"
	TypeNotificationSent = "notification.sent"
	TypeSyncReported     = "sync.reported"
)

// AdminEvent is the line-JSON payload pushed over the websocket and
// TCP feeds whenever operator-relevant state changes.
type AdminEvent struct {
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
	// RefID points at the entity the event concerns (error id,
	// manual link id, ...) so the dashboard can deep-link.
	RefID string    `json:"ref_id,omitempty"`
	At    time.Time `json:"at"`
}

func SourceTripped(source, message string) AdminEvent {
	return AdminEvent{
		Type:     TypeSourceTripped,
		Source:   source,
		Severity: "critical",
		Message:  message,
		At:       time.Now().UTC(),
	}
}

func SourceToggled(source string, enabled bool) AdminEvent {
	msg := "source disabled by operator"
	if enabled {
		msg = "source enabled by operator"
	}
	return AdminEvent{
		Type:    TypeSourceToggled,
		Source:  source,
		Message: msg,
		At:      time.Now().UTC(),
	}
}

func ErrorRecorded(id, source, severity, message string) AdminEvent {
	return AdminEvent{
		Type:     TypeErrorRecorded,
		Source:   source,
		Severity: severity,
		Message:  message,
		RefID:    id,
		At:       time.Now().UTC(),
	}
}
