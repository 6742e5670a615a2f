package model

import "time"

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Icon returns the glyph shown next to a notice of this severity.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "✓"
	case SeverityError:
		return "✕"
	case SeverityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// Notification is a session-local, dismissible notice. It is never
// persisted.
type Notification struct {
	// ID is generated locally when the notice is published.
	ID string `json:"id"`

	Severity Severity `json:"severity"`

	// Message is the human-readable notice text.
	Message string `json:"message"`

	// CreatedAt is when the notice was published.
	CreatedAt time.Time `json:"created_at"`

	// Dismissed notices stay in the sink until it is cleared but are not
	// rendered.
	Dismissed bool `json:"dismissed"`
}

// Visible returns the notices that have not been dismissed, preserving
// order.
func Visible(list []Notification) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		if !n.Dismissed {
			out = append(out, n)
		}
	}
	return out
}
