package models

import "time"

// IssueType classifies a live feed entry.
type IssueType string

const (
	IssueInfo    IssueType = "info"
	IssueWarning IssueType = "warning"
	IssueError   IssueType = "error"
)

// Issue is an ephemeral notification surfaced on the live dashboard feed.
// Issues are never persisted; they live only inside the bounded feed buffer
// and are evicted oldest-first once the buffer is full.
type Issue struct {
	ID           string    `json:"id"`
	Type         IssueType `json:"type"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	PositionID   string    `json:"position_id,omitempty"`
	PositionName string    `json:"position_name,omitempty"`
	EventID      string    `json:"event_id,omitempty"`
}

// Scoped reports whether the issue references a specific event. Unscoped
// issues are shown regardless of the active event filter.
func (i Issue) Scoped() bool {
	return i.EventID != ""
}
