package dto

import "github.com/crewcall/crewcall-api/internal/models"

// DashboardPositions is the map/list payload for the operational dashboard.
type DashboardPositions struct {
	EventID      string                   `json:"event_id,omitempty"`
	Positions    []models.PositionSummary `json:"positions"`
	Understaffed int                      `json:"understaffed"`
}

// DashboardIssues is the filtered view of the live issue feed.
type DashboardIssues struct {
	EventID string         `json:"event_id,omitempty"`
	Issues  []models.Issue `json:"issues"`
}

// Selection carries the persisted event filter for a dashboard owner.
type Selection struct {
	EventID string `json:"event_id"`
}

// ExportTicket references a generated roster export and its signed download URL.
type ExportTicket struct {
	FileName  string `json:"file_name"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
