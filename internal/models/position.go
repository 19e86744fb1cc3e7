package models

import "time"

// Position is a staffing slot at an event. Filled tracks the count of
// arrived volunteers; it is maintained from signups rather than trusted as
// an independent counter, and may exceed Needed when over-assigned.
type Position struct {
	ID          string    `db:"id" json:"id"`
	EventID     string    `db:"event_id" json:"event_id"`
	Name        string    `db:"name" json:"name"`
	Needed      int       `db:"needed" json:"needed"`
	Filled      int       `db:"filled" json:"filled"`
	Description *string   `db:"description" json:"description,omitempty"`
	SkillLevel  *string   `db:"skill_level" json:"skill_level,omitempty"`
	Latitude    *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Understaffed reports whether the position still needs volunteers.
func (p Position) Understaffed() bool {
	return p.Filled < p.Needed
}

// PositionDetail joins a position with its parent event fields, fetched in
// a single read when resolving a check-in link.
type PositionDetail struct {
	Position
	EventName     string `db:"event_name" json:"event_name"`
	EventDate     string `db:"event_date" json:"event_date"`
	EventTime     string `db:"event_time" json:"event_time"`
	EventLocation string `db:"event_location" json:"event_location"`
}

// PositionSummary is the dashboard map/list projection of a position.
type PositionSummary struct {
	ID        string   `db:"id" json:"id"`
	EventID   string   `db:"event_id" json:"event_id"`
	EventName string   `db:"event_name" json:"event_name"`
	Name      string   `db:"name" json:"name"`
	Needed    int      `db:"needed" json:"needed"`
	Filled    int      `db:"filled" json:"filled"`
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`
}

// Understaffed reports whether the summarised position still needs volunteers.
func (p PositionSummary) Understaffed() bool {
	return p.Filled < p.Needed
}

// PositionFilter describes query params for listing positions.
type PositionFilter struct {
	EventID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
