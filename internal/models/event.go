package models

import "time"

// Event represents an organizer-owned volunteer event.
type Event struct {
	ID          string    `db:"id" json:"id"`
	OrganizerID string    `db:"organizer_id" json:"organizer_id"`
	Name        string    `db:"name" json:"name"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Location    string    `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EventFilter describes query params for listing events.
type EventFilter struct {
	OrganizerID string
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
