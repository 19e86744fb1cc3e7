package models

import "time"

// Signup is a volunteer's registration for a time window at a position.
// Arrived is the durable source of truth for check-in; once set it is
// terminal within the check-in flow.
type Signup struct {
	ID            string    `db:"id" json:"id"`
	PositionID    string    `db:"position_id" json:"position_id"`
	VolunteerName string    `db:"volunteer_name" json:"volunteer_name"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	StartTime     time.Time `db:"start_time" json:"start_time"`
	EndTime       time.Time `db:"end_time" json:"end_time"`
	Arrived       bool      `db:"arrived" json:"arrived"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SignupFilter describes query params for listing signups.
type SignupFilter struct {
	PositionID string
	Arrived    *bool
	Page       int
	PageSize   int
}

// RosterRow is a flattened signup used by roster exports.
type RosterRow struct {
	PositionName  string    `db:"position_name"`
	VolunteerName string    `db:"volunteer_name"`
	Email         *string   `db:"email"`
	Phone         *string   `db:"phone"`
	StartTime     time.Time `db:"start_time"`
	EndTime       time.Time `db:"end_time"`
	Arrived       bool      `db:"arrived"`
}

// SignupNotice is the payload pushed on the signup notification channel
// whenever a new signup row is created.
type SignupNotice struct {
	PositionID    string `json:"position_id"`
	VolunteerName string `json:"volunteer_name"`
}
