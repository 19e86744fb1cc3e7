package dto

import (
	"github.com/crewcall/crewcall-api/internal/models"
	"github.com/crewcall/crewcall-api/pkg/geo"
)

// CheckInState names the stage a check-in flow has reached.
type CheckInState string

const (
	StateUninitialized       CheckInState = "uninitialized"
	StateResolvingPosition   CheckInState = "resolving_position"
	StatePositionNotFound    CheckInState = "position_not_found"
	StatePositionReady       CheckInState = "position_ready"
	StateLoadingVolunteers   CheckInState = "loading_volunteers"
	StateNoEligibleVolunteer CheckInState = "no_eligible_volunteers"
	StateAwaitingSelection   CheckInState = "awaiting_selection"
	StateSubmitting          CheckInState = "submitting"
	StateSucceeded           CheckInState = "succeeded"
	StateFailed              CheckInState = "failed"
)

// CheckInContext is the payload an operator sees after a position link
// resolves: the position, its event, the eligible volunteers and the
// advisory proximity hint.
type CheckInContext struct {
	State      CheckInState           `json:"state"`
	Position   *models.PositionDetail `json:"position,omitempty"`
	Volunteers []models.Signup        `json:"volunteers"`
	Proximity  ProximityHint          `json:"proximity"`
}

// ProximityHint surfaces the advisory gate result; it never disables the
// check-in action.
type ProximityHint struct {
	Hint            geo.Hint `json:"hint"`
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
	ThresholdMeters float64  `json:"threshold_meters"`
}

// CheckInResult reports a completed arrival submission with the refreshed
// eligible list.
type CheckInResult struct {
	State      CheckInState    `json:"state"`
	SignupID   string          `json:"signup_id"`
	Volunteers []models.Signup `json:"volunteers"`
}
