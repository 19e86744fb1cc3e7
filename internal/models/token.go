package models

import "github.com/golang-jwt/jwt/v5"

// OrganizerClaims are the JWT claims attached by the upstream identity
// provider. Token issuance and sessions live outside this service; the API
// only validates tokens and reads the organizer identity.
type OrganizerClaims struct {
	OrganizerID string `json:"organizer_id"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}
