package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/crewcall/crewcall-api/internal/middleware"
	"github.com/crewcall/crewcall-api/internal/models"
)

// claimsFromContext returns the authenticated organizer, or nil on
// unauthenticated routes.
func claimsFromContext(c *gin.Context) *models.OrganizerClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.OrganizerClaims)
	if !ok {
		return nil
	}
	return claims
}
