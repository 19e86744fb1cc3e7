package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crewcall/crewcall-api/internal/dto"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/geo"
	"github.com/crewcall/crewcall-api/pkg/response"
)

type checkInService interface {
	Resolve(ctx context.Context, positionID string, userLocation *geo.Point) (*dto.CheckInContext, error)
	Submit(ctx context.Context, positionID, signupID string) (*dto.CheckInResult, error)
}

// CheckInHandler exposes the QR-linked check-in flow.
type CheckInHandler struct {
	service checkInService
}

// NewCheckInHandler constructs the handler.
func NewCheckInHandler(svc checkInService) *CheckInHandler {
	return &CheckInHandler{service: svc}
}

// Resolve godoc
// @Summary Resolve a check-in link
// @Tags CheckIn
// @Produce json
// @Param positionId path string true "Position ID"
// @Param lat query number false "Operator latitude"
// @Param lon query number false "Operator longitude"
// @Success 200 {object} response.Envelope
// @Router /checkin/{positionId} [get]
func (h *CheckInHandler) Resolve(c *gin.Context) {
	location := locationFromQuery(c)
	result, err := h.service.Resolve(c.Request.Context(), c.Param("positionId"), location)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SubmitCheckInRequest selects the signup to mark arrived.
type SubmitCheckInRequest struct {
	SignupID string `json:"signup_id"`
}

// Submit godoc
// @Summary Mark the selected volunteer as arrived
// @Tags CheckIn
// @Accept json
// @Produce json
// @Param positionId path string true "Position ID"
// @Param payload body SubmitCheckInRequest true "Selection"
// @Success 200 {object} response.Envelope
// @Router /checkin/{positionId} [post]
func (h *CheckInHandler) Submit(c *gin.Context) {
	var req SubmitCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "invalid payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), c.Param("positionId"), req.SignupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// locationFromQuery reads optional operator coordinates. Geolocation denial
// or timeout on the client simply omits the params; malformed values are
// treated the same way (proceed without location, never block).
func locationFromQuery(c *gin.Context) *geo.Point {
	latRaw := c.Query("lat")
	lonRaw := c.Query("lon")
	if latRaw == "" || lonRaw == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil
	}
	return &geo.Point{Latitude: lat, Longitude: lon}
}
