package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crewcall/crewcall-api/internal/dto"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/response"
)

type dashboardService interface {
	Positions(ctx context.Context, eventID string) (*dto.DashboardPositions, bool, error)
	Issues(ctx context.Context, eventID string) (*dto.DashboardIssues, error)
	Selection(ctx context.Context) (*dto.Selection, error)
	Select(ctx context.Context, eventID string) (*dto.Selection, error)
}

// DashboardHandler exposes the live operational dashboard.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Positions godoc
// @Summary Dashboard position map
// @Tags Dashboard
// @Produce json
// @Param eventId query string false "Event filter override"
// @Success 200 {object} response.Envelope
// @Router /dashboard/positions [get]
func (h *DashboardHandler) Positions(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	payload, cacheHit, err := h.service.Positions(c.Request.Context(), strings.TrimSpace(c.Query("eventId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// Issues godoc
// @Summary Live issue feed
// @Tags Dashboard
// @Produce json
// @Param eventId query string false "Event filter override"
// @Success 200 {object} response.Envelope
// @Router /dashboard/issues [get]
func (h *DashboardHandler) Issues(c *gin.Context) {
	payload, err := h.service.Issues(c.Request.Context(), strings.TrimSpace(c.Query("eventId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// GetSelection godoc
// @Summary Current event selection
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/selection [get]
func (h *DashboardHandler) GetSelection(c *gin.Context) {
	selection, err := h.service.Selection(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection, nil)
}

// SetSelection godoc
// @Summary Persist the event selection
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body dto.Selection true "Selection (empty event_id clears)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/selection [put]
func (h *DashboardHandler) SetSelection(c *gin.Context) {
	var req dto.Selection
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "invalid payload"))
		return
	}
	selection, err := h.service.Select(c.Request.Context(), req.EventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection, nil)
}
