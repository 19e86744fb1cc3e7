package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crewcall/crewcall-api/internal/models"
	"github.com/crewcall/crewcall-api/internal/service"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/response"
)

// SignupHandler handles volunteer signup endpoints.
type SignupHandler struct {
	service *service.SignupService
}

// NewSignupHandler constructs a signup handler.
func NewSignupHandler(svc *service.SignupService) *SignupHandler {
	return &SignupHandler{service: svc}
}

// List godoc
// @Summary List signups
// @Tags Signups
// @Produce json
// @Param positionId query string false "Filter by position"
// @Param arrived query bool false "Filter by arrival state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /signups [get]
func (h *SignupHandler) List(c *gin.Context) {
	var filter models.SignupFilter
	filter.PositionID = strings.TrimSpace(c.Query("positionId"))
	if raw := c.Query("arrived"); raw != "" {
		if arrived, err := strconv.ParseBool(raw); err == nil {
			filter.Arrived = &arrived
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	signups, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signups, pagination)
}

// Create godoc
// @Summary Create signup
// @Tags Signups
// @Accept json
// @Produce json
// @Param payload body service.CreateSignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Router /signups [post]
func (h *SignupHandler) Create(c *gin.Context) {
	var req service.CreateSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	signup, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, signup)
}

// Delete godoc
// @Summary Delete signup
// @Tags Signups
// @Param id path string true "Signup ID"
// @Success 204
// @Router /signups/{id} [delete]
func (h *SignupHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
