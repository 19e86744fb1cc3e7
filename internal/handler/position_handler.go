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

// PositionHandler handles staffing position endpoints.
type PositionHandler struct {
	service *service.PositionService
	importer *service.ImportService
}

// NewPositionHandler constructs a position handler.
func NewPositionHandler(svc *service.PositionService, importer *service.ImportService) *PositionHandler {
	return &PositionHandler{service: svc, importer: importer}
}

// List godoc
// @Summary List positions
// @Tags Positions
// @Produce json
// @Param eventId query string false "Filter by event"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /positions [get]
func (h *PositionHandler) List(c *gin.Context) {
	var filter models.PositionFilter
	filter.EventID = strings.TrimSpace(c.Query("eventId"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	positions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, positions, pagination)
}

// Get godoc
// @Summary Get position by id
// @Tags Positions
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} response.Envelope
// @Router /positions/{id} [get]
func (h *PositionHandler) Get(c *gin.Context) {
	position, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}

// Create godoc
// @Summary Create position
// @Tags Positions
// @Accept json
// @Produce json
// @Param payload body service.CreatePositionRequest true "Position payload"
// @Success 201 {object} response.Envelope
// @Router /positions [post]
func (h *PositionHandler) Create(c *gin.Context) {
	var req service.CreatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	position, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, position)
}

// Update godoc
// @Summary Update position
// @Tags Positions
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param payload body service.UpdatePositionRequest true "Position payload"
// @Success 200 {object} response.Envelope
// @Router /positions/{id} [put]
func (h *PositionHandler) Update(c *gin.Context) {
	var req service.UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	position, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}

// Delete godoc
// @Summary Delete position
// @Tags Positions
// @Param id path string true "Position ID"
// @Success 204
// @Router /positions/{id} [delete]
func (h *PositionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportRoster godoc
// @Summary Import a roster CSV for a position
// @Tags Positions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Position ID"
// @Param file formData file true "Roster CSV"
// @Success 200 {object} response.Envelope
// @Router /positions/{id}/roster/import [post]
func (h *PositionHandler) ImportRoster(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster file is required"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.importer.ImportCSV(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
