package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crewcall/crewcall-api/internal/service"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/response"
)

// ExportHandler serves roster export generation and signed downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Generate godoc
// @Summary Generate a roster export for an event
// @Tags Exports
// @Produce json
// @Param id path string true "Event ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {object} response.Envelope
// @Router /events/{id}/roster [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	ticket, err := h.service.GenerateRoster(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// Download godoc
// @Summary Download a generated roster export
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	path, err := h.service.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(path))
	c.Status(http.StatusOK)
	c.File(path)
}
