package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewcall/crewcall-api/internal/dto"
	"github.com/crewcall/crewcall-api/internal/models"
)

type fakeDashboardSrv struct {
	positions    *dto.DashboardPositions
	positionsHit bool
	positionsErr error
	issues       *dto.DashboardIssues
	selection    *dto.Selection
	selectErr    error
	gotEventID   string
	selectedID   string
}

func (f *fakeDashboardSrv) Positions(_ context.Context, eventID string) (*dto.DashboardPositions, bool, error) {
	f.gotEventID = eventID
	return f.positions, f.positionsHit, f.positionsErr
}

func (f *fakeDashboardSrv) Issues(_ context.Context, eventID string) (*dto.DashboardIssues, error) {
	f.gotEventID = eventID
	return f.issues, nil
}

func (f *fakeDashboardSrv) Selection(context.Context) (*dto.Selection, error) {
	return f.selection, nil
}

func (f *fakeDashboardSrv) Select(_ context.Context, eventID string) (*dto.Selection, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	f.selectedID = eventID
	return &dto.Selection{EventID: eventID}, nil
}

func TestDashboardHandlerPositions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{
		positions: &dto.DashboardPositions{
			EventID:      "event-1",
			Positions:    []models.PositionSummary{{ID: "pos-1", Name: "Water Station", Needed: 3, Filled: 1}},
			Understaffed: 1,
		},
		positionsHit: true,
	}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/positions?eventId=event-1", nil)

	handler.Positions(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event-1", srv.gotEventID)

	var envelope struct {
		Data dto.DashboardPositions `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Understaffed)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestDashboardHandlerIssues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{
		issues: &dto.DashboardIssues{Issues: []models.Issue{{ID: "is-1", Type: models.IssueWarning, Message: "Water Station is understaffed (1/3)"}}},
	}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/issues", nil)

	handler.Issues(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.DashboardIssues `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Issues, 1)
	assert.Equal(t, "Water Station is understaffed (1/3)", envelope.Data.Issues[0].Message)
}

func TestDashboardHandlerSetSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/dashboard/selection", strings.NewReader(`{"event_id":"event-2"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.SetSelection(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event-2", srv.selectedID)
}

func TestDashboardHandlerClearSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/dashboard/selection", strings.NewReader(`{"event_id":""}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.SetSelection(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", srv.selectedID)
}
