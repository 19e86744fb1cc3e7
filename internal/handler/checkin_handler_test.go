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
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/geo"
)

type fakeCheckInSrv struct {
	resolveResp *dto.CheckInContext
	resolveErr  error
	submitResp  *dto.CheckInResult
	submitErr   error
	gotLocation *geo.Point
	gotPosition string
	gotSignupID string
}

func (f *fakeCheckInSrv) Resolve(_ context.Context, positionID string, userLocation *geo.Point) (*dto.CheckInContext, error) {
	f.gotPosition = positionID
	f.gotLocation = userLocation
	return f.resolveResp, f.resolveErr
}

func (f *fakeCheckInSrv) Submit(_ context.Context, positionID, signupID string) (*dto.CheckInResult, error) {
	f.gotPosition = positionID
	f.gotSignupID = signupID
	return f.submitResp, f.submitErr
}

func TestCheckInHandlerResolve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeCheckInSrv{resolveResp: &dto.CheckInContext{State: dto.StateAwaitingSelection}}
	handler := NewCheckInHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/checkin/pos-1?lat=40.7&lon=-74.0", nil)
	c.Params = gin.Params{{Key: "positionId", Value: "pos-1"}}

	handler.Resolve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pos-1", srv.gotPosition)
	require.NotNil(t, srv.gotLocation)
	assert.InDelta(t, 40.7, srv.gotLocation.Latitude, 0.001)

	var envelope struct {
		Data dto.CheckInContext `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, dto.StateAwaitingSelection, envelope.Data.State)
}

func TestCheckInHandlerResolveMalformedCoordsProceed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeCheckInSrv{resolveResp: &dto.CheckInContext{State: dto.StateAwaitingSelection}}
	handler := NewCheckInHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/checkin/pos-1?lat=abc&lon=-74.0", nil)
	c.Params = gin.Params{{Key: "positionId", Value: "pos-1"}}

	handler.Resolve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, srv.gotLocation)
}

func TestCheckInHandlerResolveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeCheckInSrv{resolveErr: appErrors.Clone(appErrors.ErrNotFound, "position not found")}
	handler := NewCheckInHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/checkin/pos-missing", nil)
	c.Params = gin.Params{{Key: "positionId", Value: "pos-missing"}}

	handler.Resolve(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckInHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeCheckInSrv{submitResp: &dto.CheckInResult{State: dto.StateSucceeded, SignupID: "su-1"}}
	handler := NewCheckInHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkin/pos-1", strings.NewReader(`{"signup_id":"su-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "positionId", Value: "pos-1"}}

	handler.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "su-1", srv.gotSignupID)
}

func TestCheckInHandlerSubmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeCheckInSrv{submitErr: appErrors.Clone(appErrors.ErrConflict, "volunteer is already checked in")}
	handler := NewCheckInHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkin/pos-1", strings.NewReader(`{"signup_id":"su-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "positionId", Value: "pos-1"}}

	handler.Submit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
