package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/dto"
	"github.com/crewcall/crewcall-api/internal/models"
	"github.com/crewcall/crewcall-api/internal/repository"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/geo"
)

type positionDetailStub struct {
	detail   *models.PositionDetail
	errs     []error
	calls    int
	finalErr error
}

func (s *positionDetailStub) GetDetail(ctx context.Context, id string) (*models.PositionDetail, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	} else if s.finalErr != nil {
		return nil, s.finalErr
	}
	return s.detail, nil
}

type checkInSignupStub struct {
	eligible    []models.Signup
	listErr     error
	markErr     error
	markedID    string
	listCalls   int
	afterMark   []models.Signup
	markApplied bool
}

func (s *checkInSignupStub) ListEligibleByPosition(ctx context.Context, positionID string) ([]models.Signup, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.markApplied {
		return s.afterMark, nil
	}
	return s.eligible, nil
}

func (s *checkInSignupStub) MarkArrived(ctx context.Context, signupID, positionID string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.markedID = signupID
	s.markApplied = true
	return nil
}

func newCheckInPosition() *models.PositionDetail {
	lat, lon := 40.7128, -74.0060
	detail := &models.PositionDetail{
		EventName: "5K Run",
	}
	detail.ID = "pos-1"
	detail.EventID = "event-1"
	detail.Name = "Water Station"
	detail.Needed = 3
	detail.Latitude = &lat
	detail.Longitude = &lon
	return detail
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestCheckInResolveMissingID(t *testing.T) {
	svc := NewCheckInService(&positionDetailStub{}, &checkInSignupStub{}, nil, zap.NewNop(), CheckInServiceConfig{})

	_, err := svc.Resolve(context.Background(), "   ", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidRequest.Code, appErr.Code)
}

func TestCheckInResolveNotFound(t *testing.T) {
	positions := &positionDetailStub{finalErr: sql.ErrNoRows}
	svc := NewCheckInService(positions, &checkInSignupStub{}, nil, zap.NewNop(), CheckInServiceConfig{})
	svc.sleep = noSleep

	_, err := svc.Resolve(context.Background(), "pos-missing", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	// Not found is definitive; no retries are spent on it.
	assert.Equal(t, 1, positions.calls)
}

func TestCheckInResolveRetryExhaustion(t *testing.T) {
	positions := &positionDetailStub{finalErr: errors.New("connection refused")}
	svc := NewCheckInService(positions, &checkInSignupStub{}, nil, zap.NewNop(), CheckInServiceConfig{LookupRetries: 3})
	svc.sleep = noSleep

	_, err := svc.Resolve(context.Background(), "pos-1", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLookupFailed.Code, appErr.Code)
	assert.Equal(t, 3, positions.calls)
}

func TestCheckInResolveRetryThenSuccess(t *testing.T) {
	positions := &positionDetailStub{
		detail: newCheckInPosition(),
		errs:   []error{errors.New("timeout"), nil},
	}
	signups := &checkInSignupStub{eligible: []models.Signup{{ID: "su-1", VolunteerName: "Alice"}}}
	svc := NewCheckInService(positions, signups, nil, zap.NewNop(), CheckInServiceConfig{})
	svc.sleep = noSleep

	ctx, err := svc.Resolve(context.Background(), "pos-1", nil)
	require.NoError(t, err)
	assert.Equal(t, dto.StateAwaitingSelection, ctx.State)
	assert.Equal(t, "Water Station", ctx.Position.Name)
	assert.Equal(t, 2, positions.calls)
	require.Len(t, ctx.Volunteers, 1)
}

func TestCheckInResolveNoEligibleVolunteers(t *testing.T) {
	positions := &positionDetailStub{detail: newCheckInPosition()}
	svc := NewCheckInService(positions, &checkInSignupStub{}, nil, zap.NewNop(), CheckInServiceConfig{})

	ctx, err := svc.Resolve(context.Background(), "pos-1", nil)
	require.NoError(t, err)
	assert.Equal(t, dto.StateNoEligibleVolunteer, ctx.State)
	assert.Empty(t, ctx.Volunteers)
}

func TestCheckInResolveProximityHint(t *testing.T) {
	positions := &positionDetailStub{detail: newCheckInPosition()}
	svc := NewCheckInService(positions, &checkInSignupStub{}, nil, zap.NewNop(), CheckInServiceConfig{RadiusMeters: 200})

	near := &geo.Point{Latitude: 40.7128, Longitude: -74.0060}
	ctx, err := svc.Resolve(context.Background(), "pos-1", near)
	require.NoError(t, err)
	assert.Equal(t, geo.HintNear, ctx.Proximity.Hint)
	require.NotNil(t, ctx.Proximity.DistanceMeters)
	assert.InDelta(t, 0, *ctx.Proximity.DistanceMeters, 0.001)

	// No user location degrades to unknown, never an error.
	ctx, err = svc.Resolve(context.Background(), "pos-1", nil)
	require.NoError(t, err)
	assert.Equal(t, geo.HintUnknown, ctx.Proximity.Hint)
	assert.Nil(t, ctx.Proximity.DistanceMeters)
}

func TestCheckInSubmitWithoutSelection(t *testing.T) {
	signups := &checkInSignupStub{}
	svc := NewCheckInService(&positionDetailStub{}, signups, nil, zap.NewNop(), CheckInServiceConfig{})

	_, err := svc.Submit(context.Background(), "pos-1", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidRequest.Code, appErr.Code)
	// Rejected locally; no repository call happens.
	assert.Empty(t, signups.markedID)
	assert.Equal(t, 0, signups.listCalls)
}

func TestCheckInSubmitSuccess(t *testing.T) {
	signups := &checkInSignupStub{
		eligible: []models.Signup{
			{ID: "su-1", VolunteerName: "Alice"},
			{ID: "su-2", VolunteerName: "Bob"},
		},
		afterMark: []models.Signup{{ID: "su-2", VolunteerName: "Bob"}},
	}
	svc := NewCheckInService(&positionDetailStub{}, signups, nil, zap.NewNop(), CheckInServiceConfig{})

	result, err := svc.Submit(context.Background(), "pos-1", "su-1")
	require.NoError(t, err)
	assert.Equal(t, dto.StateSucceeded, result.State)
	assert.Equal(t, "su-1", result.SignupID)
	assert.Equal(t, "su-1", signups.markedID)
	require.Len(t, result.Volunteers, 1)
	assert.Equal(t, "su-2", result.Volunteers[0].ID)
}

func TestCheckInSubmitAlreadyArrived(t *testing.T) {
	signups := &checkInSignupStub{markErr: repository.ErrAlreadyArrived}
	svc := NewCheckInService(&positionDetailStub{}, signups, nil, zap.NewNop(), CheckInServiceConfig{})

	_, err := svc.Submit(context.Background(), "pos-1", "su-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCheckInSubmitUnknownSignup(t *testing.T) {
	signups := &checkInSignupStub{markErr: sql.ErrNoRows}
	svc := NewCheckInService(&positionDetailStub{}, signups, nil, zap.NewNop(), CheckInServiceConfig{})

	_, err := svc.Submit(context.Background(), "pos-1", "su-missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCheckInSubmitRefetchFailureStillSucceeds(t *testing.T) {
	signups := &checkInSignupStub{listErr: errors.New("connection reset")}
	svc := NewCheckInService(&positionDetailStub{}, signups, nil, zap.NewNop(), CheckInServiceConfig{})

	result, err := svc.Submit(context.Background(), "pos-1", "su-1")
	require.NoError(t, err)
	assert.Equal(t, dto.StateSucceeded, result.State)
	assert.Nil(t, result.Volunteers)
}
