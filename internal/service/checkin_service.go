package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/dto"
	"github.com/crewcall/crewcall-api/internal/models"
	"github.com/crewcall/crewcall-api/internal/repository"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
	"github.com/crewcall/crewcall-api/pkg/geo"
)

type checkInPositionRepository interface {
	GetDetail(ctx context.Context, id string) (*models.PositionDetail, error)
}

type checkInSignupRepository interface {
	ListEligibleByPosition(ctx context.Context, positionID string) ([]models.Signup, error)
	MarkArrived(ctx context.Context, signupID, positionID string) error
}

// CheckInServiceConfig tunes lookup retries and the proximity radius.
type CheckInServiceConfig struct {
	RadiusMeters  float64
	LookupRetries int
	RetryDelay    time.Duration
}

// CheckInService drives the on-site check-in flow: resolve a position link,
// load eligible volunteers, accept a selection and commit the arrival.
// The arrived flag on the signup row is the durable source of truth; the
// service holds no state a reload would lose.
type CheckInService struct {
	positions checkInPositionRepository
	signups   checkInSignupRepository
	gate      geo.Gate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       CheckInServiceConfig
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewCheckInService constructs the check-in service.
func NewCheckInService(positions checkInPositionRepository, signups checkInSignupRepository, metrics *MetricsService, logger *zap.Logger, cfg CheckInServiceConfig) *CheckInService {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 200
	}
	if cfg.LookupRetries <= 0 {
		cfg.LookupRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		positions: positions,
		signups:   signups,
		gate:      geo.Gate{ThresholdMeters: cfg.RadiusMeters},
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		sleep:     sleepContext,
	}
}

// Resolve loads the position behind a check-in link together with its parent
// event and the eligible (not yet arrived) volunteers. The user location is
// optional; absence degrades the proximity hint to unknown and never blocks.
func (s *CheckInService) Resolve(ctx context.Context, positionID string, userLocation *geo.Point) (*dto.CheckInContext, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "position id is required")
	}

	detail, err := s.resolvePosition(ctx, positionID)
	if err != nil {
		return nil, err
	}

	volunteers, err := s.signups.ListEligibleByPosition(ctx, positionID)
	if err != nil {
		s.logger.Error("eligible volunteers fetch failed", zap.String("position_id", positionID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrLookupFailed.Code, appErrors.ErrLookupFailed.Status, "failed to load volunteers")
	}

	state := dto.StateAwaitingSelection
	if len(volunteers) == 0 {
		state = dto.StateNoEligibleVolunteer
	}

	return &dto.CheckInContext{
		State:      state,
		Position:   detail,
		Volunteers: volunteers,
		Proximity:  s.proximity(userLocation, detail),
	}, nil
}

// Submit commits the arrival for the selected signup. The update is a single
// conditional field set keyed by signup id, so concurrent attempts for the
// same signup are safe to re-apply. On success the eligible list is refetched
// so the checked-in volunteer disappears from the selection set.
func (s *CheckInService) Submit(ctx context.Context, positionID, signupID string) (*dto.CheckInResult, error) {
	positionID = strings.TrimSpace(positionID)
	signupID = strings.TrimSpace(signupID)
	if positionID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "position id is required")
	}
	if signupID == "" {
		// Rejected locally, before any data-service call.
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "no volunteer selected")
	}

	if err := s.signups.MarkArrived(ctx, signupID, positionID); err != nil {
		if s.metrics != nil {
			s.metrics.RecordCheckIn(false)
		}
		switch {
		case errors.Is(err, repository.ErrAlreadyArrived):
			return nil, appErrors.Clone(appErrors.ErrConflict, "volunteer is already checked in")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "signup not found for this position")
		default:
			s.logger.Error("arrival update failed", zap.String("signup_id", signupID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "arrival update failed")
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCheckIn(true)
	}

	volunteers, err := s.signups.ListEligibleByPosition(ctx, positionID)
	if err != nil {
		// The arrival is durable at this point; a refetch failure must not
		// report the check-in itself as failed.
		s.logger.Warn("eligible list refetch failed after arrival", zap.String("position_id", positionID), zap.Error(err))
		volunteers = nil
	}

	return &dto.CheckInResult{
		State:      dto.StateSucceeded,
		SignupID:   signupID,
		Volunteers: volunteers,
	}, nil
}

func (s *CheckInService) resolvePosition(ctx context.Context, positionID string) (*models.PositionDetail, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.LookupRetries; attempt++ {
		detail, err := s.positions.GetDetail(ctx, positionID)
		if err == nil {
			return detail, nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		lastErr = err
		s.logger.Warn("position lookup failed",
			zap.String("position_id", positionID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < s.cfg.LookupRetries {
			if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrLookupFailed.Code, appErrors.ErrLookupFailed.Status, "position lookup cancelled")
			}
		}
	}
	return nil, appErrors.Wrap(lastErr, appErrors.ErrLookupFailed.Code, appErrors.ErrLookupFailed.Status, "failed to load position")
}

func (s *CheckInService) proximity(userLocation *geo.Point, detail *models.PositionDetail) dto.ProximityHint {
	hint := dto.ProximityHint{
		Hint:            geo.HintUnknown,
		ThresholdMeters: s.cfg.RadiusMeters,
	}
	var positionLocation *geo.Point
	if detail.Latitude != nil && detail.Longitude != nil {
		positionLocation = &geo.Point{Latitude: *detail.Latitude, Longitude: *detail.Longitude}
	}
	hint.Hint = s.gate.Classify(userLocation, positionLocation)
	if userLocation != nil && positionLocation != nil {
		d := geo.Distance(*userLocation, *positionLocation)
		hint.DistanceMeters = &d
	}
	return hint
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
