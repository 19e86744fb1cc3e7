package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

type signupRepository interface {
	List(ctx context.Context, filter models.SignupFilter) ([]models.Signup, int, error)
	Create(ctx context.Context, signup *models.Signup) (*models.Signup, error)
	BulkInsert(ctx context.Context, signups []models.Signup) ([]models.Signup, error)
	Delete(ctx context.Context, id string) error
}

type noticePublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// SignupService manages volunteer signups and pushes creation notices onto
// the dashboard notification channel. Publish failures are logged, not
// surfaced: the signup row is durable either way and the feed is advisory.
type SignupService struct {
	repo      signupRepository
	positions positionRepository
	publisher noticePublisher
	channel   string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSignupService constructs the signup service.
func NewSignupService(repo signupRepository, positions positionRepository, publisher noticePublisher, channel string, validate *validator.Validate, logger *zap.Logger) *SignupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignupService{
		repo:      repo,
		positions: positions,
		publisher: publisher,
		channel:   channel,
		validator: validate,
		logger:    logger,
	}
}

// CreateSignupRequest describes the payload for registering a volunteer.
type CreateSignupRequest struct {
	PositionID    string  `json:"position_id" validate:"required"`
	VolunteerName string  `json:"volunteer_name" validate:"required"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone"`
	StartTime     string  `json:"start_time" validate:"required"`
	EndTime       string  `json:"end_time" validate:"required"`
}

// List returns signups matching the filter.
func (s *SignupService) List(ctx context.Context, filter models.SignupFilter) ([]models.Signup, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	filter.Page = page
	filter.PageSize = size

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list signups")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return rows, pagination, nil
}

// Create registers a volunteer for a position and publishes the creation
// notice consumed by the live feed.
func (s *SignupService) Create(ctx context.Context, req CreateSignupRequest) (*models.Signup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_time, expected RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_time, expected RFC3339")
	}
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	if _, err := s.positions.FindByID(ctx, req.PositionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}

	signup := &models.Signup{
		PositionID:    req.PositionID,
		VolunteerName: req.VolunteerName,
		Email:         req.Email,
		Phone:         req.Phone,
		StartTime:     start,
		EndTime:       end,
	}
	stored, err := s.repo.Create(ctx, signup)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create signup")
	}

	s.notify(ctx, stored)
	return stored, nil
}

// Delete removes a signup.
func (s *SignupService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete signup")
	}
	return nil
}

func (s *SignupService) notify(ctx context.Context, signup *models.Signup) {
	if s.publisher == nil || s.channel == "" {
		return
	}
	payload, err := json.Marshal(models.SignupNotice{
		PositionID:    signup.PositionID,
		VolunteerName: signup.VolunteerName,
	})
	if err != nil {
		s.logger.Warn("signup notice encode failed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Warn("signup notice publish failed", zap.String("signup_id", signup.ID), zap.Error(err))
	}
}
