package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

type positionRepository interface {
	List(ctx context.Context, filter models.PositionFilter) ([]models.Position, int, error)
	FindByID(ctx context.Context, id string) (*models.Position, error)
	Create(ctx context.Context, position *models.Position) (*models.Position, error)
	Update(ctx context.Context, position *models.Position) (*models.Position, error)
	Delete(ctx context.Context, id string) error
}

// PositionService manages staffing positions.
type PositionService struct {
	repo      positionRepository
	events    eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPositionService constructs the position service.
func NewPositionService(repo positionRepository, events eventRepository, validate *validator.Validate, logger *zap.Logger) *PositionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionService{repo: repo, events: events, validator: validate, logger: logger}
}

// CreatePositionRequest describes the payload for creating a position.
type CreatePositionRequest struct {
	EventID     string   `json:"event_id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Needed      int      `json:"needed" validate:"required,gt=0"`
	Description *string  `json:"description"`
	SkillLevel  *string  `json:"skill_level"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// UpdatePositionRequest describes an organizer edit.
type UpdatePositionRequest struct {
	Name        string   `json:"name" validate:"required"`
	Needed      int      `json:"needed" validate:"required,gt=0"`
	Description *string  `json:"description"`
	SkillLevel  *string  `json:"skill_level"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// List returns positions matching the filter.
func (s *PositionService) List(ctx context.Context, filter models.PositionFilter) ([]models.Position, *models.Pagination, error) {
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
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list positions")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return rows, pagination, nil
}

// Get returns a single position.
func (s *PositionService) Get(ctx context.Context, id string) (*models.Position, error) {
	position, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}
	return position, nil
}

// Create stores a new position under an existing event.
func (s *PositionService) Create(ctx context.Context, req CreatePositionRequest) (*models.Position, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.events.FindByID(ctx, req.EventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	position := &models.Position{
		EventID:     req.EventID,
		Name:        req.Name,
		Needed:      req.Needed,
		Description: req.Description,
		SkillLevel:  req.SkillLevel,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	stored, err := s.repo.Create(ctx, position)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create position")
	}
	return stored, nil
}

// Update applies an organizer edit to a position.
func (s *PositionService) Update(ctx context.Context, id string, req UpdatePositionRequest) (*models.Position, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = req.Name
	existing.Needed = req.Needed
	existing.Description = req.Description
	existing.SkillLevel = req.SkillLevel
	existing.Latitude = req.Latitude
	existing.Longitude = req.Longitude
	stored, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update position")
	}
	return stored, nil
}

// Delete removes a position and its signups.
func (s *PositionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete position")
	}
	return nil
}
