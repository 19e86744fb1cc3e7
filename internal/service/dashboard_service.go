package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/dto"
	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

type dashboardFeed interface {
	List(eventID string) []models.Issue
}

type dashboardSelection interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, eventID string) error
}

// DashboardService composes the operational dashboard: the position map,
// the filtered issue feed and the persisted event selection. The selection
// gates both views; an explicit eventId argument overrides it per request.
type DashboardService struct {
	positions staffingPositionLister
	feed      dashboardFeed
	selection dashboardSelection
	cache     *CacheService
	logger    *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(positions staffingPositionLister, feed dashboardFeed, selection dashboardSelection, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		positions: positions,
		feed:      feed,
		selection: selection,
		cache:     cache,
		logger:    logger,
	}
}

// Positions returns the dashboard map payload, scoped to the resolved
// event filter. The second return reports cache utilisation.
func (s *DashboardService) Positions(ctx context.Context, eventID string) (*dto.DashboardPositions, bool, error) {
	resolved, err := s.resolveFilter(ctx, eventID)
	if err != nil {
		return nil, false, err
	}

	cacheKey := fmt.Sprintf("dashboard:positions:%s", resolved)
	var payload dto.DashboardPositions
	if s.cache.Get(ctx, cacheKey, &payload) {
		return &payload, true, nil
	}

	summaries, err := s.positions.ListSummaries(ctx, resolved)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrLookupFailed.Code, appErrors.ErrLookupFailed.Status, "failed to load positions")
	}

	understaffed := 0
	for _, summary := range summaries {
		if summary.Understaffed() {
			understaffed++
		}
	}
	payload = dto.DashboardPositions{
		EventID:      resolved,
		Positions:    summaries,
		Understaffed: understaffed,
	}
	s.cache.Set(ctx, cacheKey, payload)
	return &payload, false, nil
}

// Issues returns the live feed restricted to the resolved event filter.
// The feed is process-local, so no cache sits in front of it.
func (s *DashboardService) Issues(ctx context.Context, eventID string) (*dto.DashboardIssues, error) {
	resolved, err := s.resolveFilter(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardIssues{
		EventID: resolved,
		Issues:  s.feed.List(resolved),
	}, nil
}

// Selection returns the persisted event filter.
func (s *DashboardService) Selection(ctx context.Context) (*dto.Selection, error) {
	selected, err := s.selection.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.Selection{EventID: selected}, nil
}

// Select persists (or clears, when empty) the event filter.
func (s *DashboardService) Select(ctx context.Context, eventID string) (*dto.Selection, error) {
	if err := s.selection.Set(ctx, eventID); err != nil {
		return nil, err
	}
	return s.Selection(ctx)
}

func (s *DashboardService) resolveFilter(ctx context.Context, eventID string) (string, error) {
	if eventID != "" {
		return eventID, nil
	}
	selected, err := s.selection.Get(ctx)
	if err != nil {
		return "", err
	}
	return selected, nil
}
