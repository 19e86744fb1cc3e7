package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

type dashboardSelectionStub struct {
	eventID string
	getErr  error
	setID   *string
}

func (s *dashboardSelectionStub) Get(ctx context.Context) (string, error) {
	return s.eventID, s.getErr
}

func (s *dashboardSelectionStub) Set(ctx context.Context, eventID string) error {
	s.setID = &eventID
	s.eventID = eventID
	return nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func dashboardSummaries() []models.PositionSummary {
	return []models.PositionSummary{
		{ID: "pos-1", EventID: "event-1", Name: "Water Station", Needed: 3, Filled: 1},
		{ID: "pos-2", EventID: "event-1", Name: "Registration", Needed: 2, Filled: 2},
		{ID: "pos-3", EventID: "event-2", Name: "Parking", Needed: 2, Filled: 0},
	}
}

func TestDashboardPositionsUsesPersistedSelection(t *testing.T) {
	positions := &summaryListerStub{summaries: dashboardSummaries()}
	feed := NewFeedService(10, nil, zap.NewNop())
	selection := &dashboardSelectionStub{eventID: "event-1"}
	svc := NewDashboardService(positions, feed, selection, nil, zap.NewNop())

	payload, cacheHit, err := svc.Positions(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, "event-1", payload.EventID)
	assert.Len(t, payload.Positions, 2)
	assert.Equal(t, 1, payload.Understaffed)
}

func TestDashboardPositionsExplicitOverride(t *testing.T) {
	positions := &summaryListerStub{summaries: dashboardSummaries()}
	feed := NewFeedService(10, nil, zap.NewNop())
	selection := &dashboardSelectionStub{eventID: "event-1"}
	svc := NewDashboardService(positions, feed, selection, nil, zap.NewNop())

	payload, _, err := svc.Positions(context.Background(), "event-2")
	require.NoError(t, err)
	assert.Equal(t, "event-2", payload.EventID)
	require.Len(t, payload.Positions, 1)
	assert.Equal(t, "Parking", payload.Positions[0].Name)
}

func TestDashboardPositionsCacheHit(t *testing.T) {
	positions := &summaryListerStub{summaries: dashboardSummaries()}
	feed := NewFeedService(10, nil, zap.NewNop())
	selection := &dashboardSelectionStub{eventID: "event-1"}
	cache := NewCacheService(newMemoryCacheRepo(), time.Minute, zap.NewNop())
	svc := NewDashboardService(positions, feed, selection, cache, zap.NewNop())

	_, cacheHit, err := svc.Positions(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, cacheHit)

	payload, cacheHit, err := svc.Positions(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.Equal(t, 1, payload.Understaffed)
}

func TestDashboardIssuesFilteredBySelection(t *testing.T) {
	positions := &summaryListerStub{}
	feed := NewFeedService(10, nil, zap.NewNop())
	feed.Publish(models.Issue{Type: models.IssueWarning, Message: "scoped", EventID: "event-1"})
	feed.Publish(models.Issue{Type: models.IssueWarning, Message: "other", EventID: "event-2"})
	feed.Publish(models.Issue{Type: models.IssueError, Message: "unscoped"})
	selection := &dashboardSelectionStub{eventID: "event-1"}
	svc := NewDashboardService(positions, feed, selection, nil, zap.NewNop())

	payload, err := svc.Issues(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, payload.Issues, 2)
	assert.Equal(t, "unscoped", payload.Issues[0].Message)
	assert.Equal(t, "scoped", payload.Issues[1].Message)
}

func TestDashboardSelectRoundTrip(t *testing.T) {
	positions := &summaryListerStub{}
	feed := NewFeedService(10, nil, zap.NewNop())
	selection := &dashboardSelectionStub{}
	svc := NewDashboardService(positions, feed, selection, nil, zap.NewNop())

	result, err := svc.Select(context.Background(), "event-9")
	require.NoError(t, err)
	assert.Equal(t, "event-9", result.EventID)
	require.NotNil(t, selection.setID)
	assert.Equal(t, "event-9", *selection.setID)
}
