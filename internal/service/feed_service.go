package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
)

// FeedService holds the live issue feed: a bounded, most-recent-first buffer
// of ephemeral issues. Two producers append concurrently (the staffing
// monitor and the signup listener), so the displayed order is insertion
// order, not event-timestamp order. Oldest entries are evicted silently
// once the capacity bound is reached.
type FeedService struct {
	mu       sync.Mutex
	issues   []models.Issue
	capacity int
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewFeedService constructs a feed bounded to the given capacity.
func NewFeedService(capacity int, metrics *MetricsService, logger *zap.Logger) *FeedService {
	if capacity <= 0 {
		capacity = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{
		capacity: capacity,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish prepends an issue to the feed, evicting the oldest entry beyond
// the capacity bound. Missing id/timestamp fields are filled in.
func (s *FeedService) Publish(issue models.Issue) {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Timestamp.IsZero() {
		issue.Timestamp = s.now().UTC()
	}

	s.mu.Lock()
	s.issues = append([]models.Issue{issue}, s.issues...)
	if len(s.issues) > s.capacity {
		s.issues = s.issues[:s.capacity]
	}
	size := len(s.issues)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordIssue(string(issue.Type), size)
	}
}

// List returns the feed restricted to the given event filter. Issues
// without an event reference are always included; an empty filter returns
// everything.
func (s *FeedService) List(eventID string) []models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if eventID == "" || !issue.Scoped() || issue.EventID == eventID {
			out = append(out, issue)
		}
	}
	return out
}

// Len reports the current number of buffered issues.
func (s *FeedService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issues)
}
