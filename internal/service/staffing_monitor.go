package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
)

type staffingPositionLister interface {
	ListSummaries(ctx context.Context, eventID string) ([]models.PositionSummary, error)
}

type issueSink interface {
	Publish(issue models.Issue)
}

type selectionReader interface {
	Get(ctx context.Context) (string, error)
}

// StaffingMonitor periodically scans position fill ratios and emits one
// warning issue per understaffed position onto the feed. The check is
// level-triggered: a position that stays understaffed is re-reported every
// tick, and the feed's bounded capacity keeps that useful. Ticks run
// sequentially off a fixed-interval timer; slow evaluation delays the next
// tick rather than overlapping it.
type StaffingMonitor struct {
	positions staffingPositionLister
	feed      issueSink
	selection selectionReader
	interval  time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewStaffingMonitor constructs the monitor.
func NewStaffingMonitor(positions staffingPositionLister, feed issueSink, selection selectionReader, interval time.Duration, metrics *MetricsService, logger *zap.Logger) *StaffingMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffingMonitor{
		positions: positions,
		feed:      feed,
		selection: selection,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Start launches the evaluation loop. Safe to call once.
func (m *StaffingMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.started = true

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.EvaluateOnce(ctx)
			}
		}
	}()
	m.logger.Info("staffing monitor started", zap.Duration("interval", m.interval))
}

// Stop cancels the loop and waits for the current tick to finish.
func (m *StaffingMonitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.cancel()
	done := m.done
	m.mu.Unlock()
	<-done
	m.logger.Info("staffing monitor stopped")
}

// EvaluateOnce runs a single evaluation tick: load positions scoped to the
// active event selection and emit a warning for every understaffed one.
func (m *StaffingMonitor) EvaluateOnce(ctx context.Context) {
	eventID := ""
	if m.selection != nil {
		selected, err := m.selection.Get(ctx)
		if err != nil {
			m.logger.Warn("selection read failed, evaluating unscoped", zap.Error(err))
		} else {
			eventID = selected
		}
	}

	positions, err := m.positions.ListSummaries(ctx, eventID)
	if err != nil {
		m.logger.Error("staffing evaluation failed", zap.Error(err))
		return
	}

	warned := 0
	for _, position := range positions {
		if !position.Understaffed() {
			continue
		}
		m.feed.Publish(models.Issue{
			Type:         models.IssueWarning,
			Message:      fmt.Sprintf("%s is understaffed (%d/%d)", position.Name, position.Filled, position.Needed),
			Timestamp:    m.now().UTC(),
			PositionID:   position.ID,
			PositionName: position.Name,
			EventID:      position.EventID,
		})
		warned++
	}
	if m.metrics != nil {
		m.metrics.RecordStaffingWarnings(warned)
	}
	if warned > 0 {
		m.logger.Debug("staffing warnings emitted", zap.Int("count", warned), zap.String("event_id", eventID))
	}
}
