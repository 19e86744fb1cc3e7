package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crewcall/crewcall-api/internal/models"
)

type listenerPositionResolver interface {
	GetDetail(ctx context.Context, id string) (*models.PositionDetail, error)
}

// SignupListener folds signup-created notifications into the live feed.
// It consumes a plain channel so the transport stays swappable; the redis
// pub/sub adapter below is the production source. The position name is
// resolved at notification-arrival time; if that lookup fails the
// notification is dropped instead of surfacing with missing data.
type SignupListener struct {
	positions listenerPositionResolver
	feed      issueSink
	logger    *zap.Logger
	now       func() time.Time
}

// NewSignupListener constructs the listener.
func NewSignupListener(positions listenerPositionResolver, feed issueSink, logger *zap.Logger) *SignupListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignupListener{
		positions: positions,
		feed:      feed,
		logger:    logger,
		now:       time.Now,
	}
}

// Run consumes notices until the channel closes or the context is
// cancelled. It blocks; callers run it on its own goroutine.
func (l *SignupListener) Run(ctx context.Context, notices <-chan models.SignupNotice) {
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-notices:
			if !ok {
				return
			}
			l.handle(ctx, notice)
		}
	}
}

func (l *SignupListener) handle(ctx context.Context, notice models.SignupNotice) {
	if notice.PositionID == "" {
		l.logger.Warn("signup notice missing position id, dropped")
		return
	}
	detail, err := l.positions.GetDetail(ctx, notice.PositionID)
	if err != nil {
		l.logger.Warn("signup notice dropped, position lookup failed",
			zap.String("position_id", notice.PositionID),
			zap.Error(err))
		return
	}
	l.feed.Publish(models.Issue{
		Type:         models.IssueInfo,
		Message:      fmt.Sprintf("%s signed up for %s", notice.VolunteerName, detail.Name),
		Timestamp:    l.now().UTC(),
		PositionID:   detail.ID,
		PositionName: detail.Name,
		EventID:      detail.EventID,
	})
}

// SubscribeSignups bridges the redis pub/sub channel onto a SignupNotice
// channel. The returned cleanup closes the subscription; the notice channel
// closes once the subscription ends so Run terminates with it.
func SubscribeSignups(ctx context.Context, client *redis.Client, channel string, logger *zap.Logger) (<-chan models.SignupNotice, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	notices := make(chan models.SignupNotice)
	go func() {
		defer close(notices)
		for msg := range pubsub.Channel() {
			var notice models.SignupNotice
			if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
				logger.Warn("malformed signup notice dropped", zap.Error(err))
				continue
			}
			select {
			case <-ctx.Done():
				return
			case notices <- notice:
			}
		}
	}()

	cleanup := func() {
		_ = pubsub.Close()
	}
	return notices, cleanup, nil
}
