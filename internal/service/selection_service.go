package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/crewcall/crewcall-api/pkg/errors"
)

// selectionStore abstracts the persisted filter parameter behind the event
// selection. The redis adapter below is the production store.
type selectionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const selectionKey = "dashboard:selected_event"

// SelectionService binds the dashboard's selected event id to a persisted
// filter parameter. Clearing the selection removes the parameter; an id
// that matches no event simply yields empty filtered views elsewhere, so
// no validation happens here.
type SelectionService struct {
	store  selectionStore
	logger *zap.Logger
}

// NewSelectionService constructs the selection service.
func NewSelectionService(store selectionStore, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{store: store, logger: logger}
}

// Get returns the selected event id, or empty when no selection is set.
func (s *SelectionService) Get(ctx context.Context) (string, error) {
	value, err := s.store.Get(ctx, selectionKey)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return "", nil
		}
		s.logger.Warn("selection read failed", zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrLookupFailed.Code, appErrors.ErrLookupFailed.Status, "failed to read selection")
	}
	return value, nil
}

// Set persists the selected event id. An empty id clears the selection.
func (s *SelectionService) Set(ctx context.Context, eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		if err := s.store.Delete(ctx, selectionKey); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear selection")
		}
		return nil
	}
	if err := s.store.Set(ctx, selectionKey, eventID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist selection")
	}
	return nil
}

// RedisSelectionStore persists selection state in redis.
type RedisSelectionStore struct {
	client *redis.Client
}

// NewRedisSelectionStore constructs the store.
func NewRedisSelectionStore(client *redis.Client) *RedisSelectionStore {
	return &RedisSelectionStore{client: client}
}

// Get fetches a key, mapping redis.Nil onto ErrCacheMiss.
func (r *RedisSelectionStore) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrCacheMiss
		}
		return "", fmt.Errorf("selection get: %w", err)
	}
	return value, nil
}

// Set writes a key without expiry; the selection lives until cleared.
func (r *RedisSelectionStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("selection set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisSelectionStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("selection delete: %w", err)
	}
	return nil
}
