package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"maxwell/internal/domain/dialogue"
	"maxwell/internal/metrics"
	"maxwell/pkg/errors"
)

// Compile-time check
var _ dialogue.Store = (*DialogueSessionRepository)(nil)

// DialogueSessionRepository implements dialogue.Store using Redis
type DialogueSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDialogueSessionRepository creates a new dialogue session repository
func NewDialogueSessionRepository(client *redis.Client, ttl time.Duration) *DialogueSessionRepository {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &DialogueSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a session by id
func (r *DialogueSessionRepository) Get(ctx context.Context, sessionID string) (*dialogue.Session, error) {
	key := r.getKey(sessionID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.ObserveDBQuery("redis", "session_get", nil)
		return nil, errors.Wrapf(errors.ErrNotFound, "dialogue session not found: %s", sessionID)
	}
	metrics.ObserveDBQuery("redis", "session_get", err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get dialogue session from redis: %s", sessionID)
	}

	var session dialogue.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal dialogue session: %s", sessionID)
	}

	return &session, nil
}

// Save stores a session, refreshing its TTL
func (r *DialogueSessionRepository) Save(ctx context.Context, session *dialogue.Session) error {
	key := r.getKey(session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal dialogue session: %s", session.ID)
	}

	err = r.client.Set(ctx, key, data, r.ttl).Err()
	metrics.ObserveDBQuery("redis", "session_save", err)
	if err != nil {
		return errors.Wrapf(err, "failed to save dialogue session to redis: %s", session.ID)
	}

	return nil
}

// Delete removes a session
func (r *DialogueSessionRepository) Delete(ctx context.Context, sessionID string) error {
	err := r.client.Del(ctx, r.getKey(sessionID)).Err()
	metrics.ObserveDBQuery("redis", "session_delete", err)
	if err != nil {
		return errors.Wrapf(err, "failed to delete dialogue session from redis: %s", sessionID)
	}
	return nil
}

func (r *DialogueSessionRepository) getKey(sessionID string) string {
	return fmt.Sprintf("dialogue:%s", sessionID)
}
