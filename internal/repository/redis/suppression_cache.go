package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"maxwell/internal/domain/personalization"
	"maxwell/internal/metrics"
	"maxwell/pkg/errors"
)

// Compile-time check
var _ personalization.Cache = (*SuppressionCache)(nil)

// SuppressionCache caches per-user suppressed suggestion kinds in Redis
type SuppressionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSuppressionCache creates a new suppression cache
func NewSuppressionCache(client *redis.Client, ttl time.Duration) *SuppressionCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SuppressionCache{
		client: client,
		ttl:    ttl,
	}
}

// GetSuppressed returns the cached suppressed-kind set for a user
func (c *SuppressionCache) GetSuppressed(ctx context.Context, userID uuid.UUID) ([]string, error) {
	data, err := c.client.Get(ctx, c.getKey(userID)).Result()
	if err == redis.Nil {
		metrics.ObserveDBQuery("redis", "suppression_get", nil)
		return nil, errors.Wrapf(errors.ErrNotFound, "suppression set not cached: %s", userID)
	}
	metrics.ObserveDBQuery("redis", "suppression_get", err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read suppression cache: %s", userID)
	}

	var kinds []string
	if err := json.Unmarshal([]byte(data), &kinds); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal suppression set: %s", userID)
	}
	return kinds, nil
}

// SetSuppressed caches the suppressed-kind set for a user
func (c *SuppressionCache) SetSuppressed(ctx context.Context, userID uuid.UUID, kinds []string) error {
	data, err := json.Marshal(kinds)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal suppression set: %s", userID)
	}
	err = c.client.Set(ctx, c.getKey(userID), data, c.ttl).Err()
	metrics.ObserveDBQuery("redis", "suppression_set", err)
	if err != nil {
		return errors.Wrapf(err, "failed to write suppression cache: %s", userID)
	}
	return nil
}

// Invalidate drops the cached set for a user
func (c *SuppressionCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	err := c.client.Del(ctx, c.getKey(userID)).Err()
	metrics.ObserveDBQuery("redis", "suppression_invalidate", err)
	if err != nil {
		return errors.Wrapf(err, "failed to invalidate suppression cache: %s", userID)
	}
	return nil
}

func (c *SuppressionCache) getKey(userID uuid.UUID) string {
	return fmt.Sprintf("suppress:%s", userID)
}
