package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 30 * time.Minute

// Cache keeps session snapshots in Redis. Expiry of a key ends the session.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func buildKey(sessionID string) string {
	return fmt.Sprintf("directory:session:%s", sessionID)
}

// Get session snapshot; domain.ErrSessionNotFound on miss
func (c *Cache) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	key := buildKey(sessionID)
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from cache: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", key, err)
	}
	return &s, nil
}

// Store session snapshot, refreshing its TTL
func (c *Cache) Set(ctx context.Context, s *domain.Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.client.Set(ctx, buildKey(s.ID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in cache: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, buildKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", sessionID, err)
	}
	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
