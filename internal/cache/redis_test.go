package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	in := &domain.Session{
		ID: "s1",
		Users: []domain.User{{
			ID:           "u1",
			Gender:       domain.GenderFemale,
			Location:     domain.Location{Country: "FR"},
			RegisteredAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
		UI:     domain.UIState{Expanded: "FR", IsExpanded: true, Filter: domain.FilterFemale},
		Status: domain.StatusReady,
	}
	require.NoError(t, c.Set(ctx, in))

	out, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, in.UI, out.UI)
	assert.Equal(t, in.Status, out.Status)
	require.Len(t, out.Users, 1)
	assert.True(t, in.Users[0].RegisteredAt.Equal(out.Users[0].RegisteredAt))
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	_, err := c.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &domain.Session{ID: "s1"}))

	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "s1")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestCacheDelete(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &domain.Session{ID: "s1"}))

	require.NoError(t, c.Delete(ctx, "s1"))

	_, err := c.Get(ctx, "s1")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	assert.NoError(t, c.Ping(ctx))
}

func TestCacheCorruptValue(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(buildKey("bad"), "{not json"))

	_, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrSessionNotFound))
}
