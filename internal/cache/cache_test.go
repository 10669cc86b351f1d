package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"combinepulse/internal/config"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts/domain"
)

// redisAddr returns COMBINE_TEST_REDIS_ADDR when set and otherwise starts a
// throwaway Redis container
func redisAddr(t *testing.T) string {
	t.Helper()
	if addr := os.Getenv("COMBINE_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func newTestCache(t *testing.T, prefix string) *RedisCache {
	t.Helper()
	cfg := config.CacheConfig{
		Enabled: true,
		Addr:    redisAddr(t),
		TTL:     time.Minute,
		Prefix:  prefix,
	}

	c, err := NewRedisCache(context.Background(), cfg, infrastructure.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = c.Purge(context.Background())
		_ = c.Close()
	})
	return c
}

func sampleView() *dashboard.View {
	return &dashboard.View{
		Heading: dashboard.Heading,
		State:   dashboard.State{Position: domain.PositionWR, Test: domain.TestForty, Round: 1, Candidate: 4.5},
		Title:   "Summary statistics for Forty test for Wide Receivers from 2000-2017 NFL Combines",
		Summary: dashboard.SummaryView{
			Test:    domain.TestForty,
			Count:   3,
			Minimum: dashboard.Stat{Label: "Minimum", Value: 4.4, Display: "4.40"},
		},
		Percentile: &dashboard.PercentileView{Value: 62.5, Display: "62.50"},
	}
}

func TestViewKey(t *testing.T) {
	state := dashboard.State{Position: domain.PositionWR, Test: domain.TestForty, Round: 1, Candidate: 4.5}

	key := ViewKey("0123456789abcdef0123", state, dashboard.DefaultPolicy())
	assert.Equal(t, "0123456789abcdef:5:false:WR:Forty:1:4.5", key)

	skipping := dashboard.Policy{TopPicks: 5, SkipSentinelPercentile: true}
	assert.NotEqual(t, key, ViewKey("0123456789abcdef0123", state, skipping))
	assert.NotEqual(t, key, ViewKey("fedcba", state, dashboard.DefaultPolicy()))
}

func TestNoop(t *testing.T) {
	var c ViewCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", sampleView()))
	view, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, view)

	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Close())
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, "combine:test:roundtrip")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleView()
	require.NoError(t, c.Set(ctx, "wr", want))

	got, ok, err := c.Get(ctx, "wr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := c.client.TTL(ctx, c.key("wr")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCacheCorruptEntryIsMiss(t *testing.T) {
	c := newTestCache(t, "combine:test:corrupt")
	ctx := context.Background()

	require.NoError(t, c.client.Set(ctx, c.key("bad"), "{not json", time.Minute).Err())

	_, ok, err := c.Get(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := c.client.Exists(ctx, c.key("bad")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisCachePurgeOnlyOwnPrefix(t *testing.T) {
	c := newTestCache(t, "combine:test:purge")
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, sampleView()))
	}
	require.NoError(t, c.client.Set(ctx, "unrelated:key", "x", time.Minute).Err())
	t.Cleanup(func() { c.client.Del(context.Background(), "unrelated:key") })

	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	val, err := c.client.Get(ctx, "unrelated:key").Result()
	require.NoError(t, err)
	assert.Equal(t, "x", val)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, config.CacheConfig{Addr: "127.0.0.1:1"}, nil)
	assert.Error(t, err)
}

func TestNewRedisCacheDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	c := newRedisCache(client, config.CacheConfig{}, nil)
	assert.Equal(t, config.DefaultCacheKeyspace, c.prefix)
	assert.Equal(t, config.DefaultCacheTTL, c.ttl)
	assert.Equal(t, config.DefaultCacheKeyspace+":k", c.key("k"))
}
