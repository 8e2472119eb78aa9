package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:seatmap:m1", snapshotKey("m1"))
	assert.Equal(t, "lock:guide:g1", guideLockKey("g1"))
}

// newTestCache connects to TRIPSEATS_TEST_REDIS_ADDR; without it the test is skipped.
func newTestCache(t *testing.T) (*RedisCache, *redis.Client) {
	t.Helper()
	addr := os.Getenv("TRIPSEATS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRIPSEATS_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	c := NewRedisCacheFromClient(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, client
}

func TestRedisCache_Snapshots(t *testing.T) {
	c, client := newTestCache(t)
	ctx := context.Background()
	mapID := uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), snapshotKey(mapID)) })

	snap, err := c.GetSnapshot(ctx, mapID, "T1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	for _, transport := range []string{"T1", "T2"} {
		require.NoError(t, c.SetSnapshot(ctx, &domain.SeatMapSnapshot{
			Map:         domain.SeatMap{ID: mapID, Name: "Coach", Rows: 1, Cols: 1},
			TransportID: transport,
			Seats:       []domain.Seat{{ID: "s1", SeatMapID: mapID, Label: "1A", Status: domain.SeatStatusAvailable}},
		}))
	}
	ttl, err := client.TTL(ctx, snapshotKey(mapID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	snap, err = c.GetSnapshot(ctx, mapID, "T1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "T1", snap.TransportID)
	assert.Equal(t, "1A", snap.Seats[0].Label)

	require.NoError(t, c.InvalidateSnapshot(ctx, mapID, "T1"))
	snap, err = c.GetSnapshot(ctx, mapID, "T1")
	require.NoError(t, err)
	assert.Nil(t, snap)
	snap, err = c.GetSnapshot(ctx, mapID, "T2")
	require.NoError(t, err)
	assert.NotNil(t, snap, "other transports stay cached")

	require.NoError(t, c.InvalidateSnapshot(ctx, mapID, ""))
	snap, err = c.GetSnapshot(ctx, mapID, "T2")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisCache_GuideLock(t *testing.T) {
	c, client := newTestCache(t)
	ctx := context.Background()
	guideID := uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), guideLockKey(guideID)) })

	ok, err := c.AcquireGuideLock(ctx, guideID, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireGuideLock(ctx, guideID, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, guideLockKey(guideID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.ReleaseGuideLock(ctx, guideID))
	ok, err = c.AcquireGuideLock(ctx, guideID, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
