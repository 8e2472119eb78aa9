// Package cache keeps seat-map snapshots and per-guide locks in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tripseats/config"
	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	snapshotTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, snapshotTTL time.Duration) *RedisCache {
	return NewRedisCacheFromClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		snapshotTTL,
	)
}

func NewRedisCacheFromClient(client *redis.Client, snapshotTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, snapshotTTL: snapshotTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSnapshot returns nil without error on a cache miss.
func (c *RedisCache) GetSnapshot(ctx context.Context, mapID, transportID string) (*domain.SeatMapSnapshot, error) {
	data, err := c.client.HGet(ctx, snapshotKey(mapID), transportID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap domain.SeatMapSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SetSnapshot stores the snapshot under its map. The TTL applies to the whole map entry.
func (c *RedisCache) SetSnapshot(ctx context.Context, snap *domain.SeatMapSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	key := snapshotKey(snap.Map.ID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, snap.TransportID, payload)
	if c.snapshotTTL > 0 {
		pipe.Expire(ctx, key, c.snapshotTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateSnapshot drops the snapshot of one transport, or of every transport when
// transportID is empty.
func (c *RedisCache) InvalidateSnapshot(ctx context.Context, mapID, transportID string) error {
	if transportID == "" {
		return c.client.Del(ctx, snapshotKey(mapID)).Err()
	}
	return c.client.HDel(ctx, snapshotKey(mapID), transportID).Err()
}

func (c *RedisCache) AcquireGuideLock(ctx context.Context, guideID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, guideLockKey(guideID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseGuideLock(ctx context.Context, guideID string) error {
	return c.client.Del(ctx, guideLockKey(guideID)).Err()
}

func snapshotKey(mapID string) string {
	return fmt.Sprintf("cache:seatmap:%s", mapID)
}

func guideLockKey(guideID string) string {
	return fmt.Sprintf("lock:guide:%s", guideID)
}
