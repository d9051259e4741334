// Package cache mirrors coarse table summaries into Redis so external
// dashboards can read them without touching the game server. Every call is
// best effort; the game never depends on the cache being up.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 5 * time.Minute

// TableSnapshot is the published summary of one table.
type TableSnapshot struct {
	ID      string   `json:"id"`
	Game    string   `json:"game"`
	Players []string `json:"players"`
	Started bool     `json:"started"`
	Street  string   `json:"street"`
	Pot     int      `json:"pot"`
}

// Cache wraps the Redis client.
type Cache struct {
	rdb *redis.Client
}

// Connect dials Redis from a URL (redis://host:port/db) and verifies it with
// a ping.
func Connect(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func snapshotKey(id string) string {
	return "gamecartas:table:" + id
}

// SetTableSnapshot publishes a table summary with a short TTL.
func (c *Cache) SetTableSnapshot(ctx context.Context, snap TableSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey(snap.ID), b, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// GetTableSnapshot reads a table summary back. A missing key returns
// redis.Nil wrapped in the error.
func (c *Cache) GetTableSnapshot(ctx context.Context, id string) (TableSnapshot, error) {
	b, err := c.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		return TableSnapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap TableSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return TableSnapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
