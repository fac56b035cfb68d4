// Package cache keeps display snapshots of users in Redis. It never caches follow
// membership: the edge table is read on every call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
	"github.com/d60-Lab/social-graph/pkg/logger"
)

func userKey(id string) string { return fmt.Sprintf("user:%s", id) }

// UserCache resolves user summaries, reading through Redis to the user store.
// A nil Redis client turns it into a plain bulk loader.
type UserCache struct {
	users repository.UserRepository
	rdb   *redis.Client
	ttl   time.Duration

	bulkLoads atomic.Int64
}

func NewUserCache(users repository.UserRepository, rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{users: users, rdb: rdb, ttl: ttl}
}

// Summaries returns a summary per known id. Unknown ids are absent from the map.
func (c *UserCache) Summaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	out := make(map[string]*model.UserSummary, len(ids))
	ids = dedupe(ids)
	if len(ids) == 0 {
		return out, nil
	}

	if c.rdb != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = userKey(id)
		}
		vals, err := c.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			logger.Warn("user cache read failed", zap.Error(err))
		}
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var snap model.UserSummary
			if err := json.Unmarshal([]byte(str), &snap); err == nil {
				out[ids[i]] = &snap
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	c.bulkLoads.Add(1)
	users, err := c.users.GetMany(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		snap := u.Summary()
		out[u.ID] = &snap
		c.store(ctx, &snap)
	}
	return out, nil
}

// Invalidate drops a cached snapshot after a profile change.
func (c *UserCache) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, userKey(id)).Err(); err != nil {
		logger.Warn("user cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
}

// BulkLoads reports how many times the user store was hit.
func (c *UserCache) BulkLoads() int64 { return c.bulkLoads.Load() }

func (c *UserCache) store(ctx context.Context, snap *model.UserSummary) {
	if c.rdb == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, userKey(snap.ID), payload, c.ttl).Err(); err != nil {
		logger.Warn("user cache write failed", zap.String("user_id", snap.ID), zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
