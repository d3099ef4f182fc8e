package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

const (
	profileCacheKeyPrefix = "profile:"
	defaultProfileTTL     = 10 * time.Minute
)

// setIfNewerScript stores a profile unless the cached copy is newer. Entries
// are hashes of version, updated-at in microseconds and the JSON document;
// equal versions are ordered by updated-at.
var setIfNewerScript = redis.NewScript(`
local cur = redis.call("HMGET", KEYS[1], "v", "ts")
if cur[1] then
	local v, nv = tonumber(cur[1]), tonumber(ARGV[1])
	if v > nv or (v == nv and tonumber(cur[2]) >= tonumber(ARGV[2])) then
		return 0
	end
end
redis.call("HSET", KEYS[1], "v", ARGV[1], "ts", ARGV[2], "data", ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

// RedisProfileCache stores whole profiles as JSON. A nil client turns every
// call into a miss or a no-op.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger

	warnedUnavailable atomic.Bool
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &RedisProfileCache{client: client, ttl: ttl, logger: log}
}

func profileCacheKey(userID uuid.UUID) string {
	return profileCacheKeyPrefix + userID.String()
}

func (c *RedisProfileCache) warnUnavailableOnce(err error) {
	if c.warnedUnavailable.CompareAndSwap(false, true) {
		c.logger.Warn("Redis unavailable, bypassing profile cache", zap.Error(err))
	}
}

func (c *RedisProfileCache) Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, bool) {
	if c.client == nil {
		return nil, false
	}

	b, err := c.client.HGet(ctx, profileCacheKey(userID), "data").Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warnUnavailableOnce(err)
		}
		return nil, false
	}

	var p profile.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		c.logger.Warn("Failed to decode cached profile", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, false
	}
	p.Normalize()
	return &p, true
}

// Set never replaces a newer cached copy of the same profile.
func (c *RedisProfileCache) Set(ctx context.Context, p *profile.Profile) error {
	if c.client == nil || p == nil {
		return nil
	}

	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	args := []any{p.Version, p.UpdatedAt.UnixMicro(), b, c.ttl.Milliseconds()}
	if err := setIfNewerScript.Run(ctx, c.client, []string{profileCacheKey(p.UserID)}, args...).Err(); err != nil {
		c.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, profileCacheKey(userID)).Err(); err != nil {
		c.warnUnavailableOnce(err)
		return err
	}
	return nil
}

var _ service.ProfileCache = (*RedisProfileCache)(nil)
