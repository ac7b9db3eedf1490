// internal/app/system/codecache/redis.go
package codecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "studioops:orgcode:"

// Redis is a Cache backed by a shared Redis instance, for deployments that
// run several gateway replicas and want them to share resolution results.
// Errors are logged and treated as cache misses; the cache never fails a
// resolution.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl, log: logger}
}

func (c *Redis) Get(ctx context.Context, orgID string) (string, bool) {
	code, err := c.rdb.Get(ctx, redisKeyPrefix+orgID).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn("org-code cache read failed", zap.String("org_id", orgID), zap.Error(err))
		return "", false
	}
	return code, true
}

func (c *Redis) Set(ctx context.Context, orgID, code string) {
	if err := c.rdb.Set(ctx, redisKeyPrefix+orgID, code, c.ttl).Err(); err != nil {
		c.log.Warn("org-code cache write failed", zap.String("org_id", orgID), zap.Error(err))
	}
}

func (c *Redis) Invalidate(ctx context.Context, orgID string) {
	if err := c.rdb.Del(ctx, redisKeyPrefix+orgID).Err(); err != nil {
		c.log.Warn("org-code cache invalidate failed", zap.String("org_id", orgID), zap.Error(err))
	}
}
