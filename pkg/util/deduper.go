package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper guards one-shot work with a Redis SETNX key.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce returns true the first time key is seen within the TTL.
// Without Redis, or when Redis fails, it allows the work through.
func (d *Deduper) AcquireOnce(ctx context.Context, key string) bool {
	if d.rdb == nil {
		return true
	}

	ok, err := d.rdb.SetNX(ctx, "dedup:"+key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("dedup_key", key),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Debug("Skipped duplicate", zap.String("dedup_key", key))
	}
	return ok
}

// Release drops the key so the work can be retried.
func (d *Deduper) Release(ctx context.Context, key string) {
	if d.rdb == nil {
		return
	}
	if err := d.rdb.Del(ctx, "dedup:"+key).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key", zap.String("dedup_key", key), zap.Error(err))
	}
}
