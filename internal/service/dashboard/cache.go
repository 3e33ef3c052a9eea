package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"grantpilot/internal/model"
	"grantpilot/pkg/metrics"
)

const (
	cacheKeyPrefix = "dashboard:"
	// generationKey counts invalidations. A result computed before the
	// latest invalidation is never stored.
	generationKey = cacheKeyPrefix + "generation"
)

var errStale = errors.New("dashboard changed during load")

// Cache keeps the computed dashboard in Redis, keyed by UTC date so a new
// day never reads yesterday's day counts. A nil client disables it.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger, now: time.Now}
}

func (c *Cache) key() string {
	return cacheKeyPrefix + c.now().UTC().Format(model.DateLayout)
}

func (c *Cache) Get(ctx context.Context) (*model.Dashboard, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncrementDashboardCache("miss")
		return nil, false
	}
	if err != nil {
		metrics.IncrementDashboardCache("error")
		c.logger.Warn("Dashboard cache read failed", zap.Error(err))
		return nil, false
	}

	var d model.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		metrics.IncrementDashboardCache("error")
		return nil, false
	}
	metrics.IncrementDashboardCache("hit")
	return &d, true
}

// Generation reads the invalidation counter. Pass it to SetIfCurrent after
// computing from data loaded later. ok is false when caching is unavailable.
func (c *Cache) Generation(ctx context.Context) (gen int64, ok bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("Dashboard cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

// SetIfCurrent stores d unless Invalidate ran after gen was read.
func (c *Cache) SetIfCurrent(ctx context.Context, d *model.Dashboard, gen int64) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	key := c.key()
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		metrics.IncrementDashboardCache("stale")
		c.logger.Debug("Skipped caching a stale dashboard", zap.Int64("generation", gen))
	default:
		c.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops today's entry and bumps the generation so loads already
// in flight do not write their result back. Its signature matches
// repository write hooks.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	key := c.key()
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationKey)
		p.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.logger.Warn("Dashboard cache invalidation failed", zap.Error(err))
	}
}
