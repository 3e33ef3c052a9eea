package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDeduper_AcquireOnce(t *testing.T) {
	mr, rdb := newRedis(t)
	d := NewDeduper(rdb, time.Minute, nil)
	ctx := context.Background()

	assert.True(t, d.AcquireOnce(ctx, "reminder:g1:2025-04-15"))
	assert.False(t, d.AcquireOnce(ctx, "reminder:g1:2025-04-15"))
	assert.True(t, d.AcquireOnce(ctx, "reminder:g2:2025-04-15"))

	mr.FastForward(2 * time.Minute)
	assert.True(t, d.AcquireOnce(ctx, "reminder:g1:2025-04-15"))
}

func TestDeduper_Release(t *testing.T) {
	_, rdb := newRedis(t)
	d := NewDeduper(rdb, time.Minute, nil)
	ctx := context.Background()

	require.True(t, d.AcquireOnce(ctx, "k"))
	d.Release(ctx, "k")
	assert.True(t, d.AcquireOnce(ctx, "k"))
}

func TestDeduper_FailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	d := NewDeduper(rdb, time.Minute, nil)
	mr.Close()

	assert.True(t, d.AcquireOnce(context.Background(), "k"))
	assert.True(t, NewDeduper(nil, time.Minute, nil).AcquireOnce(context.Background(), "k"))
}

func TestRetryCounter(t *testing.T) {
	mr, rdb := newRedis(t)
	rc := NewRetryCounter(rdb, time.Hour)
	ctx := context.Background()
	key := FormatRetryKey("sweeper", "abc")
	assert.Equal(t, "retry:sweeper:abc", key)

	n, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := int64(1); i <= 3; i++ {
		n, err = rc.IncrementAndGet(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.True(t, mr.TTL(key) > 0)

	require.NoError(t, rc.Reset(ctx, key))
	n, err = rc.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		kind      string
	}{
		{"nil", nil, false, ""},
		{"no rows", fmt.Errorf("lookup: %w", pgx.ErrNoRows), false, "not_found"},
		{"unique", &pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{"conn exception", &pgconn.PgError{Code: "08006"}, true, "db_transient_error"},
		{"deadline", context.DeadlineExceeded, true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"connection text", errors.New("connection refused"), true, "db_connection_error"},
		{"other", errors.New("boom"), false, "unknown_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, kind := IsRetryableError(tt.err)
			assert.Equal(t, tt.retryable, retryable)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(1, 3, true))
	assert.True(t, ShouldRetry(3, 3, true))
	assert.False(t, ShouldRetry(4, 3, true))
	assert.False(t, ShouldRetry(1, 3, false))
}
