package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/store"
	"grantpilot/pkg/mq"
	"grantpilot/pkg/util"
)

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) DeleteWhere(context.Context, string, store.Filter) (int64, error) {
	return 0, f.err
}

func payload(t *testing.T, grantID string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(mqcontracts.GrantDeletedPayload{GrantID: grantID})
	require.NoError(t, err)
	return raw
}

func TestGrantDeletedHandler_SweepsOrphans(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(store.NewMemory(), zap.NewNop())

	require.NoError(t, repos.Reporting.Create(ctx, &model.ReportingRequirement{GrantID: "gone", Title: "Q1"}))
	require.NoError(t, repos.Compliance.Create(ctx, &model.ComplianceItem{GrantID: "gone", Requirement: "Keep receipts"}))
	require.NoError(t, repos.Reporting.Create(ctx, &model.ReportingRequirement{GrantID: "kept", Title: "Q2"}))

	h := NewGrantDeletedHandler(repos, nil, zap.NewNop())
	require.NoError(t, h.Handle(ctx, payload(t, "gone")))
	require.NoError(t, h.Handle(ctx, payload(t, "gone")))

	reports, err := repos.Reporting.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "kept", reports[0].GrantID)

	items, err := repos.Compliance.List(ctx, "grant_id", "gone")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGrantDeletedHandler_DropsBadPayloads(t *testing.T) {
	repos := repository.NewRepositories(store.NewMemory(), zap.NewNop())
	h := NewGrantDeletedHandler(repos, nil, zap.NewNop())

	assert.ErrorIs(t, h.Handle(context.Background(), json.RawMessage(`{not json`)), mq.ErrDrop)
	assert.ErrorIs(t, h.Handle(context.Background(), json.RawMessage(`{}`)), mq.ErrDrop)
}

func TestGrantDeletedHandler_RetryableErrorRequeues(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := failingStore{Store: store.NewMemory(), err: errors.New("connection reset by peer")}
	repos := repository.NewRepositories(s, zap.NewNop())
	h := NewGrantDeletedHandler(repos, util.NewRetryCounter(rdb, time.Hour), zap.NewNop())

	ctx := context.Background()
	for i := 0; i < maxSweepRetries; i++ {
		err := h.Handle(ctx, payload(t, "g1"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, mq.ErrDrop)
	}

	err := h.Handle(ctx, payload(t, "g1"))
	assert.ErrorIs(t, err, mq.ErrDrop)
	assert.False(t, mr.Exists(util.FormatRetryKey("grant_deleted", "g1")))
}

func TestGrantDeletedHandler_PermanentErrorDrops(t *testing.T) {
	s := failingStore{Store: store.NewMemory(), err: errors.New("permission denied")}
	repos := repository.NewRepositories(s, zap.NewNop())
	h := NewGrantDeletedHandler(repos, nil, zap.NewNop())

	assert.ErrorIs(t, h.Handle(context.Background(), payload(t, "g1")), mq.ErrDrop)
}
