package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/store"
	"grantpilot/pkg/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/alicebob/miniredis/v2/server.(*Server).servePeer"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mqcontracts.DeadlineReminderPayload
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if key == mqcontracts.EventDeadlineReminder {
		p.events = append(p.events, payload.(mqcontracts.DeadlineReminderPayload))
	}
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func day(offset int) string {
	return fixedNow.AddDate(0, 0, offset).Format(model.DateLayout)
}

func setup(t *testing.T, pub Publisher) (*Scanner, *repository.Repositories) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	repos := repository.NewRepositories(store.NewMemory(), zap.NewNop())
	g := &model.Grant{Title: "Writing", Stage: model.StageWriting, Deadline: day(3)}
	require.NoError(t, repos.Grants.Create(ctx, g))
	require.NoError(t, repos.Grants.Create(ctx, &model.Grant{Title: "Far", Deadline: day(30)}))
	require.NoError(t, repos.Grants.Create(ctx, &model.Grant{Title: "Lapsed", Deadline: day(-2)}))
	require.NoError(t, repos.Reporting.Create(ctx, &model.ReportingRequirement{GrantID: g.ID, Title: "Late", DueDate: day(-1)}))
	require.NoError(t, repos.Compliance.Create(ctx, &model.ComplianceItem{GrantID: g.ID, Requirement: "Audit", Deadline: day(7)}))

	s := NewScanner(repos, pub, util.NewDeduper(rdb, 48*time.Hour, zap.NewNop()), zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s, repos
}

func TestScan_PublishesWindowAndOverdue(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := setup(t, pub)

	n, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	titles := map[string]mqcontracts.DeadlineReminderPayload{}
	for _, ev := range pub.events {
		titles[ev.Title] = ev
	}
	assert.Equal(t, 3, titles["Writing"].DaysLeft)
	assert.Equal(t, 7, titles["Audit"].DaysLeft)
	assert.True(t, titles["Late"].Overdue)
	assert.NotContains(t, titles, "Far")
	assert.NotContains(t, titles, "Lapsed")
}

func TestScan_OncePerDay(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := setup(t, pub)
	ctx := context.Background()

	_, err := s.Scan(ctx)
	require.NoError(t, err)
	n, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	s.now = func() time.Time { return fixedNow.AddDate(0, 0, 1) }
	n, err = s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestScan_FailedPublishIsRetried(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s, _ := setup(t, pub)
	ctx := context.Background()

	n, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	pub.err = nil
	n, err = s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStart_StopsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := setup(t, pub)
	s.WithInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return pub.count() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop")
	}
}
