package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) PublishRaw(_ context.Context, routingKey string, _ []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	return nil
}

func eventRows(mock pgxmock.PgxPoolIface, ids ...int64) *pgxmock.Rows {
	rows := mock.NewRows([]string{
		"id", "aggregate_type", "aggregate_id", "routing_key", "payload", "status",
		"retry_count", "next_retry_at", "created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "grant", "g-1", "grant.deleted", []byte(`{"grant_id":"g-1"}`), StatusPending, 0, (*time.Time)(nil), now, now)
	}
	return rows
}

func TestEnqueue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs("grant", "g-1", "grant.deleted", []byte(`{"grant_id":"g-1"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = Enqueue(context.Background(), mock, "grant", "g-1", "grant.deleted", map[string]string{"grant_id": "g-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatcher_PublishesAndMarksSent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").WithArgs(100).WillReturnRows(eventRows(mock, 1, 2))
	mock.ExpectExec("UPDATE outbox_events").WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE outbox_events").WithArgs(int64(2)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	pub := &recordingPublisher{}
	d := NewDispatcher(NewRepository(mock), pub, zap.NewNop())

	sent := d.ProcessPendingEvents(context.Background())
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"grant.deleted", "grant.deleted"}, pub.keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatcher_PublishFailureSchedulesRetry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").WithArgs(100).WillReturnRows(eventRows(mock, 7))
	mock.ExpectQuery("SELECT retry_count FROM outbox_events").WithArgs(int64(7)).
		WillReturnRows(mock.NewRows([]string{"retry_count"}).AddRow(0))
	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(StatusPending, 1, pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	d := NewDispatcher(NewRepository(mock), &recordingPublisher{err: errors.New("broker down")}, zap.NewNop())

	assert.Zero(t, d.ProcessPendingEvents(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsFailed_ExhaustsRetries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT retry_count FROM outbox_events").WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"retry_count"}).AddRow(4))
	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(StatusFailed, 5, (*time.Time)(nil), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewRepository(mock).MarkAsFailed(context.Background(), 3, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplayFailedEvents(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").WithArgs(50).WillReturnRows(eventRows(mock, 9))
	mock.ExpectExec("UPDATE outbox_events").WithArgs(int64(9)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	pub := &recordingPublisher{}
	n, err := NewReplayService(NewRepository(mock), pub, zap.NewNop()).ReplayFailedEvents(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
