package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantpilot/internal/apperr"
)

func doc(s string) Document { return Document(s) }

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Insert(ctx, "grants",
		doc(`{"id":"a","stage":"writing"}`),
		doc(`{"id":"b","stage":"awarded"}`),
		doc(`{"id":"c","stage":"writing"}`),
	))

	all, err := m.Find(ctx, "grants", Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	id, _ := DocumentID(all[0])
	assert.Equal(t, "a", id)

	writing, err := m.Find(ctx, "grants", Where("stage", "writing"))
	require.NoError(t, err)
	assert.Len(t, writing, 2)

	require.NoError(t, m.Update(ctx, "grants", "b", doc(`{"id":"b","stage":"closed"}`)))
	got, err := m.Get(ctx, "grants", "b")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b","stage":"closed"}`, string(got))

	err = m.Update(ctx, "grants", "zzz", doc(`{"id":"zzz"}`))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	deleted, err := m.Delete(ctx, "grants", "a")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = m.Delete(ctx, "grants", "a")
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := m.Count(ctx, "grants")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = m.Get(ctx, "grants", "a")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemory_InsertRejectsMissingAndDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	assert.ErrorIs(t, m.Insert(ctx, "content", doc(`{"title":"x"}`)), apperr.ErrValidation)

	require.NoError(t, m.Insert(ctx, "content", doc(`{"id":"1"}`)))
	assert.ErrorIs(t, m.Insert(ctx, "content", doc(`{"id":"2"}`), doc(`{"id":"1"}`)), apperr.ErrValidation)

	n, _ := m.Count(ctx, "content")
	assert.EqualValues(t, 1, n)
}

func TestMemory_InsertRejectsDuplicateWithinBatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.Insert(ctx, "grants", doc(`{"id":"g1","title":"a"}`), doc(`{"id":"g1","title":"b"}`))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	all, err := m.Find(ctx, "grants", Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, m.Insert(ctx, "grants", doc(`{"id":"g1"}`), doc(`{"id":"g2"}`)))
	deleted, err := m.Delete(ctx, "grants", "g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	all, err = m.Find(ctx, "grants", Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.JSONEq(t, `{"id":"g2"}`, string(all[0]))
}

func TestMemory_FindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, "c", doc(`{"id":"1"}`)))

	docs, _ := m.Find(ctx, "c", Filter{})
	docs[0][2] = 'X'

	got, _ := m.Get(ctx, "c", "1")
	assert.JSONEq(t, `{"id":"1"}`, string(got))
}

func TestMemory_DeleteWhere(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, "reporting",
		doc(`{"id":"r1","grant_id":"g1"}`),
		doc(`{"id":"r2","grant_id":"g2"}`),
		doc(`{"id":"r3","grant_id":"g1"}`),
	))

	n, err := m.DeleteWhere(ctx, "reporting", Where("grant_id", "g1"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, _ := m.Find(ctx, "reporting", Filter{})
	require.Len(t, left, 1)
	assert.JSONEq(t, `{"id":"r2","grant_id":"g2"}`, string(left[0]))
}

func TestMemory_AtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, "grants", doc(`{"id":"g1"}`)))
	require.NoError(t, m.Insert(ctx, "reporting", doc(`{"id":"r1","grant_id":"g1"}`)))

	boom := errors.New("boom")
	err := m.Atomic(ctx, func(tx Store) error {
		if _, err := tx.Delete(ctx, "grants", "g1"); err != nil {
			return err
		}
		if _, err := tx.DeleteWhere(ctx, "reporting", Where("grant_id", "g1")); err != nil {
			return err
		}
		if err := tx.Enqueue(ctx, Event{RoutingKey: "grant.deleted"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, _ := m.Count(ctx, "grants")
	assert.EqualValues(t, 1, n)
	n, _ = m.Count(ctx, "reporting")
	assert.EqualValues(t, 1, n)
	assert.Empty(t, m.Events())
}

func TestMemory_AtomicCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.Atomic(ctx, func(tx Store) error {
		if err := tx.Insert(ctx, "grants", doc(`{"id":"g1"}`)); err != nil {
			return err
		}
		return tx.Atomic(ctx, func(inner Store) error {
			return inner.Enqueue(ctx, Event{RoutingKey: "award.extracted", AggregateID: "g1"})
		})
	})
	require.NoError(t, err)

	n, _ := m.Count(ctx, "grants")
	assert.EqualValues(t, 1, n)
	events := m.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "g1", events[0].AggregateID)
	assert.Empty(t, m.Events())
}

func TestMemory_Upsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Upsert(ctx, "settings", "default", doc(`{"id":"default","org_name":"A"}`)))
	require.NoError(t, m.Upsert(ctx, "settings", "default", doc(`{"id":"default","org_name":"B"}`)))

	all, _ := m.Find(ctx, "settings", Filter{})
	require.Len(t, all, 1)
	assert.JSONEq(t, `{"id":"default","org_name":"B"}`, string(all[0]))
}

func TestMatches_NonStringValues(t *testing.T) {
	assert.True(t, matches(doc(`{"is_completed":false}`), Where("is_completed", "false")))
	assert.False(t, matches(doc(`{"x":"1"}`), Where("y", "1")))
}
