package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"grantpilot/pkg/metrics"
	"grantpilot/pkg/otel"
	"grantpilot/pkg/outbox"
)

// DB is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DB interface {
	outbox.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Postgres stores every collection in one JSONB table keyed by
// (collection, id).
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) observe(ctx context.Context, op, coll string, fn func(context.Context) error) error {
	start := time.Now()
	err := otel.StoreSpan(ctx, "postgresql", op, coll, fn)
	metrics.RecordStoreOp(op, coll, time.Since(start))
	return err
}

func (p *Postgres) Find(ctx context.Context, coll string, f Filter) ([]Document, error) {
	var docs []Document
	err := p.observe(ctx, "find", coll, func(ctx context.Context) error {
		var (
			rows pgx.Rows
			err  error
		)
		if f.IsZero() {
			rows, err = p.db.Query(ctx, `
				SELECT doc FROM documents
				WHERE collection = $1
				ORDER BY seq
			`, coll)
		} else {
			rows, err = p.db.Query(ctx, `
				SELECT doc FROM documents
				WHERE collection = $1 AND doc->>$2 = $3
				ORDER BY seq
			`, coll, f.Field, f.Value)
		}
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", coll, err)
		}
		defer rows.Close()

		docs = []Document{}
		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return fmt.Errorf("failed to scan %s document: %w", coll, err)
			}
			docs = append(docs, Document(raw))
		}
		return rows.Err()
	})
	return docs, err
}

func (p *Postgres) Get(ctx context.Context, coll, id string) (Document, error) {
	var doc Document
	err := p.observe(ctx, "get", coll, func(ctx context.Context) error {
		var raw []byte
		err := p.db.QueryRow(ctx, `
			SELECT doc FROM documents
			WHERE collection = $1 AND id = $2
		`, coll, id).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(coll, id)
		}
		if err != nil {
			return fmt.Errorf("failed to get %s/%s: %w", coll, id, err)
		}
		doc = Document(raw)
		return nil
	})
	return doc, err
}

func (p *Postgres) Insert(ctx context.Context, coll string, docs ...Document) error {
	return p.observe(ctx, "insert", coll, func(ctx context.Context) error {
		for _, doc := range docs {
			id, err := DocumentID(doc)
			if err != nil {
				return err
			}
			if _, err := p.db.Exec(ctx, `
				INSERT INTO documents (collection, id, doc)
				VALUES ($1, $2, $3)
			`, coll, id, []byte(doc)); err != nil {
				return fmt.Errorf("failed to insert %s/%s: %w", coll, id, err)
			}
		}
		return nil
	})
}

func (p *Postgres) Update(ctx context.Context, coll, id string, doc Document) error {
	return p.observe(ctx, "update", coll, func(ctx context.Context) error {
		tag, err := p.db.Exec(ctx, `
			UPDATE documents SET doc = $3
			WHERE collection = $1 AND id = $2
		`, coll, id, []byte(doc))
		if err != nil {
			return fmt.Errorf("failed to update %s/%s: %w", coll, id, err)
		}
		if tag.RowsAffected() == 0 {
			return notFound(coll, id)
		}
		return nil
	})
}

func (p *Postgres) Upsert(ctx context.Context, coll, id string, doc Document) error {
	return p.observe(ctx, "upsert", coll, func(ctx context.Context) error {
		if _, err := p.db.Exec(ctx, `
			INSERT INTO documents (collection, id, doc)
			VALUES ($1, $2, $3)
			ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc
		`, coll, id, []byte(doc)); err != nil {
			return fmt.Errorf("failed to upsert %s/%s: %w", coll, id, err)
		}
		return nil
	})
}

func (p *Postgres) Delete(ctx context.Context, coll, id string) (bool, error) {
	var deleted bool
	err := p.observe(ctx, "delete", coll, func(ctx context.Context) error {
		tag, err := p.db.Exec(ctx, `
			DELETE FROM documents
			WHERE collection = $1 AND id = $2
		`, coll, id)
		if err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", coll, id, err)
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	return deleted, err
}

func (p *Postgres) DeleteWhere(ctx context.Context, coll string, f Filter) (int64, error) {
	var n int64
	err := p.observe(ctx, "delete_where", coll, func(ctx context.Context) error {
		var (
			tag pgconn.CommandTag
			err error
		)
		if f.IsZero() {
			tag, err = p.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, coll)
		} else {
			tag, err = p.db.Exec(ctx, `
				DELETE FROM documents
				WHERE collection = $1 AND doc->>$2 = $3
			`, coll, f.Field, f.Value)
		}
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", coll, err)
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

func (p *Postgres) Count(ctx context.Context, coll string) (int64, error) {
	var n int64
	err := p.observe(ctx, "count", coll, func(ctx context.Context) error {
		if err := p.db.QueryRow(ctx, `
			SELECT COUNT(*) FROM documents WHERE collection = $1
		`, coll).Scan(&n); err != nil {
			return fmt.Errorf("failed to count %s: %w", coll, err)
		}
		return nil
	})
	return n, err
}

// Atomic runs fn inside a transaction, or a savepoint when already in one.
func (p *Postgres) Atomic(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		return fn(&Postgres{db: tx})
	})
}

func (p *Postgres) Enqueue(ctx context.Context, ev Event) error {
	return p.observe(ctx, "enqueue", "outbox_events", func(ctx context.Context) error {
		return outbox.Enqueue(ctx, p.db, ev.AggregateType, ev.AggregateID, ev.RoutingKey, ev.Payload)
	})
}

func (p *Postgres) Ping(ctx context.Context) error {
	if pg, ok := p.db.(pinger); ok {
		return pg.Ping(ctx)
	}
	return nil
}
