package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grantpilot/internal/model"
	"grantpilot/internal/store"
)

// Repository is a typed view over one document collection.
type Repository[T any] struct {
	store   store.Store
	coll    string
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	onWrite func(ctx context.Context)
}

func New[T any](s store.Store, coll string, logger *zap.Logger) *Repository[T] {
	return &Repository[T]{
		store:  s,
		coll:   coll,
		logger: logger.With(zap.String("collection", coll)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// With returns a copy bound to s, typically a transaction.
func (r *Repository[T]) With(s store.Store) *Repository[T] {
	cp := *r
	cp.store = s
	return &cp
}

// OnWrite registers a hook run after every successful write.
func (r *Repository[T]) OnWrite(fn func(ctx context.Context)) {
	r.onWrite = fn
}

func (r *Repository[T]) Collection() string { return r.coll }

func (r *Repository[T]) written(ctx context.Context) {
	if r.onWrite != nil {
		r.onWrite(ctx)
	}
}

// List returns every record, or those whose field equals value when field
// is non-empty.
func (r *Repository[T]) List(ctx context.Context, field, value string) ([]T, error) {
	r.logger.Debug("Listing records", zap.String("field", field), zap.String("value", value))
	docs, err := r.store.Find(ctx, r.coll, store.Where(field, value))
	if err != nil {
		r.logger.Error("Failed to list records", zap.Error(err))
		return nil, err
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			r.logger.Error("Failed to decode record", zap.Error(err))
			return nil, fmt.Errorf("decode %s: %w", r.coll, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := r.store.Get(ctx, r.coll, id)
	if err != nil {
		return nil, err
	}
	var item T
	if err := json.Unmarshal(doc, &item); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", r.coll, id, err)
	}
	return &item, nil
}

// Create assigns an id and timestamps, then persists item.
func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	id := r.newID()
	if s, ok := any(item).(model.Stamper); ok {
		s.Stamp(id, r.now())
	}
	r.logger.Debug("Creating record", zap.String("id", id))

	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.coll, err)
	}
	if err := r.store.Insert(ctx, r.coll, doc); err != nil {
		r.logger.Error("Failed to create record", zap.String("id", id), zap.Error(err))
		return err
	}

	r.logger.Info("Record created", zap.String("id", id))
	r.written(ctx)
	return nil
}

// Update merges the non-nil fields of patch onto the stored record.
func (r *Repository[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	r.logger.Debug("Updating record", zap.String("id", id))
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode %s patch: %w", r.coll, err)
	}
	if err := json.Unmarshal(body, current); err != nil {
		return nil, fmt.Errorf("apply %s patch: %w", r.coll, err)
	}
	if t, ok := any(current).(model.Toucher); ok {
		t.Touch(r.now())
	}

	if err := r.Save(ctx, id, current); err != nil {
		return nil, err
	}
	r.logger.Info("Record updated", zap.String("id", id))
	return current, nil
}

// Save overwrites an existing record as-is.
func (r *Repository[T]) Save(ctx context.Context, id string, item *T) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", r.coll, id, err)
	}
	if err := r.store.Update(ctx, r.coll, id, doc); err != nil {
		r.logger.Error("Failed to save record", zap.String("id", id), zap.Error(err))
		return err
	}
	r.written(ctx)
	return nil
}

// Delete removes id. Missing records are not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting record", zap.String("id", id))
	deleted, err := r.store.Delete(ctx, r.coll, id)
	if err != nil {
		r.logger.Error("Failed to delete record", zap.String("id", id), zap.Error(err))
		return err
	}
	r.logger.Info("Record deleted", zap.String("id", id), zap.Bool("existed", deleted))
	r.written(ctx)
	return nil
}

// DeleteWhere removes every record whose field equals value.
func (r *Repository[T]) DeleteWhere(ctx context.Context, field, value string) (int64, error) {
	n, err := r.store.DeleteWhere(ctx, r.coll, store.Where(field, value))
	if err != nil {
		r.logger.Error("Failed to delete records",
			zap.String("field", field),
			zap.String("value", value),
			zap.Error(err),
		)
		return 0, err
	}
	if n > 0 {
		r.logger.Info("Records deleted",
			zap.String("field", field),
			zap.String("value", value),
			zap.Int64("count", n),
		)
		r.written(ctx)
	}
	return n, nil
}

func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, r.coll)
}
