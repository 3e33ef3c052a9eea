package store

import (
	"context"
	"encoding/json"
	"sync"

	"grantpilot/internal/apperr"
)

type memCollection struct {
	order []string
	docs  map[string]Document
}

type memData struct {
	colls  map[string]*memCollection
	events []Event
}

// Memory is a process-local driver used for development and tests. Atomic
// holds the write lock for the whole callback and restores a snapshot when
// it fails.
type Memory struct {
	mu   sync.RWMutex
	data *memData
}

func NewMemory() *Memory {
	return &Memory{data: &memData{colls: map[string]*memCollection{}}}
}

// Events returns every event enqueued so far.
func (m *Memory) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Event(nil), m.data.events...)
}

// DrainEvents returns and clears the queued events.
func (m *Memory) DrainEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.data.events
	m.data.events = nil
	return events
}

func (m *Memory) Find(ctx context.Context, coll string, f Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.find(coll, f), nil
}

func (m *Memory) Get(ctx context.Context, coll, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.get(coll, id)
}

func (m *Memory) Insert(ctx context.Context, coll string, docs ...Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.insert(coll, docs...)
}

func (m *Memory) Update(ctx context.Context, coll, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.update(coll, id, doc)
}

func (m *Memory) Upsert(ctx context.Context, coll, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.upsert(coll, id, doc)
	return nil
}

func (m *Memory) Delete(ctx context.Context, coll, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.delete(coll, id), nil
}

func (m *Memory) DeleteWhere(ctx context.Context, coll string, f Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteWhere(coll, f), nil
}

func (m *Memory) Count(ctx context.Context, coll string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.data.colls[coll]; ok {
		return int64(len(c.order)), nil
	}
	return 0, nil
}

func (m *Memory) Atomic(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	if err := fn(&memTx{data: m.data}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

func (m *Memory) Enqueue(ctx context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.events = append(m.data.events, ev)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// memTx is the Store handed to Atomic callbacks; the lock is already held.
type memTx struct {
	data *memData
}

func (t *memTx) Find(_ context.Context, coll string, f Filter) ([]Document, error) {
	return t.data.find(coll, f), nil
}

func (t *memTx) Get(_ context.Context, coll, id string) (Document, error) {
	return t.data.get(coll, id)
}

func (t *memTx) Insert(_ context.Context, coll string, docs ...Document) error {
	return t.data.insert(coll, docs...)
}

func (t *memTx) Update(_ context.Context, coll, id string, doc Document) error {
	return t.data.update(coll, id, doc)
}

func (t *memTx) Upsert(_ context.Context, coll, id string, doc Document) error {
	t.data.upsert(coll, id, doc)
	return nil
}

func (t *memTx) Delete(_ context.Context, coll, id string) (bool, error) {
	return t.data.delete(coll, id), nil
}

func (t *memTx) DeleteWhere(_ context.Context, coll string, f Filter) (int64, error) {
	return t.data.deleteWhere(coll, f), nil
}

func (t *memTx) Count(_ context.Context, coll string) (int64, error) {
	if c, ok := t.data.colls[coll]; ok {
		return int64(len(c.order)), nil
	}
	return 0, nil
}

func (t *memTx) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *memTx) Enqueue(_ context.Context, ev Event) error {
	t.data.events = append(t.data.events, ev)
	return nil
}

func (t *memTx) Ping(context.Context) error { return nil }

func (d *memData) coll(name string) *memCollection {
	c, ok := d.colls[name]
	if !ok {
		c = &memCollection{docs: map[string]Document{}}
		d.colls[name] = c
	}
	return c
}

func (d *memData) find(coll string, f Filter) []Document {
	docs := []Document{}
	c, ok := d.colls[coll]
	if !ok {
		return docs
	}
	for _, id := range c.order {
		doc := c.docs[id]
		if f.IsZero() || matches(doc, f) {
			docs = append(docs, cloneDoc(doc))
		}
	}
	return docs
}

func (d *memData) get(coll, id string) (Document, error) {
	if c, ok := d.colls[coll]; ok {
		if doc, ok := c.docs[id]; ok {
			return cloneDoc(doc), nil
		}
	}
	return nil, notFound(coll, id)
}

func (d *memData) insert(coll string, docs ...Document) error {
	ids := make([]string, len(docs))
	seen := make(map[string]struct{}, len(docs))
	c := d.coll(coll)
	for i, doc := range docs {
		id, err := DocumentID(doc)
		if err != nil {
			return err
		}
		_, stored := c.docs[id]
		_, batched := seen[id]
		if stored || batched {
			return apperr.Validation("%s/%s already exists", coll, id)
		}
		seen[id] = struct{}{}
		ids[i] = id
	}
	for i, doc := range docs {
		c.order = append(c.order, ids[i])
		c.docs[ids[i]] = cloneDoc(doc)
	}
	return nil
}

func (d *memData) update(coll, id string, doc Document) error {
	c, ok := d.colls[coll]
	if !ok {
		return notFound(coll, id)
	}
	if _, ok := c.docs[id]; !ok {
		return notFound(coll, id)
	}
	c.docs[id] = cloneDoc(doc)
	return nil
}

func (d *memData) upsert(coll, id string, doc Document) {
	c := d.coll(coll)
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = cloneDoc(doc)
}

func (d *memData) delete(coll, id string) bool {
	c, ok := d.colls[coll]
	if !ok {
		return false
	}
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (d *memData) deleteWhere(coll string, f Filter) int64 {
	c, ok := d.colls[coll]
	if !ok {
		return 0
	}
	var n int64
	kept := c.order[:0]
	for _, id := range c.order {
		if f.IsZero() || matches(c.docs[id], f) {
			delete(c.docs, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return n
}

func (d *memData) clone() *memData {
	out := &memData{
		colls:  make(map[string]*memCollection, len(d.colls)),
		events: append([]Event(nil), d.events...),
	}
	for name, c := range d.colls {
		cc := &memCollection{
			order: append([]string(nil), c.order...),
			docs:  make(map[string]Document, len(c.docs)),
		}
		for id, doc := range c.docs {
			cc.docs[id] = doc
		}
		out.colls[name] = cc
	}
	return out
}

// matches compares the field's JSON value the way Postgres ->> renders it.
func matches(doc Document, f Filter) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false
	}
	raw, ok := fields[f.Field]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == f.Value
	}
	return string(raw) == f.Value
}

func cloneDoc(doc Document) Document {
	return append(Document(nil), doc...)
}
