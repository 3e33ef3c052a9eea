// Package store is a collection-of-JSON-documents abstraction with a
// Postgres JSONB driver and an in-memory driver.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"grantpilot/internal/apperr"
)

// Document is one stored record encoded as a JSON object with an "id" field.
type Document = json.RawMessage

// Filter selects documents whose top-level Field equals Value. A zero Filter
// matches everything.
type Filter struct {
	Field string
	Value string
}

func (f Filter) IsZero() bool { return f.Field == "" }

// Where builds an equality filter.
func Where(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// Event is written alongside business data and delivered later by the
// outbox dispatcher.
type Event struct {
	AggregateType string
	AggregateID   string
	RoutingKey    string
	Payload       any
}

type Store interface {
	// Find returns matching documents in insertion order.
	Find(ctx context.Context, coll string, f Filter) ([]Document, error)
	Get(ctx context.Context, coll, id string) (Document, error)
	Insert(ctx context.Context, coll string, docs ...Document) error
	// Update replaces an existing document; apperr.ErrNotFound if absent.
	Update(ctx context.Context, coll, id string, doc Document) error
	Upsert(ctx context.Context, coll, id string, doc Document) error
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, coll, id string) (bool, error)
	DeleteWhere(ctx context.Context, coll string, f Filter) (int64, error)
	Count(ctx context.Context, coll string) (int64, error)
	// Atomic runs fn against a store whose writes commit together.
	Atomic(ctx context.Context, fn func(Store) error) error
	Enqueue(ctx context.Context, ev Event) error
	Ping(ctx context.Context) error
}

// DocumentID extracts the "id" field from doc.
func DocumentID(doc Document) (string, error) {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return "", apperr.Validation("document is not a JSON object: %v", err)
	}
	if head.ID == "" {
		return "", apperr.Validation("document has no id")
	}
	return head.ID, nil
}

func notFound(coll, id string) error {
	return fmt.Errorf("%s: %w", coll, apperr.NotFound("document", id))
}
