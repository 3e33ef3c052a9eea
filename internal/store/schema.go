package store

import (
	"context"
	"fmt"

	"grantpilot/pkg/outbox"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT      NOT NULL,
	id         TEXT      NOT NULL,
	seq        BIGSERIAL,
	doc        JSONB     NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq);
CREATE INDEX IF NOT EXISTS documents_grant_id_idx ON documents (collection, (doc->>'grant_id'));
`

// EnsureSchema creates the document and outbox tables if missing.
func EnsureSchema(ctx context.Context, db outbox.Querier) error {
	for _, ddl := range []string{documentsSchema, outbox.Schema} {
		if _, err := db.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
