// Package portability exports and imports every collection as one bundle.
package portability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grantpilot/internal/apperr"
	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/store"
)

// Bundle maps a collection name to its documents.
type Bundle map[string][]store.Document

type Service struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewService(repos *repository.Repositories, logger *zap.Logger) *Service {
	return &Service{repos: repos, logger: logger}
}

// Export returns every collection, empty ones as empty arrays.
func (s *Service) Export(ctx context.Context) (Bundle, error) {
	s.logger.Debug("Exporting all collections")

	out := make(Bundle, len(model.Collections))
	st := s.repos.Store()
	for _, coll := range model.Collections {
		docs, err := st.Find(ctx, coll, store.Filter{})
		if err != nil {
			s.logger.Error("Failed to export collection", zap.String("collection", coll), zap.Error(err))
			return nil, fmt.Errorf("export %s: %w", coll, err)
		}
		if docs == nil {
			docs = []store.Document{}
		}
		out[coll] = docs
	}

	s.logger.Info("Export completed", zap.Int("collections", len(out)))
	return out, nil
}

// Import replaces each collection that has a non-empty array in b. Unknown
// keys and empty arrays are ignored. Documents without an id get a new one.
func (s *Service) Import(ctx context.Context, b Bundle) (map[string]int, error) {
	prepared := make(map[string][]store.Document, len(b))
	for _, coll := range model.Collections {
		docs := b[coll]
		if len(docs) == 0 {
			continue
		}
		fixed, err := withIDs(coll, docs)
		if err != nil {
			s.logger.Warn("Rejected import bundle", zap.String("collection", coll), zap.Error(err))
			return nil, err
		}
		prepared[coll] = fixed
	}

	counts := make(map[string]int, len(prepared))
	err := s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		st := tx.Store()
		for _, coll := range model.Collections {
			docs, ok := prepared[coll]
			if !ok {
				continue
			}
			if _, err := st.DeleteWhere(ctx, coll, store.Filter{}); err != nil {
				return fmt.Errorf("clear %s: %w", coll, err)
			}
			if err := st.Insert(ctx, coll, docs...); err != nil {
				return fmt.Errorf("insert %s: %w", coll, err)
			}
			counts[coll] = len(docs)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Import failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Import completed", zap.Any("counts", counts))
	return counts, nil
}

func withIDs(coll string, docs []store.Document) ([]store.Document, error) {
	out := make([]store.Document, 0, len(docs))
	seen := make(map[string]int, len(docs))
	for i, doc := range docs {
		var obj map[string]any
		if err := json.Unmarshal(doc, &obj); err != nil || obj == nil {
			return nil, apperr.Validation("%s[%d] is not a JSON object", coll, i)
		}
		id, _ := obj["id"].(string)
		if id == "" {
			if coll == model.CollSettings {
				id = model.SettingsID
			} else {
				id = uuid.NewString()
			}
			obj["id"] = id
			raw, err := json.Marshal(obj)
			if err != nil {
				return nil, fmt.Errorf("encode %s[%d]: %w", coll, i, err)
			}
			doc = raw
		}
		if first, dup := seen[id]; dup {
			return nil, apperr.Validation("%s[%d] repeats id %q from %s[%d]", coll, i, id, coll, first)
		}
		seen[id] = i
		out = append(out, doc)
	}
	return out, nil
}
