package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"grantpilot/internal/apperr"
	"grantpilot/internal/model"
	"grantpilot/internal/store"
)

type SettingsRepository struct {
	store  store.Store
	logger *zap.Logger
}

func NewSettingsRepository(s store.Store, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{store: s, logger: logger}
}

// Get returns the stored settings or an empty record with the fixed id.
func (r *SettingsRepository) Get(ctx context.Context) (*model.OrgSettings, error) {
	doc, err := r.store.Get(ctx, model.CollSettings, model.SettingsID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &model.OrgSettings{ID: model.SettingsID}, nil
	}
	if err != nil {
		r.logger.Error("Failed to load settings", zap.Error(err))
		return nil, err
	}

	var settings model.OrgSettings
	if err := json.Unmarshal(doc, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &settings, nil
}

// Put replaces the settings record.
func (r *SettingsRepository) Put(ctx context.Context, settings *model.OrgSettings) error {
	settings.ID = model.SettingsID
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.store.Upsert(ctx, model.CollSettings, model.SettingsID, doc); err != nil {
		r.logger.Error("Failed to save settings", zap.Error(err))
		return err
	}
	r.logger.Info("Settings saved", zap.String("org_name", settings.OrgName))
	return nil
}
