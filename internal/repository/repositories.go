package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/model"
	"grantpilot/internal/store"
	"grantpilot/pkg/trace"
)

// Repositories bundles one repository per collection over a shared store.
type Repositories struct {
	store  store.Store
	logger *zap.Logger

	Content    *Repository[model.ContentItem]
	Funders    *Repository[model.FunderProfile]
	Grants     *Repository[model.Grant]
	Reporting  *Repository[model.ReportingRequirement]
	Compliance *Repository[model.ComplianceItem]
	Budgets    *Repository[model.BudgetTemplate]
	Outcomes   *Repository[model.OutcomeMetric]
	Settings   *SettingsRepository
}

func NewRepositories(s store.Store, logger *zap.Logger) *Repositories {
	return &Repositories{
		store:      s,
		logger:     logger,
		Content:    New[model.ContentItem](s, model.CollContent, logger),
		Funders:    New[model.FunderProfile](s, model.CollFunders, logger),
		Grants:     New[model.Grant](s, model.CollGrants, logger),
		Reporting:  New[model.ReportingRequirement](s, model.CollReporting, logger),
		Compliance: New[model.ComplianceItem](s, model.CollCompliance, logger),
		Budgets:    New[model.BudgetTemplate](s, model.CollBudgets, logger),
		Outcomes:   New[model.OutcomeMetric](s, model.CollOutcomes, logger),
		Settings:   NewSettingsRepository(s, logger),
	}
}

func (r *Repositories) Store() store.Store { return r.store }

// OnDeadlineWrite registers fn on the collections that feed the dashboard.
func (r *Repositories) OnDeadlineWrite(fn func(ctx context.Context)) {
	r.Grants.OnWrite(fn)
	r.Reporting.OnWrite(fn)
	r.Compliance.OnWrite(fn)
}

// Atomic runs fn with repositories bound to one store transaction. Write
// hooks fire again after commit so caches never keep pre-commit reads.
func (r *Repositories) Atomic(ctx context.Context, fn func(tx *Repositories) error) error {
	err := r.store.Atomic(ctx, func(s store.Store) error {
		return fn(r.with(s))
	})
	if err == nil {
		r.Grants.written(ctx)
	}
	return err
}

func (r *Repositories) with(s store.Store) *Repositories {
	return &Repositories{
		store:      s,
		logger:     r.logger,
		Content:    r.Content.With(s),
		Funders:    r.Funders.With(s),
		Grants:     r.Grants.With(s),
		Reporting:  r.Reporting.With(s),
		Compliance: r.Compliance.With(s),
		Budgets:    r.Budgets.With(s),
		Outcomes:   r.Outcomes.With(s),
		Settings:   NewSettingsRepository(s, r.logger),
	}
}

// DeleteGrant removes a grant with its reporting requirements and compliance
// items in one transaction and queues a grant.deleted event.
func (r *Repositories) DeleteGrant(ctx context.Context, id string) error {
	r.logger.Debug("Deleting grant with dependents", zap.String("grant_id", id))

	var reports, items int64
	err := r.Atomic(ctx, func(tx *Repositories) error {
		if err := tx.Grants.Delete(ctx, id); err != nil {
			return err
		}
		var err error
		if reports, err = tx.Reporting.DeleteWhere(ctx, "grant_id", id); err != nil {
			return err
		}
		if items, err = tx.Compliance.DeleteWhere(ctx, "grant_id", id); err != nil {
			return err
		}
		return tx.store.Enqueue(ctx, store.Event{
			AggregateType: "grant",
			AggregateID:   id,
			RoutingKey:    mqcontracts.EventGrantDeleted,
			Payload:       mqcontracts.GrantDeletedPayload{GrantID: id, TraceID: trace.FromContext(ctx)},
		})
	})
	if err != nil {
		r.logger.Error("Failed to delete grant", zap.String("grant_id", id), zap.Error(err))
		return fmt.Errorf("delete grant %s: %w", id, err)
	}

	r.logger.Info("Grant deleted",
		zap.String("grant_id", id),
		zap.Int64("reports_removed", reports),
		zap.Int64("compliance_removed", items),
	)
	return nil
}
