// Package seed loads a demonstration dataset into an empty installation.
package seed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/pkg/util"
)

// MaxExistingGrants is the most grants an installation may hold and still
// accept demo data.
const MaxExistingGrants = 2

const lockKey = "seed-demo"

const (
	MsgAlreadySeeded = "Demo data already exists"
	MsgInProgress    = "Demo seeding already in progress"
)

type Result struct {
	Seeded  bool           `json:"seeded"`
	Message string         `json:"message,omitempty"`
	Summary map[string]int `json:"summary,omitempty"`
}

type Service struct {
	repos  *repository.Repositories
	lock   *util.Deduper
	logger *zap.Logger
	now    func() time.Time
}

// NewService takes a deduper used as a short-lived lock so two concurrent
// requests cannot both seed. A deduper without Redis always acquires.
func NewService(repos *repository.Repositories, lock *util.Deduper, logger *zap.Logger) *Service {
	return &Service{repos: repos, lock: lock, logger: logger, now: time.Now}
}

func (s *Service) Seed(ctx context.Context) (*Result, error) {
	if !s.lock.AcquireOnce(ctx, lockKey) {
		s.logger.Info("Demo seeding already running")
		return &Result{Message: MsgInProgress}, nil
	}
	defer s.lock.Release(ctx, lockKey)

	n, err := s.repos.Grants.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > MaxExistingGrants {
		s.logger.Info("Demo data already present", zap.Int64("grants", n))
		return &Result{Message: MsgAlreadySeeded}, nil
	}

	summary := map[string]int{}
	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		var err error
		summary, err = insert(ctx, tx, dataset(s.now().UTC()))
		return err
	})
	if err != nil {
		s.logger.Error("Demo seeding failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Demo data seeded", zap.Any("summary", summary))
	return &Result{Seeded: true, Summary: summary}, nil
}

func insert(ctx context.Context, tx *repository.Repositories, d demo) (map[string]int, error) {
	for i := range d.funders {
		if err := tx.Funders.Create(ctx, &d.funders[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.grants {
		g := &d.grants[i].grant
		if f := d.grants[i].funder; f >= 0 {
			g.FunderID = &d.funders[f].ID
			g.FunderName = d.funders[f].Name
		}
		if err := tx.Grants.Create(ctx, g); err != nil {
			return nil, err
		}
	}
	for i := range d.reports {
		r := &d.reports[i].report
		r.GrantID = d.grants[d.reports[i].grant].grant.ID
		if err := tx.Reporting.Create(ctx, r); err != nil {
			return nil, err
		}
	}
	for i := range d.compliance {
		c := &d.compliance[i].item
		c.GrantID = d.grants[d.compliance[i].grant].grant.ID
		if err := tx.Compliance.Create(ctx, c); err != nil {
			return nil, err
		}
	}
	for i := range d.content {
		if err := tx.Content.Create(ctx, &d.content[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.budgets {
		if err := tx.Budgets.Create(ctx, &d.budgets[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.outcomes {
		if err := tx.Outcomes.Create(ctx, &d.outcomes[i]); err != nil {
			return nil, err
		}
	}

	return map[string]int{
		model.CollFunders:    len(d.funders),
		model.CollGrants:     len(d.grants),
		model.CollReporting:  len(d.reports),
		model.CollCompliance: len(d.compliance),
		model.CollContent:    len(d.content),
		model.CollBudgets:    len(d.budgets),
		model.CollOutcomes:   len(d.outcomes),
	}, nil
}
