package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grantpilot/internal/model"
	"grantpilot/internal/repository"
)

type Service struct {
	repos  *repository.Repositories
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time
	load   func(context.Context, *repository.Repositories) (Snapshot, error)
}

func NewService(repos *repository.Repositories, cache *Cache, logger *zap.Logger) *Service {
	return &Service{repos: repos, cache: cache, logger: logger, now: time.Now, load: Load}
}

// Get returns the cached dashboard for today or computes a fresh one.
func (s *Service) Get(ctx context.Context) (*model.Dashboard, error) {
	if d, ok := s.cache.Get(ctx); ok {
		return d, nil
	}

	gen, cacheable := s.cache.Generation(ctx)
	snap, err := s.load(ctx, s.repos)
	if err != nil {
		s.logger.Error("Failed to load dashboard inputs", zap.Error(err))
		return nil, err
	}

	d := Compute(snap, s.now())
	if cacheable {
		s.cache.SetIfCurrent(ctx, &d, gen)
	}
	s.logger.Debug("Dashboard computed",
		zap.Int("grants", len(snap.Grants)),
		zap.Int("upcoming", len(d.UpcomingDeadlines)),
		zap.Int("overdue", d.OverdueCount),
	)
	return &d, nil
}

// Load reads the three deadline collections concurrently.
func Load(ctx context.Context, repos *repository.Repositories) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Grants, err = repos.Grants.List(gctx, "", "")
		return err
	})
	g.Go(func() (err error) {
		snap.Reports, err = repos.Reporting.List(gctx, "", "")
		return err
	})
	g.Go(func() (err error) {
		snap.Compliance, err = repos.Compliance.List(gctx, "", "")
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
