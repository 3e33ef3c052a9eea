// Package reminder periodically publishes deadline.reminder events for
// items that are due soon or overdue.
package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/service/dashboard"
	"grantpilot/pkg/metrics"
	"grantpilot/pkg/util"
)

// Publisher sends one event to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Scanner struct {
	repos     *repository.Repositories
	publisher Publisher
	dedup     *util.Deduper
	logger    *zap.Logger
	interval  time.Duration
	window    int
	now       func() time.Time
}

func NewScanner(repos *repository.Repositories, publisher Publisher, dedup *util.Deduper, logger *zap.Logger) *Scanner {
	return &Scanner{
		repos:     repos,
		publisher: publisher,
		dedup:     dedup,
		logger:    logger,
		interval:  time.Hour,
		window:    7,
		now:       time.Now,
	}
}

func (s *Scanner) WithInterval(interval time.Duration) *Scanner {
	s.interval = interval
	return s
}

// WithWindow sets how many days ahead an upcoming item is reminded about.
func (s *Scanner) WithWindow(days int) *Scanner {
	s.window = days
	return s
}

// Start scans once immediately, then every interval until ctx is done.
func (s *Scanner) Start(ctx context.Context) {
	s.logger.Info("Starting deadline reminder scanner",
		zap.Duration("interval", s.interval),
		zap.Int("window_days", s.window),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Reminder scan failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Deadline reminder scanner stopped")
			return
		case <-ticker.C:
		}
	}
}

// Scan publishes reminders that have not been sent today and returns how
// many were published.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	snap, err := dashboard.Load(ctx, s.repos)
	if err != nil {
		return 0, err
	}

	today := s.now().UTC()
	stamp := today.Format(model.DateLayout)
	upcoming, overdue := dashboard.Deadlines(snap, today)

	var due []model.Deadline
	for _, dl := range upcoming {
		if dl.DaysLeft > s.window {
			break
		}
		due = append(due, dl)
	}
	for _, dl := range overdue {
		// a lapsed application deadline is not actionable
		if dl.Type != model.DeadlineApplication {
			due = append(due, dl)
		}
	}

	sent := 0
	for _, dl := range due {
		key := fmt.Sprintf("reminder:%s:%s:%s:%s", dl.Type, dl.ID, dl.Date, stamp)
		if !s.dedup.AcquireOnce(ctx, key) {
			metrics.IncrementReminderPublished(dl.Type, "duplicate")
			continue
		}

		ev := mqcontracts.DeadlineReminderPayload{
			Kind:     dl.Type,
			ID:       dl.ID,
			GrantID:  dl.GrantID,
			Title:    dl.Title,
			Date:     dl.Date,
			DaysLeft: dl.DaysLeft,
			Overdue:  dl.DaysLeft < 0,
		}
		if err := s.publisher.Publish(ctx, mqcontracts.EventDeadlineReminder, ev); err != nil {
			s.dedup.Release(ctx, key)
			metrics.IncrementReminderPublished(dl.Type, "error")
			s.logger.Error("Failed to publish reminder",
				zap.String("kind", dl.Type),
				zap.String("id", dl.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.IncrementReminderPublished(dl.Type, "published")
		sent++
	}

	if sent > 0 {
		s.logger.Info("Deadline reminders published", zap.Int("count", sent))
	}
	return sent, nil
}
