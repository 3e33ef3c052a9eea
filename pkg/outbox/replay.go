package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"grantpilot/pkg/trace"
)

// ReplayService republishes events that exhausted their retries.
type ReplayService struct {
	repo      *Repository
	publisher Publisher
	logger    *zap.Logger
}

func NewReplayService(repo *Repository, publisher Publisher, logger *zap.Logger) *ReplayService {
	return &ReplayService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ReplayEvent publishes a single event and records the outcome.
func (s *ReplayService) ReplayEvent(ctx context.Context, event *Event) error {
	ctx = withPayloadTraceID(ctx, event.Payload)
	if err := s.publisher.PublishRaw(ctx, event.RoutingKey, event.Payload); err != nil {
		if markErr := s.repo.MarkAsFailed(ctx, event.ID, 1); markErr != nil {
			return fmt.Errorf("failed to publish and mark as failed: %w (mark error: %v)", err, markErr)
		}
		return fmt.Errorf("failed to publish: %w", err)
	}

	if err := s.repo.MarkAsSent(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark as sent: %w", err)
	}
	return nil
}

// ReplayFailedEvents replays up to limit failed events and returns how many
// were delivered.
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.repo.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	replayed := 0
	for _, event := range events {
		if err := s.ReplayEvent(ctx, event); err != nil {
			s.logger.Warn("Replay failed",
				zap.Int64("event_id", event.ID),
				zap.String("routing_key", event.RoutingKey),
				zap.Error(err),
			)
			continue
		}
		replayed++
	}

	s.logger.Info("Outbox replay finished",
		zap.Int("candidates", len(events)),
		zap.Int("replayed", replayed),
	)
	return replayed, nil
}

func withPayloadTraceID(ctx context.Context, payload json.RawMessage) context.Context {
	var fields struct {
		TraceID string `json:"trace_id"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ctx
	}
	if fields.TraceID != "" {
		ctx = trace.WithContext(ctx, fields.TraceID)
	}
	return ctx
}
