package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/repository"
	"grantpilot/pkg/mq"
	"grantpilot/pkg/util"
)

const maxSweepRetries = 5

// GrantDeletedHandler removes reporting requirements and compliance items
// left behind by a grant deletion. Sweeping the same grant twice is a no-op.
type GrantDeletedHandler struct {
	repos        *repository.Repositories
	retryCounter *util.RetryCounter
	logger       *zap.Logger
}

// NewGrantDeletedHandler accepts a nil retryCounter, in which case
// redeliveries are not capped.
func NewGrantDeletedHandler(repos *repository.Repositories, retryCounter *util.RetryCounter, logger *zap.Logger) *GrantDeletedHandler {
	return &GrantDeletedHandler{
		repos:        repos,
		retryCounter: retryCounter,
		logger:       logger,
	}
}

func (h *GrantDeletedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.GrantDeletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal grant deleted payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return fmt.Errorf("%w: %v", mq.ErrDrop, err)
	}
	if p.GrantID == "" {
		h.logger.Warn("Grant deleted event without grant id")
		return fmt.Errorf("%w: missing grant_id", mq.ErrDrop)
	}

	retryKey := util.FormatRetryKey("grant_deleted", p.GrantID)
	if h.retryCounter != nil {
		count, err := h.retryCounter.IncrementAndGet(ctx, retryKey)
		if err != nil {
			h.logger.Warn("Failed to increment retry counter", zap.Error(err))
		} else if count > maxSweepRetries {
			h.logger.Error("Max retries exceeded, dropping sweep",
				zap.String("grant_id", p.GrantID),
				zap.Int64("retry", count),
			)
			_ = h.retryCounter.Reset(ctx, retryKey)
			return fmt.Errorf("%w: retries exhausted for grant %s", mq.ErrDrop, p.GrantID)
		}
	}

	h.logger.Info("Sweeping grant dependents", zap.String("grant_id", p.GrantID))

	reports, err := h.repos.Reporting.DeleteWhere(ctx, "grant_id", p.GrantID)
	if err != nil {
		return h.handleRepoError("delete_reporting", p.GrantID, err)
	}
	items, err := h.repos.Compliance.DeleteWhere(ctx, "grant_id", p.GrantID)
	if err != nil {
		return h.handleRepoError("delete_compliance", p.GrantID, err)
	}

	if h.retryCounter != nil {
		_ = h.retryCounter.Reset(ctx, retryKey)
	}

	h.logger.Info("Grant dependents swept",
		zap.String("grant_id", p.GrantID),
		zap.Int64("reports_removed", reports),
		zap.Int64("compliance_removed", items),
	)
	return nil
}

func (h *GrantDeletedHandler) handleRepoError(op, grantID string, err error) error {
	isRetryable, errType := util.IsRetryableError(err)
	h.logger.Error("Repo error",
		zap.String("op", op),
		zap.String("grant_id", grantID),
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Error(err),
	)

	if isRetryable {
		return err
	}
	return fmt.Errorf("%w: %v", mq.ErrDrop, err)
}
