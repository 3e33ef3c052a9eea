// Package extraction turns award documents into reporting requirements,
// compliance items and grant field updates.
package extraction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/model"
	"grantpilot/internal/oracle"
	"grantpilot/internal/repository"
	"grantpilot/internal/store"
	"grantpilot/pkg/logger"
	"grantpilot/pkg/metrics"
	"grantpilot/pkg/trace"
)

type Request struct {
	GrantID    string `json:"grant_id" binding:"required"`
	Base64Data string `json:"base64_data" binding:"required"`
	MimeType   string `json:"mime_type"`
	Filename   string `json:"filename"`
}

// Response echoes the model output as returned. Records are written from
// the coerced Result, so Extracted may hold values that were defaulted.
type Response struct {
	Extracted         map[string]any `json:"extracted"`
	CreatedReports    int            `json:"created_reports"`
	CreatedCompliance int            `json:"created_compliance"`
}

type Service struct {
	repos  *repository.Repositories
	oracle oracle.Oracle
	logger *zap.Logger
}

func NewService(repos *repository.Repositories, o oracle.Oracle, logger *zap.Logger) *Service {
	return &Service{repos: repos, oracle: o, logger: logger}
}

// ExtractAward reads the document, asks the model for structured terms and
// writes the resulting records for the grant in one transaction.
func (s *Service) ExtractAward(ctx context.Context, req Request) (*Response, error) {
	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("grant_id", req.GrantID),
		zap.String("filename", req.Filename),
		zap.String("mime_type", req.MimeType),
	)

	text, err := DecodeDocument(req.Base64Data, req.MimeType)
	if err != nil {
		log.Warn("Rejected award document", zap.Error(err))
		return nil, err
	}
	if _, err := s.repos.Grants.Get(ctx, req.GrantID); err != nil {
		return nil, err
	}

	raw, err := s.oracle.CompleteJSON(ctx, buildPrompt(req.Filename, truncate(text, MaxDocumentChars)), systemMessage)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	result := coerce(raw)

	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		for _, item := range result.ReportingRequirements {
			r := &model.ReportingRequirement{
				GrantID:     req.GrantID,
				ReportType:  item.ReportType,
				Title:       item.Title,
				Description: item.Description,
				DueDate:     item.DueDate,
				Frequency:   item.Frequency,
			}
			if err := tx.Reporting.Create(ctx, r); err != nil {
				return err
			}
		}
		for _, item := range result.ComplianceItems {
			c := &model.ComplianceItem{
				GrantID:     req.GrantID,
				Requirement: item.Requirement,
				Category:    item.Category,
				Deadline:    item.Deadline,
			}
			if err := tx.Compliance.Create(ctx, c); err != nil {
				return err
			}
		}
		if patch, ok := grantPatch(result.GrantInfo); ok {
			if _, err := tx.Grants.Update(ctx, req.GrantID, patch); err != nil {
				return err
			}
		}
		return tx.Store().Enqueue(ctx, store.Event{
			AggregateType: "grant",
			AggregateID:   req.GrantID,
			RoutingKey:    mqcontracts.EventAwardExtracted,
			Payload: mqcontracts.AwardExtractedPayload{
				GrantID:           req.GrantID,
				CreatedReports:    len(result.ReportingRequirements),
				CreatedCompliance: len(result.ComplianceItems),
				TraceID:           trace.FromContext(ctx),
			},
		})
	})
	if err != nil {
		log.Error("Failed to store extracted records", zap.Error(err))
		return nil, fmt.Errorf("store extraction for grant %s: %w", req.GrantID, err)
	}

	metrics.AddExtractedRecords("report", len(result.ReportingRequirements))
	metrics.AddExtractedRecords("compliance", len(result.ComplianceItems))
	log.Info("Award extracted",
		zap.Int("reports", len(result.ReportingRequirements)),
		zap.Int("compliance", len(result.ComplianceItems)),
		zap.Int("restrictions", len(result.Restrictions)),
	)

	return &Response{
		Extracted:         raw,
		CreatedReports:    len(result.ReportingRequirements),
		CreatedCompliance: len(result.ComplianceItems),
	}, nil
}

// grantPatch sets only the fields the document actually provided.
func grantPatch(info GrantInfo) (model.GrantUpdate, bool) {
	var patch model.GrantUpdate
	changed := false
	if info.AwardAmount > 0 {
		amount := info.AwardAmount
		patch.AmountAwarded = &amount
		changed = true
	}
	if info.GrantPeriodStart != "" {
		start := info.GrantPeriodStart
		patch.GrantPeriodStart = &start
		changed = true
	}
	if info.GrantPeriodEnd != "" {
		end := info.GrantPeriodEnd
		patch.GrantPeriodEnd = &end
		changed = true
	}
	return patch, changed
}
