package drafting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"grantpilot/internal/apperr"
	"grantpilot/internal/oracle"
	"grantpilot/pkg/logger"
)

type Request struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

type Service struct {
	oracle oracle.Oracle
	logger *zap.Logger
}

func NewService(o oracle.Oracle, logger *zap.Logger) *Service {
	return &Service{oracle: o, logger: logger}
}

// Draft returns the model's prose for the request unmodified.
func (s *Service) Draft(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", apperr.Validation("prompt is required")
	}

	content, err := s.oracle.Complete(ctx, buildPrompt(req), oracle.DefaultSystemMessage)
	if err != nil {
		return "", err
	}
	logger.WithTrace(ctx, s.logger).Info("Draft generated",
		zap.Int("prompt_chars", len(req.Prompt)),
		zap.Int("content_chars", len(content)),
	)
	return content, nil
}

func buildPrompt(req Request) string {
	return fmt.Sprintf(`Help draft grant content for a small nonprofit.

Request: %s

Context: %s

Provide clear, professional, funder-ready content. Be concise but thorough.`, req.Prompt, req.Context)
}
