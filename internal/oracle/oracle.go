// Package oracle wraps the hosted Gemini model as a text and JSON completion
// service.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"grantpilot/internal/apperr"
	"grantpilot/pkg/circuitbreaker"
	"grantpilot/pkg/metrics"
	"grantpilot/pkg/otel"
)

const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultSystemMessage = "You are a grant management assistant for small nonprofits."
	serviceName          = "gemini"
)

var ErrNotConfigured = errors.New("oracle api key not configured")

// Oracle is the completion surface used by the extraction and drafting
// services.
type Oracle interface {
	// Complete returns the model's raw text.
	Complete(ctx context.Context, prompt, system string) (string, error)
	// CompleteJSON requests JSON output and decodes it. Output that does not
	// parse as a JSON object yields an empty map and no error.
	CompleteJSON(ctx context.Context, prompt, system string) (map[string]any, error)
}

// Generator is the subset of *genai.Models the client calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

type Client struct {
	gen     Generator
	model   string
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// New connects to the Gemini API. Without an API key it returns a client
// whose calls fail with ErrNotConfigured.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		logger.Warn("Gemini API key not set; AI endpoints will fail")
		return NewWithGenerator(nil, cfg, logger), nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return NewWithGenerator(client.Models, cfg, logger), nil
}

func NewWithGenerator(gen Generator, cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker = circuitbreaker.DefaultConfig()
	}
	breaker := circuitbreaker.New(cfg.Breaker).OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("Oracle circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	return &Client{
		gen:     gen,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *Client) Complete(ctx context.Context, prompt, system string) (string, error) {
	return c.generate(ctx, "text", prompt, system, "")
}

func (c *Client) CompleteJSON(ctx context.Context, prompt, system string) (map[string]any, error) {
	text, err := c.generate(ctx, "json", prompt, system, "application/json")
	if err != nil {
		return nil, err
	}
	out, ok := ParseJSONObject(text)
	if !ok {
		c.logger.Warn("Oracle returned unparseable JSON", zap.Int("length", len(text)))
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, mode, prompt, system, mime string) (string, error) {
	if c.gen == nil {
		return "", apperr.External(serviceName, ErrNotConfigured)
	}
	if system == "" {
		system = DefaultSystemMessage
	}

	ctx, span := otel.StartSpan(ctx, "oracle."+mode)
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_chars", len(prompt)),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if mime != "" {
		cfg.ResponseMIMEType = mime
	}

	start := time.Now()
	var text string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.gen.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		text = resp.Text()
		return nil
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordOracleCall(mode, status, time.Since(start))
	otel.RecordError(span, err)

	if err != nil {
		c.logger.Error("Oracle call failed",
			zap.String("mode", mode),
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", apperr.External(serviceName, err)
	}

	c.logger.Debug("Oracle call succeeded",
		zap.String("mode", mode),
		zap.Int("response_chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// StripFences removes a leading ```json or ``` fence and a trailing ```.
func StripFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// ParseJSONObject decodes fenced or bare JSON. It returns an empty map and
// false when s is not a JSON object.
func ParseJSONObject(s string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(StripFences(s)), &out); err != nil || out == nil {
		return map[string]any{}, false
	}
	return out, true
}
