package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"grantpilot/internal/apperr"
	"grantpilot/pkg/circuitbreaker"
)

type stubGenerator struct {
	text   string
	err    error
	calls  int
	model  string
	config *genai.GenerateContentConfig
}

func (s *stubGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.model = model
	s.config = config
	if s.err != nil {
		return nil, s.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(s.text, genai.RoleModel),
		}},
	}, nil
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"{\"a\":1}```":            `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, StripFences(in), in)
	}
}

func TestParseJSONObject(t *testing.T) {
	out, ok := ParseJSONObject("```json\n{\"grant_info\":{\"award_amount\":100}}\n```")
	require.True(t, ok)
	assert.Contains(t, out, "grant_info")

	out, ok = ParseJSONObject("Sorry, I cannot help with that.")
	assert.False(t, ok)
	assert.Empty(t, out)

	out, ok = ParseJSONObject("[1,2,3]")
	assert.False(t, ok)
	assert.NotNil(t, out)
}

func TestClient_Complete(t *testing.T) {
	gen := &stubGenerator{text: "Our mission is simple."}
	c := NewWithGenerator(gen, Config{}, zap.NewNop())

	text, err := c.Complete(context.Background(), "draft mission", "")
	require.NoError(t, err)
	assert.Equal(t, "Our mission is simple.", text)
	assert.Equal(t, DefaultModel, gen.model)
	assert.Empty(t, gen.config.ResponseMIMEType)
	require.NotNil(t, gen.config.SystemInstruction)
	assert.Equal(t, DefaultSystemMessage, gen.config.SystemInstruction.Parts[0].Text)
}

func TestClient_CompleteJSONRecoversFromGarbage(t *testing.T) {
	gen := &stubGenerator{text: "not json at all"}
	c := NewWithGenerator(gen, Config{Model: "m"}, zap.NewNop())

	out, err := c.CompleteJSON(context.Background(), "extract", "sys")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
}

func TestClient_ErrorsAreExternal(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	c := NewWithGenerator(gen, Config{}, zap.NewNop())

	_, err := c.Complete(context.Background(), "x", "")
	var ext *apperr.ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	gen := &stubGenerator{err: errors.New("unavailable")}
	c := NewWithGenerator(gen, Config{Breaker: circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             60e9,
		HalfOpenMaxRequests: 1,
	}}, zap.NewNop())

	ctx := context.Background()
	_, _ = c.Complete(ctx, "a", "")
	_, _ = c.Complete(ctx, "b", "")
	_, err := c.Complete(ctx, "c", "")

	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 2, gen.calls)
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := New(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.CompleteJSON(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
