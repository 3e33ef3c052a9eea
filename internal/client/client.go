// Package client is a typed HTTP client for the GrantPilot API.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"grantpilot/internal/model"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Accept", "application/json")

	return &Client{http: rc, logger: logger}
}

func (c *Client) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var out model.Dashboard
	if _, err := c.do(ctx, c.http.R().SetResult(&out), resty.MethodGet, "/api/dashboard"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export returns the raw export body: JSON, or an XLSX workbook when format
// is "xlsx".
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	req := c.http.R()
	if format != "" && format != "json" {
		req.SetQueryParam("format", format)
	}
	resp, err := c.do(ctx, req, resty.MethodGet, "/api/export")
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Import posts a JSON bundle previously produced by Export.
func (c *Client) Import(ctx context.Context, bundle []byte) (map[string]any, error) {
	var out map[string]any
	req := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(bundle).
		SetResult(&out)
	if _, err := c.do(ctx, req, resty.MethodPost, "/api/import"); err != nil {
		return nil, err
	}
	return out, nil
}

// SeedResult mirrors the seed-demo response.
type SeedResult struct {
	Seeded  bool           `json:"seeded"`
	Message string         `json:"message"`
	Summary map[string]int `json:"summary"`
}

func (c *Client) Seed(ctx context.Context) (*SeedResult, error) {
	var out SeedResult
	if _, err := c.do(ctx, c.http.R().SetResult(&out), resty.MethodPost, "/api/seed-demo"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Calendar returns the JSON event list, or the iCalendar feed when ics is set.
func (c *Client) Calendar(ctx context.Context, ics bool) ([]byte, error) {
	req := c.http.R()
	if ics {
		req.SetQueryParam("format", "ics")
	}
	resp, err := c.do(ctx, req, resty.MethodGet, "/api/calendar/export")
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) do(ctx context.Context, req *resty.Request, method, path string) (*resty.Response, error) {
	var apiErr errorBody
	resp, err := req.SetContext(ctx).SetError(&apiErr).Execute(method, path)
	if err != nil {
		c.logger.Error("API call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		c.logger.Debug("API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("error", msg),
		)
		return nil, &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return resp, nil
}
