package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"builder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// AI client — pass-through to an external code-generation service
// ─────────────────────────────────────────────────────────────

// Client talks to the configured code-generation service. Responses
// are treated as opaque text apart from markdown fence stripping.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateRequest describes what to generate code for.
type GenerateRequest struct {
	Prompt    string                 `json:"prompt"`
	Framework string                 `json:"framework,omitempty"`
	Elements  []domain.ElementRecord `json:"elements,omitempty"`
}

// GenerateCode asks the service to produce code for the request.
func (c *Client) GenerateCode(ctx context.Context, req GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}
	return c.post(ctx, "/generate", req)
}

// FixCode asks the service to repair code given the error it produced.
func (c *Client) FixCode(ctx context.Context, code, errMsg string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("code is required")
	}
	return c.post(ctx, "/fix", map[string]string{
		"code":  code,
		"error": errMsg,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ai service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ai service: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Code != "" {
		return StripCodeFences(parsed.Code), nil
	}
	// Services that answer with bare text instead of a JSON envelope.
	return StripCodeFences(string(data)), nil
}

// StripCodeFences removes a wrapping markdown code fence, including an
// optional language tag on the opening fence. Text without a fence is
// returned unchanged.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	// Drop the opening fence line (``` or ```lang).
	lines = lines[1:]
	// Drop the closing fence if present.
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
