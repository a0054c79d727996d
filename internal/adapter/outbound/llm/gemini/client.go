// Package gemini implements the reply generator against the Gemini REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/uxwatch/uxwatch/internal/adapter/outbound/llm/prompt"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// Config holds configuration for the Gemini client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
}

// Client implements outbound.ReplyGenerator using the Gemini generateContent API.
type Client struct {
	config     Config
	httpClient *http.Client
	builder    *prompt.Builder
}

var _ outbound.ReplyGenerator = (*Client)(nil)

// NewClient creates a new Gemini Client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	builder, err := prompt.NewBuilder()
	if err != nil {
		return nil, fmt.Errorf("creating prompt builder: %w", err)
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		builder:    builder,
	}, nil
}

// --- Gemini API types ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// --- ReplyGenerator implementation ---

// Generate builds a drafting prompt from the posting text and calls Gemini.
func (c *Client) Generate(ctx context.Context, postText string) (string, error) {
	promptText, err := c.builder.BuildDraftPrompt(prompt.DraftInput{PostText: postText})
	if err != nil {
		return "", fmt.Errorf("building draft prompt: %w", err)
	}

	raw, err := c.doGenerate(ctx, promptText)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(raw)
	if reply == "" {
		return "", fmt.Errorf("gemini returned empty draft")
	}
	return reply, nil
}

// HealthCheck performs GET on the model metadata endpoint to verify the API
// key and model are valid.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1beta/models/%s", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating health check request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini health check: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// --- Internal helpers ---

// doGenerate sends a generateContent request with retry logic for transient errors.
func (c *Client) doGenerate(ctx context.Context, promptText string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: promptText}}}},
	}
	if c.config.Temperature > 0 {
		body.GenerationConfig = &generationConfig{Temperature: c.config.Temperature}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		raw, err := c.postGenerate(ctx, encoded)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		// Only retry on transient/server errors, not on context cancellation.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (c *Client) postGenerate(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("gemini server error %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
