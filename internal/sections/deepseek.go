// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paperminer/internal/httputil"
	"github.com/pdiddy/paperminer/pkg/types"
)

// DeepseekClient implements Completer against the Deepseek
// chat-completions endpoint (OpenAI-compatible request shape). JSON output
// mode is enabled so replies parse reliably; temperature is pinned low for
// reproducibility.
type DeepseekClient struct {
	cfg    types.SectionsConfig
	client *http.Client
}

// NewDeepseekClient builds a client from configuration. The HTTP timeout
// bounds the single blocking call the engine is allowed.
func NewDeepseekClient(cfg types.SectionsConfig) *DeepseekClient {
	cfg = cfg.WithDefaults()
	return &DeepseekClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

// chatResponse is the subset of the reply the client consumes.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one prompt and returns the model's text reply. The
// transport layer retries once on transient failure; every other failure
// surfaces as an error for the repairer to degrade on.
func (c *DeepseekClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:      c.cfg.MaxTokens,
		Temperature:    0.1,
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 1)
	if err != nil {
		return "", fmt.Errorf("calling completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion endpoint returned %s: %s",
			resp.Status, strings.TrimSpace(string(detail)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("completion response contained no content")
	}

	return cr.Choices[0].Message.Content, nil
}
