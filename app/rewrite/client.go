// Package rewrite talks to an OpenAI-compatible chat-completions endpoint.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-curator/app/apperr"
)

const (
	DefaultEndpoint = "https://api.venice.ai/api/v1/chat/completions"
	DefaultModel    = "venice-uncensored"

	Temperature = 0.7
	MaxTokens   = 2000
	Timeout     = 60 * time.Second

	verifyContent = "Ping"
	verifyPrompt  = "Reply only with Pong"
	verifiedText  = "Verified"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message *string `json:"message"`
	} `json:"error"`
}

// Client holds no credentials; every call carries its own.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewClient(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		endpoint:   endpoint,
		model:      model,
		httpClient: &http.Client{Timeout: Timeout},
	}
}

// Rewrite sends content with systemPrompt and returns the first choice's
// text. A single attempt is made.
func (c *Client) Rewrite(ctx context.Context, content, systemPrompt, credential string) (string, error) {
	return c.complete(ctx, content, systemPrompt, credential)
}

// Verify checks that credential is accepted by the endpoint.
func (c *Client) Verify(ctx context.Context, credential string) (string, error) {
	if _, err := c.complete(ctx, verifyContent, verifyPrompt, credential); err != nil {
		return "", err
	}
	return verifiedText, nil
}

func (c *Client) complete(ctx context.Context, content, systemPrompt, credential string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", apperr.Transport(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Transport(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	slog.Debug("Rewrite request", "endpoint", c.endpoint, "model", c.model, "content_length", len(content))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Transport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Transport(err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Rewrite API error", "status", resp.StatusCode, "body_length", len(respBody))
		var failure errorResponse
		if json.Unmarshal(respBody, &failure) == nil && failure.Error != nil &&
			failure.Error.Message != nil && *failure.Error.Message != "" {
			return "", apperr.API(*failure.Error.Message)
		}
		return "", apperr.API(fmt.Sprintf("API Error (%d)", resp.StatusCode))
	}

	// only the choices matter on success
	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperr.Parse("Invalid API Response", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", apperr.Parse("Invalid API Response", nil)
	}

	text := *parsed.Choices[0].Message.Content
	slog.Debug("Rewrite response", "content_length", len(text))

	return text, nil
}
