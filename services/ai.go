package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aurora/config"
)

// ErrAIUnavailable marks any failure to obtain a completion: the assistant
// is not configured, the provider is unreachable, it answered with an
// error status, or it timed out. Callers fall back to local heuristics and
// never surface this to the end user as a server error.
var ErrAIUnavailable = errors.New("ai assistant unavailable")

// HTTPDoer lets tests substitute the transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AIClient talks to an OpenAI-compatible chat completions endpoint.
type AIClient struct {
	client  HTTPDoer
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
}

var (
	defaultAI     *AIClient
	defaultAIOnce sync.Once
)

// DefaultAI returns the process-wide client, built lazily from the loaded
// configuration.
func DefaultAI() *AIClient {
	defaultAIOnce.Do(func() {
		defaultAI = NewAIClient()
	})
	return defaultAI
}

// NewAIClient builds a client from the loaded configuration.
func NewAIClient() *AIClient {
	cfg := config.GetConfig()
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	return NewAIClientWith(nil, cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, timeout)
}

// NewAIClientWith builds a client with explicit settings. A nil doer gets a
// default http.Client.
func NewAIClientWith(client HTTPDoer, baseURL, apiKey, model string, timeout time.Duration) *AIClient {
	if client == nil {
		client = &http.Client{Timeout: timeout + 2*time.Second}
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &AIClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
}

// Enabled reports whether the assistant is configured at all.
func (c *AIClient) Enabled() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the assistant's
// reply. The call is bounded by the configured timeout regardless of the
// caller's context.
func (c *AIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: not configured", ErrAIUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrAIUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrAIUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}

// extractJSON pulls the first JSON object out of a completion that may be
// wrapped in markdown fences or prose.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
