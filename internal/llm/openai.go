// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/qa-synth/internal/httputil"
	"github.com/pdiddy/qa-synth/pkg/types"
)

// OpenAI calls an OpenAI-compatible chat-completions endpoint
// (DeepSeek, OpenAI, local gateways).
type OpenAI struct {
	BaseURL   string
	APIKey    string
	Model     string
	UserAgent string
	Client    *http.Client

	// MaxRetries bounds retries of rate-limit and gateway statuses
	// (default 3 when <= 0).
	MaxRetries int
}

const defaultOpenAIModel = "deepseek-chat"

// NewOpenAI builds an OpenAI-compatible completer from cfg. The model
// defaults to deepseek-chat.
func NewOpenAI(cfg types.AIConfig) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:     cfg.APIKey,
		Model:      model,
		UserAgent:  cfg.UserAgent,
		Client:     &http.Client{Timeout: cfg.Timeout},
		MaxRetries: cfg.MaxRetries,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPError is a non-success response from the service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("chat completions returned %d: %s", e.StatusCode, e.Body)
}

// Complete sends one chat-completions request and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	var msgs []chatMessage
	if p.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: p.User})

	body, err := json.Marshal(chatRequest{
		Model:       o.Model,
		Temperature: p.Temperature,
		Messages:    msgs,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, retriesOrDefault(o.MaxRetries))
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
