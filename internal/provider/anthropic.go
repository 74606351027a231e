package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lenai/internal/chat"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-3-5-haiku-latest"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 2048
)

// AnthropicConfig configures AnthropicProvider.
type AnthropicConfig struct {
	BaseURL   string
	Model     string
	TimeoutMS int
}

// AnthropicProvider 通过 Messages API (net/http) 调用 Claude
// AnthropicProvider calls the Claude Messages API directly over HTTP.
type AnthropicProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	return &AnthropicProvider{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *AnthropicProvider) Slot() chat.Slot { return chat.SlotTertiary }

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) Chat(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	payload := anthropicRequest{
		Model:     p.model,
		MaxTokens: anthropicMaxTokens,
		System:    strings.TrimSpace(req.System),
	}
	for _, t := range mergeTurns(req.Messages) {
		role := "user"
		if t.bot {
			role = "assistant"
		}
		payload.Messages = append(payload.Messages, anthropicMessage{Role: role, Content: t.text})
	}
	if len(payload.Messages) == 0 {
		return "", nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send anthropic request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Provider: p.Name(), StatusCode: resp.StatusCode, Message: messageFromBody(data)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	var text strings.Builder
	for _, c := range parsed.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}
