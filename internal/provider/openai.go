package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lenai/internal/chat"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOpenAITemperature = 0.5
)

// OpenAIConfig SDK provider 配置
// OpenAIConfig is the SDK provider configuration
type OpenAIConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
	TimeoutMS   int
}

// OpenAIProvider 使用 go-openai SDK 的 Provider 实现
// OpenAIProvider implements Provider using the go-openai SDK
type OpenAIProvider struct {
	httpClient *http.Client
	cfg        OpenAIConfig
}

// NewOpenAIProvider 创建基于 SDK 的 provider
// NewOpenAIProvider creates an SDK-based provider
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultOpenAITemperature
	}
	httpClient := &http.Client{}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &OpenAIProvider{httpClient: httpClient, cfg: cfg}
}

func (p *OpenAIProvider) Slot() chat.Slot { return chat.SlotPrimary }

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Chat(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(p.cfg.BaseURL, "/")
	config.HTTPClient = p.httpClient
	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    convertMessages(req.System, req.Messages),
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return "", p.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: p.Name(), StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Provider: p.Name(), StatusCode: reqErr.HTTPStatusCode, Message: messageFromBody(reqErr.Body), Err: err}
	}
	return fmt.Errorf("%s chat: %w", p.Name(), err)
}

// convertMessages 将内部消息转换为 SDK 格式，bot 映射为 assistant
// convertMessages maps the system directive and history to SDK messages.
func convertMessages(system string, messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if strings.TrimSpace(system) != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == chat.RoleBot {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	return out
}
