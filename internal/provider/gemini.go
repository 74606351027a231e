package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lenai/internal/chat"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig configures GeminiProvider. Endpoint is only set in tests or for proxies.
// TimeoutMS bounds one Chat call; zero means no deadline.
type GeminiConfig struct {
	Model       string
	Endpoint    string
	Temperature float32
	TimeoutMS   int
}

// GeminiProvider 使用 generative-ai-go 的 Provider 实现
// GeminiProvider implements Provider with the Gemini SDK.
type GeminiProvider struct {
	cfg GeminiConfig
}

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultOpenAITemperature
	}
	return &GeminiProvider{cfg: cfg}
}

func (p *GeminiProvider) Slot() chat.Slot { return chat.SlotSecondary }

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Chat(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	history, last := geminiContents(req.Messages)
	if last == nil {
		return "", nil
	}
	if p.cfg.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if p.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.cfg.Model)
	model.SetTemperature(p.cfg.Temperature)
	if strings.TrimSpace(req.System) != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", p.wrapError(err)
	}
	return extractText(resp), nil
}

func (p *GeminiProvider) wrapError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		msg := strings.TrimSpace(gErr.Message)
		if msg == "" {
			msg = messageFromBody([]byte(gErr.Body))
		}
		return &Error{Provider: p.Name(), StatusCode: gErr.Code, Message: msg, Err: err}
	}
	return fmt.Errorf("%s chat: %w", p.Name(), err)
}

// geminiContents 转换为 Gemini 历史 + 最后一条用户消息，bot 映射为 model
// geminiContents splits the history into prior turns and the final user turn.
// last is nil when the history doesn't end with a user turn.
func geminiContents(messages []chat.Message) (history []*genai.Content, last *genai.Content) {
	turns := mergeTurns(messages)
	if len(turns) == 0 || turns[len(turns)-1].bot {
		return nil, nil
	}
	for _, t := range turns {
		role := "user"
		if t.bot {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.text)}})
	}
	return history[:len(history)-1], history[len(history)-1]
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		// 只取第一个候选 / first candidate only
		break
	}
	return text.String()
}
