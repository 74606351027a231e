package provider

import (
	"context"
	"strings"

	"lenai/internal/chat"
)

// ChatRequest 封装一次文本生成请求
// ChatRequest is one text generation call: a system directive plus the full history.
type ChatRequest struct {
	System   string
	Messages []chat.Message
}

// Provider 文本提供方接口；凭据随每次调用传入
// Provider is a text generation backend. The credential is passed per call so a
// key edited in the UI takes effect on the next turn.
type Provider interface {
	// Slot 返回该提供方在回退链中的位置
	// Slot returns the provider's position in the fallback chain
	Slot() chat.Slot

	// Name 返回 provider 名称
	// Name returns the provider name
	Name() string

	// Chat 返回生成文本；空字符串表示没有内容
	// Chat returns the generated text; an empty string means no content
	Chat(ctx context.Context, apiKey string, req ChatRequest) (string, error)
}

// turn is a run of same-role messages merged into one.
type turn struct {
	bot  bool
	text string
}

// mergeTurns folds consecutive same-role messages together and drops a leading
// bot run. Gemini and Anthropic both reject histories that don't alternate.
func mergeTurns(messages []chat.Message) []turn {
	var out []turn
	for _, m := range messages {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		bot := m.Role == chat.RoleBot
		if len(out) == 0 && bot {
			continue
		}
		if n := len(out); n > 0 && out[n-1].bot == bot {
			out[n-1].text += "\n\n" + text
			continue
		}
		out = append(out, turn{bot: bot, text: text})
	}
	return out
}
