// Package contextmgr estimates how large a conversation is in model tokens.
package contextmgr

import (
	"strings"
	"sync"

	"lenai/internal/chat"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer 精确 token 计数器，支持 tiktoken 和启发式回退
// Tokenizer provides precise token counting with tiktoken and heuristic fallback
type Tokenizer struct {
	encoder      *tiktoken.Tiktoken
	encodingName string
	fallback     bool // 是否使用启发式回退 / Whether using heuristic fallback
	mu           sync.RWMutex
}

// NewTokenizer 创建 tokenizer，如果 tiktoken 初始化失败则回退到启发式
// NewTokenizer creates a tokenizer, falls back to heuristic if tiktoken init fails
func NewTokenizer(encodingName string) *Tokenizer {
	t := &Tokenizer{encodingName: encodingName}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		// 离线环境可能没有 BPE 缓存，回退到启发式
		// Offline environments may lack BPE cache, fallback to heuristic
		t.fallback = true
		return t
	}
	t.encoder = enc
	return t
}

// NewHeuristicTokenizer never touches tiktoken. Used offline and in tests.
func NewHeuristicTokenizer() *Tokenizer {
	return &Tokenizer{encodingName: "heuristic", fallback: true}
}

// NewTokenizerForModel 根据模型名自动选择编码
// NewTokenizerForModel auto-selects encoding based on model name
func NewTokenizerForModel(model string) *Tokenizer {
	return NewTokenizer(modelToEncoding(model))
}

// Count 计算消息列表的总 token 数
// Count returns total token count for a message list
func (t *Tokenizer) Count(messages []chat.Message) int {
	total := 0
	for _, msg := range messages {
		total += t.countMessage(msg)
	}
	return total
}

// CountRequest counts the system directive plus the history sent on a turn.
func (t *Tokenizer) CountRequest(system string, conv chat.Conversation) int {
	total := t.Count(conv.Messages)
	if strings.TrimSpace(system) != "" {
		total += 4 + t.CountText(system)
	}
	return total
}

// CountText 计算单个文本的 token 数
// CountText counts tokens for a single text string
func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.fallback {
		return heuristicTokenCount(text)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.encoder.Encode(text, nil, nil))
}

// IsPrecise 返回是否使用精确计数
// IsPrecise returns whether precise counting is available
func (t *Tokenizer) IsPrecise() bool {
	return !t.fallback
}

func (t *Tokenizer) EncodingName() string {
	return t.encodingName
}

func (t *Tokenizer) countMessage(msg chat.Message) int {
	// 每条消息约 4 token 开销 / ~4 tokens of per-message overhead
	tokens := 4
	tokens += t.CountText(msg.Text)
	tokens += t.CountText(string(msg.Role))
	// 图片引用不会以图片形式发送，只算文本 / image refs travel as plain text
	return tokens
}

// heuristicTokenCount 启发式 token 估算
// heuristicTokenCount estimates ~4 chars per token for Latin text and
// ~1.5 tokens per CJK character.
func heuristicTokenCount(text string) int {
	if text == "" {
		return 0
	}
	cjkCount := 0
	otherCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		} else {
			otherCount++
		}
	}
	estimate := int(float64(cjkCount)*1.5 + float64(otherCount)*0.25)
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x3000 && r <= 0x303F) || // CJK Symbols
		(r >= 0xFF00 && r <= 0xFFEF) || // Fullwidth Forms
		(r >= 0xAC00 && r <= 0xD7AF) // Korean Hangul
}

// modelToEncoding 根据模型名推断编码
// modelToEncoding maps model name to encoding name
func modelToEncoding(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return "o200k_base"
	case strings.HasPrefix(m, "gpt-4o"), strings.HasPrefix(m, "chatgpt-4o"), strings.HasPrefix(m, "gpt-4.1"):
		return "o200k_base"
	default:
		// gpt-4 / gpt-3.5 / gemini / claude 都按 cl100k_base 估算
		return "cl100k_base"
	}
}
