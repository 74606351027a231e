package chat

import (
	"regexp"
	"strings"
)

// Role 消息角色
// Role identifies who authored a message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message 对话中的一条消息，写入后不可修改
// Message is one entry of a conversation; immutable once appended.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation 带标题的有序消息序列
// Conversation is a titled, ordered sequence of messages.
type Conversation struct {
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Clone returns a deep copy so callers can't mutate repository state.
func (c Conversation) Clone() Conversation {
	out := Conversation{Title: c.Title}
	if c.Messages != nil {
		out.Messages = append([]Message(nil), c.Messages...)
	} else {
		out.Messages = []Message{}
	}
	return out
}

// NewUserMessage builds a user-authored message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewBotMessage builds a bot-authored message.
func NewBotMessage(text string) Message {
	return Message{Role: RoleBot, Text: text}
}

// imageRefPattern matches the markdown image convention ![alt](url).
var imageRefPattern = regexp.MustCompile(`!\[((?:\\.|[^\]\\])*)\]\(([^)\s]+)\)`)

var altEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, "\n", " ", "\r", " ")

var altUnescaper = strings.NewReplacer(`\\`, `\`, `\[`, `[`, `\]`, `]`)

var urlEscaper = strings.NewReplacer(" ", "%20", ")", "%29", "(", "%28", "\n", "", "\r", "")

// ImageMarkdown 生成图片引用文本，alt 中的用户文本会被转义
// ImageMarkdown encodes an image reference; user-supplied alt text is escaped so it
// can never close the reference early or inject markup.
func ImageMarkdown(alt, url string) string {
	return "![" + altEscaper.Replace(alt) + "](" + urlEscaper.Replace(strings.TrimSpace(url)) + ")"
}

// ParseImageRef 检测消息文本中的图片引用
// ParseImageRef detects an image reference using the same convention as ImageMarkdown.
func ParseImageRef(text string) (alt, url string, ok bool) {
	m := imageRefPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return altUnescaper.Replace(m[1]), m[2], true
}
