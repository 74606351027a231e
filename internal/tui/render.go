package tui

import (
	"strings"

	"lenai/internal/chat"
	"lenai/internal/i18n"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int, style string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.Trim(rendered, "\n")
}

// RenderMessage 渲染一条消息：用户消息原样显示，bot 消息走 markdown，图片显示为链接
// RenderMessage renders one transcript entry. User text is shown verbatim, bot
// text as markdown, and image replies as a caption plus the URL.
func RenderMessage(msg chat.Message, theme Theme, tr *i18n.I18n, width int) string {
	if msg.Role == chat.RoleUser {
		label := theme.UserLabelStyle.Render(tr.T("chat.you"))
		return label + "\n" + wrapPlain(msg.Text, width)
	}

	label := theme.BotLabelStyle.Render(tr.T("chat.bot"))
	if alt, url, ok := chat.ParseImageRef(msg.Text); ok {
		return label + "\n" + tr.T("image.ready") + " " + alt + "\n" + theme.LinkStyle.Render(url)
	}
	return label + "\n" + RenderMarkdown(msg.Text, width, theme.MarkdownStyle)
}

// RenderTranscript 渲染整段会话；空会话显示欢迎语
// RenderTranscript renders a whole conversation. An empty one shows the welcome line.
func RenderTranscript(conv chat.Conversation, theme Theme, tr *i18n.I18n, width int) string {
	if len(conv.Messages) == 0 {
		return theme.MutedStyle.Render(tr.T("chat.welcome"))
	}
	parts := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		parts = append(parts, RenderMessage(msg, theme, tr, width))
	}
	return strings.Join(parts, "\n\n")
}

// TruncateTitle 按显示宽度截断侧边栏标题（CJK 与 emoji 占两列）
// TruncateTitle cuts a sidebar title to a display width; wide runes count as two cells.
func TruncateTitle(title string, width int) string {
	if width <= 1 {
		return ""
	}
	title = strings.ReplaceAll(title, "\n", " ")
	return runewidth.Truncate(title, width, "…")
}

func wrapPlain(text string, width int) string {
	if width <= 0 {
		return text
	}
	return runewidth.Wrap(text, width)
}
