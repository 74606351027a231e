package tui

import (
	"lenai/internal/chat"

	"github.com/charmbracelet/lipgloss"
)

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	Name chat.Theme
	// glamour 标准样式名 / glamour standard style name
	MarkdownStyle string

	// 基础色 / Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Danger    lipgloss.Color
	Warning   lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	TextDim   lipgloss.Color
	BgBar     lipgloss.Color
	Border    lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle        lipgloss.Style
	UserLabelStyle    lipgloss.Style
	BotLabelStyle     lipgloss.Style
	ItemStyle         lipgloss.Style
	SelectedItemStyle lipgloss.Style
	ActiveItemStyle   lipgloss.Style
	StatusBarStyle    lipgloss.Style
	SidebarStyle      lipgloss.Style
	InputStyle        lipgloss.Style
	NoticeStyle       lipgloss.Style
	ErrorStyle        lipgloss.Style
	MutedStyle        lipgloss.Style
	DangerStyle       lipgloss.Style
	LinkStyle         lipgloss.Style
}

// ThemeFor 根据持久化偏好返回主题
// ThemeFor maps the persisted preference to a palette.
func ThemeFor(t chat.Theme) Theme {
	if t == chat.ThemeLight {
		return LightTheme()
	}
	return DarkTheme()
}

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	return buildTheme(Theme{
		Name:          chat.ThemeDark,
		MarkdownStyle: "dark",
		Primary:       lipgloss.Color("#7C3AED"),
		Secondary:     lipgloss.Color("#06B6D4"),
		Danger:        lipgloss.Color("#EF4444"),
		Warning:       lipgloss.Color("#F59E0B"),
		Muted:         lipgloss.Color("#6B7280"),
		Text:          lipgloss.Color("#E5E7EB"),
		TextDim:       lipgloss.Color("#9CA3AF"),
		BgBar:         lipgloss.Color("#111827"),
		Border:        lipgloss.Color("#374151"),
	})
}

// LightTheme 亮色主题
// LightTheme is the light palette.
func LightTheme() Theme {
	return buildTheme(Theme{
		Name:          chat.ThemeLight,
		MarkdownStyle: "light",
		Primary:       lipgloss.Color("#6D28D9"),
		Secondary:     lipgloss.Color("#0E7490"),
		Danger:        lipgloss.Color("#B91C1C"),
		Warning:       lipgloss.Color("#B45309"),
		Muted:         lipgloss.Color("#6B7280"),
		Text:          lipgloss.Color("#111827"),
		TextDim:       lipgloss.Color("#4B5563"),
		BgBar:         lipgloss.Color("#E5E7EB"),
		Border:        lipgloss.Color("#D1D5DB"),
	})
}

func buildTheme(t Theme) Theme {
	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.UserLabelStyle = lipgloss.NewStyle().
		Foreground(t.Secondary).
		Bold(true)

	t.BotLabelStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.ItemStyle = lipgloss.NewStyle().
		Foreground(t.TextDim)

	t.SelectedItemStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Border)

	t.ActiveItemStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.BgBar)

	t.SidebarStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.InputStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.NoticeStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.DangerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Danger).
		Bold(true).
		Padding(0, 1)

	t.LinkStyle = lipgloss.NewStyle().
		Foreground(t.Secondary).
		Underline(true)

	return t
}
