package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lenai/internal/chat"
	"lenai/internal/contextmgr"
	"lenai/internal/conversation"
	"lenai/internal/i18n"
	"lenai/internal/orchestrator"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Focus 当前获得键盘输入的区域
// Focus is the area receiving key presses.
type Focus int

const (
	FocusInput Focus = iota
	FocusList
)

// --- Tea Messages ---

// TurnDoneMsg 回合完成
// TurnDoneMsg indicates a turn is done
type TurnDoneMsg struct {
	Outcome orchestrator.Outcome
	Err     error
}

// StateMsg 状态机变化
// StateMsg carries a turn state change from the orchestrator goroutine.
type StateMsg struct{ State orchestrator.State }

// ImagePendingMsg 图片生成中
// ImagePendingMsg is sent while the image flow waits for the picture.
type ImagePendingMsg struct{ Prompt string }

// RefreshMsg 会话数据已变更，需要重绘
// RefreshMsg asks the app to re-read the repository.
type RefreshMsg struct{}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int

	chatView viewport.Model
	input    textarea.Model
	focus    Focus

	// 侧边栏 / Sidebar
	summaries []conversation.Summary
	cursor    int

	// 状态 / State
	busy         bool
	state        orchestrator.State
	pendingImage string
	notice       string
	lastError    string
	tokens       int
	confirm      *orchestrator.Command
	confirmText  string

	// 依赖 / Dependencies
	orch      *orchestrator.Orchestrator
	tokenizer *contextmgr.Tokenizer
	system    string
	ctx       context.Context

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(ctx context.Context, orch *orchestrator.Orchestrator, tokenizer *contextmgr.Tokenizer, system string) App {
	if ctx == nil {
		ctx = context.Background()
	}
	if tokenizer == nil {
		tokenizer = contextmgr.NewHeuristicTokenizer()
	}
	locale := orch.I18n()

	ta := textarea.New()
	ta.Placeholder = locale.T("input.placeholder")
	ta.CharLimit = 8192
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	a := App{
		chatView:  viewport.New(80, 20),
		input:     ta,
		focus:     FocusInput,
		orch:      orch,
		tokenizer: tokenizer,
		system:    system,
		ctx:       ctx,
		theme:     ThemeFor(orch.Theme()),
		keys:      DefaultKeyMap(),
		locale:    locale,
	}
	a.refresh()
	return a
}

func (a App) Init() tea.Cmd {
	return textarea.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case StateMsg:
		a.state = msg.State
		return a, nil

	case ImagePendingMsg:
		a.pendingImage = msg.Prompt
		a.refreshTranscript()
		return a, nil

	case RefreshMsg:
		a.refresh()
		return a, nil

	case TurnDoneMsg:
		a.busy = false
		a.pendingImage = ""
		a.state = orchestrator.StateIdle
		switch {
		case msg.Err != nil:
			a.lastError = a.warning(msg.Err)
		case msg.Outcome.Err != nil:
			a.lastError = msg.Outcome.Err.Error()
		default:
			a.lastError = ""
		}
		a.refresh()
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.chatView, cmd = a.chatView.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}
	if a.confirm != nil {
		return a.handleConfirm(msg)
	}

	switch {
	case key.Matches(msg, a.keys.NewChat):
		return a.runCommand(orchestrator.Command{Name: "new"})
	case key.Matches(msg, a.keys.ToggleTheme):
		return a.runCommand(orchestrator.Command{Name: "theme"})
	case key.Matches(msg, a.keys.PageUp):
		a.chatView.HalfPageUp()
		return a, nil
	case key.Matches(msg, a.keys.PageDown):
		a.chatView.HalfPageDown()
		return a, nil
	case key.Matches(msg, a.keys.FocusList):
		a.toggleFocus()
		return a, nil
	}

	if a.focus == FocusList {
		return a.handleListKey(msg)
	}

	if key.Matches(msg, a.keys.Submit) {
		return a.submit()
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ListUp):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.ListDown):
		if a.cursor < len(a.summaries)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Submit):
		if s, ok := a.selected(); ok {
			m, cmd := a.runCommand(orchestrator.Command{Name: "open", Args: fmt.Sprint(s.Index + 1)})
			app := m.(App)
			app.toggleFocus()
			return app, cmd
		}
	case key.Matches(msg, a.keys.DeleteChat):
		if s, ok := a.selected(); ok {
			return a.runCommand(orchestrator.Command{Name: "delete", Args: fmt.Sprint(s.Index + 1)})
		}
	case key.Matches(msg, a.keys.Cancel):
		a.toggleFocus()
	}
	return a, nil
}

func (a App) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		cmd := *a.confirm
		a.confirm, a.confirmText = nil, ""
		return a.execute(cmd)
	case key.Matches(msg, a.keys.Deny):
		a.confirm, a.confirmText = nil, ""
		a.notice = a.locale.T("confirm.cancel")
	}
	return a, nil
}

// submit 处理输入框回车：命令或对话
// submit handles enter in the input box: either a command or a chat turn.
func (a App) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return a, nil
	}
	if cmd, ok := orchestrator.ParseCommand(text); ok {
		a.input.Reset()
		return a.runCommand(cmd)
	}
	if a.busy || a.orch.Busy() {
		a.notice = a.locale.T("warn.busy")
		return a, nil
	}
	if !a.orch.Credentials().AnyConfigured() {
		a.notice = a.locale.T("warn.no_credentials")
		return a, nil
	}

	a.input.Reset()
	a.busy = true
	a.notice = ""
	a.lastError = ""
	return a, a.runTurn(text)
}

func (a App) runTurn(text string) tea.Cmd {
	orch, ctx := a.orch, a.ctx
	return func() tea.Msg {
		out, err := orch.RunTurn(ctx, text)
		return TurnDoneMsg{Outcome: out, Err: err}
	}
}

// runCommand 破坏性命令先进入确认状态
// runCommand asks for confirmation before destructive commands. Commands that
// move conversations wait until the turn in flight has finished.
func (a App) runCommand(cmd orchestrator.Command) (tea.Model, tea.Cmd) {
	if cmd.MovesConversations() && (a.busy || a.orch.Busy()) {
		a.notice = a.locale.T("warn.busy")
		return a, nil
	}
	if cmd.Destructive() {
		prompt, err := a.orch.ConfirmPrompt(cmd)
		if err != nil {
			a.notice = a.locale.T("cmd.bad_index", cmd.Args)
			return a, nil
		}
		a.confirm = &cmd
		a.confirmText = prompt
		return a, nil
	}
	return a.execute(cmd)
}

func (a App) execute(cmd orchestrator.Command) (tea.Model, tea.Cmd) {
	res, err := a.orch.ExecuteCommand(cmd)
	if err != nil {
		a.lastError = err.Error()
		return a, nil
	}
	a.notice = res.Message
	if res.Quit {
		return a, tea.Quit
	}
	a.theme = ThemeFor(a.orch.Theme())
	a.refresh()
	return a, nil
}

func (a App) warning(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrNoCredentials):
		return a.locale.T("warn.no_credentials")
	case errors.Is(err, orchestrator.ErrTurnInFlight):
		return a.locale.T("warn.busy")
	}
	return err.Error()
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	sidebarWidth := a.sidebarWidth()
	mainWidth := a.width - sidebarWidth

	inputBox := a.renderInput(mainWidth)
	statusBar := a.renderStatusBar(a.width)
	noticeLine := a.renderNotice(mainWidth)

	main := lipgloss.JoinVertical(lipgloss.Left, a.chatView.View(), noticeLine, inputBox)
	if sidebarWidth > 0 {
		sidebar := a.renderSidebar(sidebarWidth, a.height-1)
		main = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

// --- 内部方法 / Internal methods ---

func (a *App) sidebarWidth() int {
	if a.width < 60 {
		return 0
	}
	w := a.width * 25 / 100
	if w < 20 {
		w = 20
	}
	if w > 36 {
		w = 36
	}
	return w
}

func (a *App) relayout() {
	mainWidth := a.width - a.sidebarWidth()
	// input(3) + border(1) + notice(1) + status(1)
	panelHeight := a.height - 6
	if panelHeight < 3 {
		panelHeight = 3
	}
	a.chatView = viewport.New(mainWidth, panelHeight)
	a.input.SetWidth(mainWidth - 2)
	a.refreshTranscript()
}

func (a *App) toggleFocus() {
	if a.focus == FocusInput {
		a.focus = FocusList
		a.input.Blur()
		for i, s := range a.summaries {
			if s.Active {
				a.cursor = i
			}
		}
		return
	}
	a.focus = FocusInput
	a.input.Focus()
}

func (a *App) selected() (conversation.Summary, bool) {
	if a.cursor < 0 || a.cursor >= len(a.summaries) {
		return conversation.Summary{}, false
	}
	return a.summaries[a.cursor], true
}

// refresh 重新读取会话列表、当前会话与 token 估算
// refresh re-reads the conversation list, the active transcript and the token estimate.
func (a *App) refresh() {
	summaries := make([]conversation.Summary, 0, len(a.summaries))
	for s := range a.orch.Repository().ListSummaries() {
		summaries = append(summaries, s)
	}
	a.summaries = summaries
	if a.cursor >= len(a.summaries) {
		a.cursor = len(a.summaries) - 1
	}
	_, conv := a.orch.Repository().Active()
	a.tokens = a.tokenizer.CountRequest(a.system, conv)
	a.refreshTranscript()
}

func (a *App) refreshTranscript() {
	_, conv := a.orch.Repository().Active()
	width := a.chatView.Width - 2
	content := RenderTranscript(conv, a.theme, a.locale, width)
	if a.pendingImage != "" {
		content += "\n\n" + a.theme.MutedStyle.Render(a.locale.T("image.pending", a.pendingImage))
	}
	// 多行命令输出（/help、/list、/keys）显示在对话下方，不写入会话
	if strings.Contains(a.notice, "\n") {
		content += "\n\n" + a.theme.NoticeStyle.Render(a.notice)
	}
	a.chatView.SetContent(content)
	a.chatView.GotoBottom()
}

// --- 渲染方法 / Render methods ---

func (a App) renderInput(width int) string {
	return a.theme.InputStyle.Width(width).Render(a.input.View())
}

func (a App) renderNotice(width int) string {
	var line string
	switch {
	case a.confirm != nil:
		line = a.theme.DangerStyle.Render(a.confirmText)
	case a.lastError != "":
		line = a.theme.ErrorStyle.Render(a.lastError)
	case a.notice != "":
		line = a.theme.NoticeStyle.Render(firstLine(a.notice))
	default:
		line = a.theme.MutedStyle.Render(a.locale.T("help.shortcuts"))
	}
	return lipgloss.NewStyle().Width(width).MaxHeight(1).Render(line)
}

func (a App) renderSidebar(width, height int) string {
	parts := []string{a.theme.TitleStyle.Render(" " + a.locale.T("sidebar.conversations")), ""}
	for i, s := range a.summaries {
		title := TruncateTitle(s.Title, width-4)
		style := a.theme.ItemStyle
		marker := "  "
		if s.Active {
			style = a.theme.ActiveItemStyle
			marker = "▸ "
		}
		if a.focus == FocusList && i == a.cursor {
			style = a.theme.SelectedItemStyle
		}
		parts = append(parts, style.Render(marker+title))
	}

	parts = append(parts, "", a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.keys")))
	creds := a.orch.Credentials()
	for _, slot := range chat.Slots {
		mark := "✗"
		if creds.Get(slot) != "" {
			mark = "✓"
		}
		parts = append(parts, a.theme.ItemStyle.Render(fmt.Sprintf("  %s %s", mark, orchestrator.SlotLabel(slot))))
	}

	return a.theme.SidebarStyle.
		Width(width - 1).
		Height(height).
		Render(strings.Join(parts, "\n"))
}

func (a App) renderStatusBar(width int) string {
	status := a.locale.T("status.ready")
	if a.busy {
		status = "● " + a.locale.T("status.thinking")
	}

	left := fmt.Sprintf(" LenAI · %s", status)
	right := fmt.Sprintf("%s · %s · %s  ",
		a.locale.T("status.tokens", a.tokens),
		a.locale.T("status.theme", a.theme.Name),
		a.locale.Locale())

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// Run 启动 Bubble Tea TUI，并把编排器事件转成 tea 消息
// Run starts the Bubble Tea TUI and forwards orchestrator events as tea messages.
func Run(ctx context.Context, orch *orchestrator.Orchestrator, tokenizer *contextmgr.Tokenizer, system string) error {
	app := NewApp(ctx, orch, tokenizer, system)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	orch.SetEvents(orchestrator.Events{
		OnState:        func(s orchestrator.State) { p.Send(StateMsg{State: s}) },
		OnImagePending: func(prompt string) { p.Send(ImagePendingMsg{Prompt: prompt}) },
		OnUpdate:       func() { p.Send(RefreshMsg{}) },
	})
	defer orch.SetEvents(orchestrator.Events{})
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
