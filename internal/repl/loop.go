package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lenai/internal/chat"
	"lenai/internal/contextmgr"
	"lenai/internal/i18n"
	"lenai/internal/orchestrator"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[90m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiRed    = "\x1b[31m"
)

// Loop 纯文本模式：编排器 + 行输入 + 输出
// Loop is the plain-terminal front end: an orchestrator, a line input and an output.
type Loop struct {
	orch      *orchestrator.Orchestrator
	in        LineInput
	out       io.Writer
	tokenizer *contextmgr.Tokenizer
	system    string
	tr        *i18n.I18n
	color     bool
}

// NewLoop builds a REPL loop. tokenizer may be nil.
func NewLoop(orch *orchestrator.Orchestrator, in LineInput, out io.Writer, tokenizer *contextmgr.Tokenizer, system string) *Loop {
	if tokenizer == nil {
		tokenizer = contextmgr.NewHeuristicTokenizer()
	}
	loop := &Loop{
		orch:      orch,
		in:        in,
		out:       out,
		tokenizer: tokenizer,
		system:    system,
		color:     useColor(),
	}
	if orch != nil {
		loop.tr = orch.I18n()
	}
	return loop
}

// Run 读取输入直到 /quit 或 EOF
// Run reads input until /quit or EOF. Ctrl+C clears the current line.
func (loop *Loop) Run(ctx context.Context) error {
	if loop.orch == nil {
		return fmt.Errorf("orchestrator is nil")
	}
	loop.orch.SetEvents(orchestrator.Events{
		OnImagePending: func(prompt string) {
			loop.printDim(loop.tr.T("image.pending", prompt))
		},
		OnIndicator: func(active bool) {
			if active {
				loop.printDim("… " + loop.tr.T("status.thinking"))
			}
		},
	})
	defer loop.orch.SetEvents(orchestrator.Events{})

	fmt.Fprintln(loop.out, loop.tr.T("repl.banner"))
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		loop.printStatus()
		line, err := loop.in.ReadLine(loop.prompt())
		switch {
		case err == nil:
		case isInterrupt(err):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(loop.out, loop.tr.T("repl.bye"))
			return nil
		default:
			return fmt.Errorf("read input: %w", err)
		}

		quit, err := loop.Handle(ctx, line)
		if err != nil {
			loop.printColored(ansiRed, "error: "+err.Error())
		}
		if quit {
			return nil
		}
	}
}

// Handle 处理一行输入；返回 true 表示退出
// Handle processes one input line. It reports whether the user asked to quit.
func (loop *Loop) Handle(ctx context.Context, line string) (bool, error) {
	text := strings.TrimSpace(line)
	if text == "" {
		return false, nil
	}
	if cmd, ok := orchestrator.ParseCommand(text); ok {
		return loop.handleCommand(cmd)
	}

	out, err := loop.orch.RunTurn(ctx, text)
	switch {
	case errors.Is(err, orchestrator.ErrNoCredentials):
		loop.printColored(ansiYellow, loop.tr.T("warn.no_credentials"))
		return false, nil
	case errors.Is(err, orchestrator.ErrTurnInFlight):
		loop.printColored(ansiYellow, loop.tr.T("warn.busy"))
		return false, nil
	case err != nil:
		return false, err
	}
	loop.printReply(out)
	return false, nil
}

func (loop *Loop) handleCommand(cmd orchestrator.Command) (bool, error) {
	if cmd.Destructive() {
		prompt, err := loop.orch.ConfirmPrompt(cmd)
		if err != nil {
			loop.printColored(ansiYellow, loop.tr.T("cmd.bad_index", cmd.Args))
			return false, nil
		}
		answer, err := loop.in.ReadLine(prompt + " ")
		if err != nil && !isInterrupt(err) && !errors.Is(err, io.EOF) {
			return false, err
		}
		if !isYes(answer) {
			fmt.Fprintln(loop.out, loop.tr.T("confirm.cancel"))
			return false, nil
		}
	}
	res, err := loop.orch.ExecuteCommand(cmd)
	if err != nil {
		return false, err
	}
	if res.Message != "" {
		fmt.Fprintln(loop.out, res.Message)
	}
	return res.Quit, nil
}

func (loop *Loop) printReply(out orchestrator.Outcome) {
	label := loop.tr.T("chat.bot") + ":"
	if loop.color {
		label = ansiCyan + label + ansiReset
	}
	fmt.Fprintln(loop.out, label)
	if alt, url, ok := chat.ParseImageRef(out.Reply); ok {
		fmt.Fprintf(loop.out, "%s %s\n%s\n", loop.tr.T("image.ready"), alt, url)
	} else {
		fmt.Fprintln(loop.out, out.Reply)
	}
	if out.Title != "" {
		loop.printDim("# " + out.Title)
	}
}

// printStatus 提示符第一行：token 估算 · 当前会话标题
// printStatus writes the first prompt line: token estimate and active title.
func (loop *Loop) printStatus() {
	_, conv := loop.orch.Repository().Active()
	tokens := loop.tokenizer.CountRequest(loop.system, conv)
	loop.printDim(fmt.Sprintf("%s · %s", loop.tr.T("status.tokens", tokens), conv.Title))
}

func (loop *Loop) prompt() string {
	if loop.color {
		return ansiGreen + "> " + ansiReset
	}
	return "> "
}

func (loop *Loop) printDim(s string) {
	loop.printColored(ansiDim, s)
}

func (loop *Loop) printColored(color, s string) {
	if loop.color {
		fmt.Fprintf(loop.out, "%s%s%s\n", color, s, ansiReset)
		return
	}
	fmt.Fprintln(loop.out, s)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}

func useColor() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("LENAI_NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
