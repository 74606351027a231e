package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"lenai/internal/chat"
	"lenai/internal/conversation"
)

// Command 解析后的 "/" 命令
// Command is a parsed "/" command line.
type Command struct {
	Name string
	Args string
}

// Destructive reports whether the command needs user confirmation first.
func (c Command) Destructive() bool {
	return c.Name == "delete" || c.Name == "clear"
}

// MovesConversations reports whether the command can reorder or drop conversations.
// A turn in flight holds on to its conversation index, so these wait for it.
func (c Command) MovesConversations() bool {
	switch c.Name {
	case "open", "delete", "del", "rm", "clear":
		return true
	}
	return false
}

// CommandResult is what the UI shows after a command.
type CommandResult struct {
	Message string
	Quit    bool
}

// ParseCommand 解析 "/" 命令：返回命令名（小写）与剩余参数
// ParseCommand parses a "/" command line. ok is false for ordinary chat input.
func ParseCommand(input string) (Command, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "/"))
	if rest == "" {
		return Command{Name: "help"}, true
	}
	parts := strings.SplitN(rest, " ", 2)
	cmd := Command{Name: strings.ToLower(strings.TrimSpace(parts[0]))}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd, true
}

// ConfirmPrompt returns the question to ask before running a destructive command.
func (o *Orchestrator) ConfirmPrompt(cmd Command) (string, error) {
	switch cmd.Name {
	case "delete":
		idx, err := o.targetIndex(cmd.Args)
		if err != nil {
			return "", err
		}
		conv, _ := o.repo.Get(idx)
		return o.tr.T("confirm.delete", conversation.DisplayTitle(idx, conv.Title)), nil
	case "clear":
		return o.tr.T("confirm.clear"), nil
	}
	return "", nil
}

// ExecuteCommand 处理内建命令；破坏性命令需调用方事先确认
// ExecuteCommand runs a built-in command. Destructive commands run unconditionally;
// the caller confirms first.
func (o *Orchestrator) ExecuteCommand(cmd Command) (CommandResult, error) {
	if cmd.MovesConversations() && o.Busy() {
		return CommandResult{Message: o.tr.T("warn.busy")}, nil
	}
	switch cmd.Name {
	case "help", "?":
		return CommandResult{Message: o.tr.T("cmd.help")}, nil
	case "quit", "exit", "q":
		return CommandResult{Quit: true, Message: o.tr.T("repl.bye")}, nil
	case "new":
		o.repo.CreateNew()
		return o.done(CommandResult{Message: o.tr.T("cmd.created")}), nil
	case "list", "ls":
		return CommandResult{Message: o.listing()}, nil
	case "open":
		if cmd.Args == "" {
			return CommandResult{Message: o.tr.T("cmd.usage.open")}, nil
		}
		idx, err := o.parseIndex(cmd.Args)
		if err != nil {
			return CommandResult{Message: o.tr.T("cmd.bad_index", cmd.Args)}, nil
		}
		newIdx, err := o.repo.Activate(idx)
		if err != nil {
			return CommandResult{Message: o.tr.T("cmd.bad_index", cmd.Args)}, nil
		}
		conv, _ := o.repo.Get(newIdx)
		return o.done(CommandResult{Message: o.tr.T("cmd.opened", conversation.DisplayTitle(newIdx, conv.Title))}), nil
	case "rename":
		if strings.TrimSpace(cmd.Args) == "" {
			return CommandResult{Message: o.tr.T("cmd.usage.rename")}, nil
		}
		idx, _ := o.repo.Active()
		if err := o.repo.Rename(idx, cmd.Args); err != nil {
			return CommandResult{}, err
		}
		return o.done(CommandResult{Message: o.tr.T("cmd.renamed", strings.TrimSpace(cmd.Args))}), nil
	case "delete", "del", "rm":
		idx, err := o.targetIndex(cmd.Args)
		if err != nil {
			return CommandResult{Message: o.tr.T("cmd.bad_index", cmd.Args)}, nil
		}
		if err := o.repo.Delete(idx); err != nil {
			return CommandResult{}, err
		}
		return o.done(CommandResult{Message: o.tr.T("cmd.deleted")}), nil
	case "clear":
		o.repo.ClearAll()
		return o.done(CommandResult{Message: o.tr.T("cmd.cleared")}), nil
	case "keys":
		return CommandResult{Message: o.keysListing()}, nil
	case "key":
		return o.runKey(cmd.Args), nil
	case "theme":
		theme := o.ToggleTheme()
		return o.done(CommandResult{Message: o.tr.T("cmd.theme_changed", string(theme))}), nil
	}
	return CommandResult{Message: o.tr.T("cmd.unknown", cmd.Name)}, nil
}

func (o *Orchestrator) runKey(args string) CommandResult {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return CommandResult{Message: o.tr.T("cmd.usage.key")}
	}
	slot, err := chat.ParseSlot(fields[0])
	if err != nil {
		return CommandResult{Message: o.tr.T("cmd.usage.key")}
	}
	token := fields[1]
	if token == "-" {
		token = ""
	}
	o.SetCredential(slot, token)
	if token == "" {
		return CommandResult{Message: o.tr.T("cmd.key_cleared", SlotLabel(slot))}
	}
	return CommandResult{Message: o.tr.T("cmd.key_saved", SlotLabel(slot))}
}

// SlotLabel names the provider bound to slot by default.
func SlotLabel(slot chat.Slot) string {
	switch slot {
	case chat.SlotPrimary:
		return "OpenAI"
	case chat.SlotSecondary:
		return "Gemini"
	case chat.SlotTertiary:
		return "Claude"
	}
	return string(slot)
}

func (o *Orchestrator) keysListing() string {
	creds := o.Credentials()
	var b strings.Builder
	b.WriteString(o.tr.T("cmd.keys_header"))
	for _, slot := range chat.Slots {
		fmt.Fprintf(&b, "\n  %-9s %-7s %s", slot, SlotLabel(slot), chat.Masked(creds.Get(slot)))
	}
	return b.String()
}

func (o *Orchestrator) listing() string {
	var lines []string
	for s := range o.repo.ListSummaries() {
		marker := " "
		if s.Active {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %2d  %s", marker, s.Index+1, s.Title))
	}
	return strings.Join(lines, "\n")
}

// targetIndex resolves an optional 1-based argument, defaulting to the active conversation.
func (o *Orchestrator) targetIndex(args string) (int, error) {
	if strings.TrimSpace(args) == "" {
		idx, _ := o.repo.Active()
		return idx, nil
	}
	return o.parseIndex(args)
}

// parseIndex converts the 1-based number shown in listings to a repository index.
func (o *Orchestrator) parseIndex(args string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return 0, fmt.Errorf("parse index %q: %w", args, err)
	}
	if n < 1 || n > o.repo.Len() {
		return 0, fmt.Errorf("index %d: %w", n, conversation.ErrIndexOutOfRange)
	}
	return n - 1, nil
}

func (o *Orchestrator) done(res CommandResult) CommandResult {
	o.updated()
	return res
}
