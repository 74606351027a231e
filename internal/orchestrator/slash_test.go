package orchestrator

import (
	"context"
	"strings"
	"testing"

	"lenai/internal/chat"
	"lenai/internal/storage"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		name string
		args string
	}{
		{"hello", false, "", ""},
		{"/", true, "help", ""},
		{"  /NEW ", true, "new", ""},
		{"/rename  Minha conversa ", true, "rename", "Minha conversa"},
		{"/key openai sk-1", true, "key", "openai sk-1"},
	}
	for _, tc := range cases {
		cmd, ok := ParseCommand(tc.in)
		if ok != tc.ok || cmd.Name != tc.name || cmd.Args != tc.args {
			t.Fatalf("ParseCommand(%q) = %+v, %v", tc.in, cmd, ok)
		}
	}
	if !(Command{Name: "delete"}).Destructive() || (Command{Name: "new"}).Destructive() {
		t.Fatalf("Destructive mismatch")
	}
}

func run(t *testing.T, o *Orchestrator, line string) CommandResult {
	t.Helper()
	cmd, ok := ParseCommand(line)
	if !ok {
		t.Fatalf("%q is not a command", line)
	}
	res, err := o.ExecuteCommand(cmd)
	if err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	return res
}

func TestConversationCommands(t *testing.T) {
	h := newHarness(t, chat.Credentials{})
	updates := 0
	h.orch.SetEvents(Events{OnUpdate: func() { updates++ }})

	run(t, h.orch, "/rename Primeira")
	run(t, h.orch, "/new")
	run(t, h.orch, "/rename Segunda")
	if h.repo.Len() != 2 {
		t.Fatalf("len = %d", h.repo.Len())
	}

	listing := run(t, h.orch, "/list").Message
	lines := strings.Split(listing, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "*") || !strings.Contains(lines[0], "Segunda") {
		t.Fatalf("listing = %q", listing)
	}

	res := run(t, h.orch, "/open 1")
	if !strings.Contains(res.Message, "Primeira") {
		t.Fatalf("open message = %q", res.Message)
	}
	idx, conv := h.repo.Active()
	if idx != 1 || conv.Title != "Primeira" {
		t.Fatalf("active = %d %q", idx, conv.Title)
	}

	if res := run(t, h.orch, "/open 9"); !strings.Contains(res.Message, "9") {
		t.Fatalf("bad index message = %q", res.Message)
	}

	prompt, err := h.orch.ConfirmPrompt(Command{Name: "delete"})
	if err != nil || !strings.Contains(prompt, "Primeira") {
		t.Fatalf("confirm = %q, %v", prompt, err)
	}
	run(t, h.orch, "/delete")
	_, conv = h.repo.Active()
	if h.repo.Len() != 1 || conv.Title != "Segunda" {
		t.Fatalf("after delete: len=%d active=%q", h.repo.Len(), conv.Title)
	}

	run(t, h.orch, "/clear")
	_, conv = h.repo.Active()
	if h.repo.Len() != 1 || conv.Title != storage.DefaultTitle {
		t.Fatalf("after clear: len=%d active=%q", h.repo.Len(), conv.Title)
	}
	if updates == 0 {
		t.Fatalf("expected update events")
	}
}

func TestKeyCommands(t *testing.T) {
	h := newHarness(t, chat.Credentials{})

	if res := run(t, h.orch, "/key openai"); !strings.Contains(res.Message, "Usage") {
		t.Fatalf("usage = %q", res.Message)
	}
	run(t, h.orch, "/key gemini g-secret-1234")
	if got := h.state.LoadCredentials().Secondary; got != "g-secret-1234" {
		t.Fatalf("secondary = %q", got)
	}
	keys := run(t, h.orch, "/keys").Message
	if strings.Contains(keys, "g-secret-1234") || !strings.Contains(keys, "1234") {
		t.Fatalf("keys listing leaked or missing key: %q", keys)
	}
	run(t, h.orch, "/key gemini -")
	if h.state.LoadCredentials().AnyConfigured() {
		t.Fatalf("key not cleared")
	}
}

func TestMiscCommands(t *testing.T) {
	h := newHarness(t, chat.Credentials{})
	if res := run(t, h.orch, "/theme"); h.orch.Theme() != chat.ThemeLight || !strings.Contains(res.Message, "light") {
		t.Fatalf("theme = %v, %q", h.orch.Theme(), res.Message)
	}
	if !run(t, h.orch, "/quit").Quit {
		t.Fatalf("quit not flagged")
	}
	if res := run(t, h.orch, "/bogus"); !strings.Contains(res.Message, "/bogus") {
		t.Fatalf("unknown = %q", res.Message)
	}
	if res := run(t, h.orch, "/rename   "); !strings.Contains(res.Message, "Usage") {
		t.Fatalf("rename usage = %q", res.Message)
	}
}

type openDuringTurn struct {
	orch *Orchestrator
	res  CommandResult
}

func (f *openDuringTurn) GenerateText(context.Context, []chat.Message, chat.Credentials) (string, error) {
	res, err := f.orch.ExecuteCommand(Command{Name: "open", Args: "1"})
	if err != nil {
		return "", err
	}
	f.res = res
	return "resposta para B [TITLE: Titulo B]", nil
}

func TestCommandsWaitForTurnInFlight(t *testing.T) {
	h := newHarness(t, chat.Credentials{Primary: "sk"})
	run(t, h.orch, "/rename A")
	run(t, h.orch, "/new")
	run(t, h.orch, "/rename B")

	text := &openDuringTurn{orch: h.orch}
	h.orch.text = text
	if _, err := h.orch.RunTurn(context.Background(), "pergunta para B"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if text.res.Message != h.orch.tr.T("warn.busy") {
		t.Fatalf("open during turn = %+v", text.res)
	}

	convs := h.repo.Snapshot()
	if len(convs) != 2 {
		t.Fatalf("convs = %+v", convs)
	}
	if convs[0].Title != "A" || len(convs[0].Messages) != 0 {
		t.Fatalf("conversation A touched: %+v", convs[0])
	}
	if convs[1].Title != "Titulo B" || len(convs[1].Messages) != 2 {
		t.Fatalf("conversation B = %+v", convs[1])
	}
	if convs[1].Messages[1].Text != "resposta para B" {
		t.Fatalf("reply = %q", convs[1].Messages[1].Text)
	}

	for _, name := range []string{"open", "delete", "clear"} {
		if !(Command{Name: name}).MovesConversations() {
			t.Fatalf("%s should wait for the turn", name)
		}
	}
	if (Command{Name: "rename"}).MovesConversations() {
		t.Fatalf("rename does not move conversations")
	}
}
