package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"lenai/internal/chat"
	"lenai/internal/conversation"
	"lenai/internal/i18n"
	"lenai/internal/intent"
	"lenai/internal/provider"
	"lenai/internal/storage"
)

type fakeText struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	history []chat.Message
	creds   chat.Credentials
}

func (f *fakeText) GenerateText(_ context.Context, history []chat.Message, creds chat.Credentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.history = append([]chat.Message(nil), history...)
	f.creds = creds
	return f.reply, f.err
}

type fakeImages struct {
	res    provider.ImageResult
	prompt string
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string) provider.ImageResult {
	f.prompt = prompt
	return f.res
}

type harness struct {
	orch   *Orchestrator
	repo   *conversation.Repository
	state  *storage.State
	store  *storage.MemoryStore
	text   *fakeText
	images *fakeImages
}

func newHarness(t *testing.T, creds chat.Credentials) *harness {
	t.Helper()
	store := storage.NewMemoryStore()
	state := storage.NewState(store, nil)
	if creds.AnyConfigured() {
		state.SaveCredentials(creds)
	}
	repo := conversation.Load(state)
	text := &fakeText{reply: "Olá! [TITLE: Saudação]"}
	images := &fakeImages{res: provider.ImageResult{URL: "https://img.test/gato"}}
	orch := New(repo, text, images, intent.MustDefault(), state, Options{I18n: i18n.New("en")})
	return &harness{orch: orch, repo: repo, state: state, store: store, text: text, images: images}
}

func TestRunTurnTextFlowAppliesTitle(t *testing.T) {
	h := newHarness(t, chat.Credentials{Primary: "sk-test"})

	var states []State
	var indicator []bool
	h.orch.SetEvents(Events{
		OnState:     func(s State) { states = append(states, s) },
		OnIndicator: func(a bool) { indicator = append(indicator, a) },
	})

	out, err := h.orch.RunTurn(context.Background(), "  oi, tudo bem?  ")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if out.Kind != OutcomeText || out.Reply != "Olá!" || out.Title != "Saudação" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.TurnID == "" {
		t.Fatalf("expected turn id")
	}

	_, conv := h.repo.Active()
	if conv.Title != "Saudação" {
		t.Fatalf("title = %q", conv.Title)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("messages = %+v", conv.Messages)
	}
	if conv.Messages[0].Role != chat.RoleUser || conv.Messages[0].Text != "oi, tudo bem?" {
		t.Fatalf("user message = %+v", conv.Messages[0])
	}
	if conv.Messages[1].Role != chat.RoleBot || conv.Messages[1].Text != "Olá!" {
		t.Fatalf("bot message = %+v", conv.Messages[1])
	}
	if len(h.text.history) != 1 || h.text.history[0].Text != "oi, tudo bem?" {
		t.Fatalf("generator saw %+v", h.text.history)
	}

	want := []State{StateAwaitingClassification, StateTextFlow, StateIdle}
	if len(states) != len(want) {
		t.Fatalf("states = %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
	if len(indicator) != 2 || !indicator[0] || indicator[1] {
		t.Fatalf("indicator = %v", indicator)
	}
	if h.orch.Busy() || h.orch.State() != StateIdle {
		t.Fatalf("orchestrator not idle after turn")
	}

	persisted := h.state.LoadHistory()
	if len(persisted) != 1 || len(persisted[0].Messages) != 2 {
		t.Fatalf("persisted history = %+v", persisted)
	}
}

func TestRunTurnWithoutTitleKeepsDefault(t *testing.T) {
	h := newHarness(t, chat.Credentials{Primary: "sk-test"})
	h.text.reply = "Só texto."

	out, err := h.orch.RunTurn(context.Background(), "explique go")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if out.Title != "" {
		t.Fatalf("unexpected title %q", out.Title)
	}
	_, conv := h.repo.Active()
	if conv.Title != storage.DefaultTitle {
		t.Fatalf("title = %q", conv.Title)
	}
}

func TestRunTurnTextFailureRecordsBotMessage(t *testing.T) {
	h := newHarness(t, chat.Credentials{Secondary: "g-key"})
	h.text.err = errors.New("quota exceeded")

	out, err := h.orch.RunTurn(context.Background(), "olá")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if out.Kind != OutcomeTextFailed || out.Err == nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	_, conv := h.repo.Active()
	last := conv.Messages[len(conv.Messages)-1]
	if last.Role != chat.RoleBot || !strings.Contains(last.Text, "quota exceeded") {
		t.Fatalf("last message = %+v", last)
	}
	if conv.Title != storage.DefaultTitle {
		t.Fatalf("title changed on failure: %q", conv.Title)
	}
}

func TestRunTurnImageFlow(t *testing.T) {
	h := newHarness(t, chat.Credentials{Primary: "sk-test"})

	var pending string
	h.orch.SetEvents(Events{OnImagePending: func(p string) { pending = p }})

	out, err := h.orch.RunTurn(context.Background(), "Desenhe um gato astronauta!")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if out.Kind != OutcomeImage {
		t.Fatalf("kind = %v", out.Kind)
	}
	if pending != "Desenhe um gato astronauta!" || h.images.prompt != pending {
		t.Fatalf("pending = %q, prompt = %q", pending, h.images.prompt)
	}
	if h.text.calls != 0 {
		t.Fatalf("text generator called %d times", h.text.calls)
	}
	_, conv := h.repo.Active()
	if conv.Title != "🖼️ Desenhe um gato astronauta" {
		t.Fatalf("title = %q", conv.Title)
	}
	alt, url, ok := chat.ParseImageRef(conv.Messages[1].Text)
	if !ok || url != "https://img.test/gato" || alt != "Desenhe um gato astronauta!" {
		t.Fatalf("image ref = %q %q %v", alt, url, ok)
	}
}

func TestRunTurnImageFailure(t *testing.T) {
	h := newHarness(t, chat.Credentials{Primary: "sk-test"})
	h.images.res = provider.ImageResult{Err: errors.New("status 500")}

	out, err := h.orch.RunTurn(context.Background(), "draw a cat")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if out.Kind != OutcomeImageFailed || out.Err == nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	_, conv := h.repo.Active()
	if conv.Title != storage.DefaultTitle {
		t.Fatalf("title = %q", conv.Title)
	}
	if got := conv.Messages[1].Text; got != i18n.New("en").T("image.failed") {
		t.Fatalf("bot message = %q", got)
	}
}

func TestRunTurnRejectsEmptyInput(t *testing.T) {
	h := newHarness(t, chat.Credentials{Primary: "sk-test"})
	if _, err := h.orch.RunTurn(context.Background(), "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v", err)
	}
	_, conv := h.repo.Active()
	if len(conv.Messages) != 0 {
		t.Fatalf("messages appended: %+v", conv.Messages)
	}
}

func TestRunTurnRequiresCredentials(t *testing.T) {
	h := newHarness(t, chat.Credentials{})
	if _, err := h.orch.RunTurn(context.Background(), "oi"); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("err = %v", err)
	}
	_, conv := h.repo.Active()
	if len(conv.Messages) != 0 {
		t.Fatalf("messages appended: %+v", conv.Messages)
	}
}

func TestEnvCredentialsFillGapsWithoutPersisting(t *testing.T) {
	store := storage.NewMemoryStore()
	state := storage.NewState(store, nil)
	text := &fakeText{reply: "ok"}
	orch := New(conversation.Load(state), text, nil, nil, state, Options{
		EnvCredentials: chat.Credentials{Tertiary: "env-claude"},
	})

	if _, err := orch.RunTurn(context.Background(), "oi"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if text.creds.Tertiary != "env-claude" {
		t.Fatalf("creds = %+v", text.creds)
	}
	if stored := state.LoadCredentials(); stored.AnyConfigured() {
		t.Fatalf("env key persisted: %+v", stored)
	}
}

type blockingText struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingText) GenerateText(context.Context, []chat.Message, chat.Credentials) (string, error) {
	close(b.started)
	<-b.release
	return "done", nil
}

func TestRunTurnRejectsConcurrentTurn(t *testing.T) {
	state := storage.NewState(storage.NewMemoryStore(), nil)
	state.SaveCredentials(chat.Credentials{Primary: "sk"})
	text := &blockingText{started: make(chan struct{}), release: make(chan struct{})}
	orch := New(conversation.Load(state), text, nil, nil, state, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := orch.RunTurn(context.Background(), "primeira")
		done <- err
	}()
	<-text.started

	if !orch.Busy() {
		t.Fatalf("expected busy")
	}
	if _, err := orch.RunTurn(context.Background(), "segunda"); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("err = %v", err)
	}
	close(text.release)
	if err := <-done; err != nil {
		t.Fatalf("first turn: %v", err)
	}
	_, conv := orch.Repository().Active()
	if len(conv.Messages) != 2 {
		t.Fatalf("messages = %+v", conv.Messages)
	}
}

func TestThemeAndCredentialsPersist(t *testing.T) {
	h := newHarness(t, chat.Credentials{})
	if h.orch.Theme() != chat.ThemeDark {
		t.Fatalf("default theme = %v", h.orch.Theme())
	}
	if got := h.orch.ToggleTheme(); got != chat.ThemeLight {
		t.Fatalf("toggle = %v", got)
	}
	if h.state.LoadTheme() != chat.ThemeLight {
		t.Fatalf("theme not persisted")
	}

	h.orch.SetCredential(chat.SlotSecondary, "  g-key  ")
	if got := h.state.LoadCredentials().Secondary; got != "g-key" {
		t.Fatalf("stored secondary = %q", got)
	}
}

func TestImageTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Desenhe um gato!", "🖼️ Desenhe um gato"},
		{"foto de praia, sol", "🖼️ foto de praia sol"},
		{"draw a very long and detailed landscape of mountains", "🖼️ draw a very long and detailed landscape"},
	}
	for _, tc := range cases {
		if got := ImageTitle(tc.in); got != tc.want {
			t.Fatalf("ImageTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
