package orchestrator

import (
	"log/slog"
	"strings"
	"sync"

	"lenai/internal/chat"
	"lenai/internal/conversation"
	"lenai/internal/i18n"
	"lenai/internal/logging"
)

// Options 可选依赖
// Options carries the optional collaborators of an Orchestrator.
type Options struct {
	Events Events
	I18n   *i18n.I18n
	Logger *slog.Logger
	// EnvCredentials fill slots that have no stored key. They are never persisted.
	EnvCredentials chat.Credentials
}

// Orchestrator 每轮对话的顶层控制流，并持有凭据与主题
// Orchestrator runs user turns against the repository and owns credentials and theme.
type Orchestrator struct {
	repo       *conversation.Repository
	text       TextGenerator
	images     ImageGenerator
	classifier IntentClassifier
	prefs      Preferences
	events     Events
	tr         *i18n.I18n
	logger     *slog.Logger

	mu       sync.Mutex
	busy     bool
	state    State
	stored   chat.Credentials
	envCreds chat.Credentials
	theme    chat.Theme
}

func New(repo *conversation.Repository, text TextGenerator, images ImageGenerator, classifier IntentClassifier, prefs Preferences, opts Options) *Orchestrator {
	tr := opts.I18n
	if tr == nil {
		tr = i18n.New("")
	}
	o := &Orchestrator{
		repo:       repo,
		text:       text,
		images:     images,
		classifier: classifier,
		prefs:      prefs,
		events:     opts.Events,
		tr:         tr,
		logger:     logging.OrDiscard(opts.Logger),
		envCreds:   opts.EnvCredentials,
		theme:      chat.ThemeDark,
	}
	if prefs != nil {
		o.stored = prefs.LoadCredentials()
		o.theme = prefs.LoadTheme()
	}
	return o
}

// SetEvents replaces the UI callbacks. Call before the first turn.
func (o *Orchestrator) SetEvents(ev Events) {
	o.mu.Lock()
	o.events = ev
	o.mu.Unlock()
}

func (o *Orchestrator) Repository() *conversation.Repository { return o.repo }

func (o *Orchestrator) I18n() *i18n.I18n { return o.tr }

// Busy reports whether a turn is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Credentials returns the effective keys: stored ones, with env keys filling gaps.
func (o *Orchestrator) Credentials() chat.Credentials {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.effectiveLocked()
}

// StoredCredentials returns only the persisted keys.
func (o *Orchestrator) StoredCredentials() chat.Credentials {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stored
}

// SetCredential stores a trimmed key for slot and persists it. An empty token clears the slot.
func (o *Orchestrator) SetCredential(slot chat.Slot, token string) {
	o.mu.Lock()
	o.stored.Set(slot, token)
	creds := o.stored
	o.mu.Unlock()
	if o.prefs != nil {
		o.prefs.SaveCredentials(creds)
	}
	o.logger.Info("credential updated", "slot", slot, "configured", strings.TrimSpace(token) != "")
}

func (o *Orchestrator) Theme() chat.Theme {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.theme
}

// ToggleTheme flips and persists the theme, returning the new value.
func (o *Orchestrator) ToggleTheme() chat.Theme {
	o.mu.Lock()
	o.theme = o.theme.Toggle()
	theme := o.theme
	o.mu.Unlock()
	if o.prefs != nil {
		o.prefs.SaveTheme(theme)
	}
	return theme
}

func (o *Orchestrator) effectiveLocked() chat.Credentials {
	out := o.stored
	for _, slot := range chat.Slots {
		if out.Get(slot) == "" {
			out.Set(slot, o.envCreds.Get(slot))
		}
	}
	return out
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	cb := o.events.OnState
	o.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (o *Orchestrator) indicator(active bool) {
	if cb := o.eventsSnapshot().OnIndicator; cb != nil {
		cb(active)
	}
}

func (o *Orchestrator) updated() {
	if cb := o.eventsSnapshot().OnUpdate; cb != nil {
		cb()
	}
}

func (o *Orchestrator) eventsSnapshot() Events {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events
}
