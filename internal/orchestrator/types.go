package orchestrator

import (
	"context"
	"errors"

	"lenai/internal/chat"
	"lenai/internal/provider"
)

var (
	// ErrEmptyInput is returned for blank input. Nothing is appended.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoCredentials is returned when no provider has a key. It is a user warning.
	ErrNoCredentials = errors.New("no provider credential configured")
	// ErrTurnInFlight is returned when a turn starts while another is running.
	ErrTurnInFlight = errors.New("a turn is already in progress")
)

// State 单轮对话状态机
// State is the per-turn state machine position.
type State int

const (
	StateIdle State = iota
	StateAwaitingClassification
	StateImageFlow
	StateTextFlow
)

func (s State) String() string {
	switch s {
	case StateAwaitingClassification:
		return "awaiting_classification"
	case StateImageFlow:
		return "image_flow"
	case StateTextFlow:
		return "text_flow"
	default:
		return "idle"
	}
}

// OutcomeKind says how a turn ended.
type OutcomeKind int

const (
	OutcomeText OutcomeKind = iota
	OutcomeTextFailed
	OutcomeImage
	OutcomeImageFailed
)

// Outcome 一轮对话的结果；失败也会作为 bot 消息写入会话
// Outcome describes a finished turn. Failures are still recorded as bot messages.
type Outcome struct {
	TurnID string
	Kind   OutcomeKind
	Index  int
	Reply  string
	Title  string
	Err    error
}

// TextGenerator is satisfied by *provider.Gateway.
type TextGenerator interface {
	GenerateText(ctx context.Context, history []chat.Message, creds chat.Credentials) (string, error)
}

// ImageGenerator is satisfied by *provider.ImagePipeline.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) provider.ImageResult
}

// IntentClassifier is satisfied by *intent.Classifier.
type IntentClassifier interface {
	IsImageRequest(text string) bool
}

// Preferences persists credentials and theme. storage.State satisfies it.
type Preferences interface {
	LoadCredentials() chat.Credentials
	SaveCredentials(chat.Credentials)
	LoadTheme() chat.Theme
	SaveTheme(chat.Theme)
}

// Events 前端回调；在执行轮次的 goroutine 上调用，可以为 nil
// Events are UI callbacks. They run on the turn's goroutine; any may be nil.
type Events struct {
	OnState        func(State)
	OnIndicator    func(active bool)
	OnImagePending func(prompt string)
	OnUpdate       func()
}
