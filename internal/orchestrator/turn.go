package orchestrator

import (
	"context"
	"strings"

	"lenai/internal/chat"
	"lenai/internal/title"

	"github.com/google/uuid"
)

const imageTitleRunes = 40

var imageTitleStripper = strings.NewReplacer("!", "", "?", "", ".", "", ",", "")

// RunTurn 执行一轮对话：追加用户消息 → 分类 → 图片或文本流程 → 追加回复
// RunTurn appends the user's message to the active conversation, routes it to the
// image or text flow, and appends the bot reply. Provider and image failures are
// recorded as bot messages and reported in Outcome, not returned as errors.
// The returned error is one of ErrEmptyInput, ErrNoCredentials or ErrTurnInFlight.
func (o *Orchestrator) RunTurn(ctx context.Context, input string) (Outcome, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Outcome{}, ErrEmptyInput
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return Outcome{}, ErrTurnInFlight
	}
	creds := o.effectiveLocked()
	if !creds.AnyConfigured() {
		o.mu.Unlock()
		return Outcome{}, ErrNoCredentials
	}
	o.busy = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	out := Outcome{TurnID: uuid.NewString()}
	logger := o.logger.With("turn", out.TurnID)

	idx, _ := o.repo.Active()
	idx = o.repo.AppendMessage(idx, chat.NewUserMessage(text))
	out.Index = idx
	o.updated()

	o.indicator(true)
	o.setState(StateAwaitingClassification)

	if o.classifier != nil && o.images != nil && o.classifier.IsImageRequest(text) {
		o.setState(StateImageFlow)
		logger.Info("image flow")
		o.runImageFlow(ctx, text, &out)
	} else {
		o.setState(StateTextFlow)
		logger.Info("text flow")
		o.runTextFlow(ctx, creds, &out)
	}
	if out.Err != nil {
		logger.Warn("turn failed", "kind", out.Kind, "err", out.Err)
	}

	o.indicator(false)
	o.setState(StateIdle)
	o.updated()
	return out, nil
}

func (o *Orchestrator) runImageFlow(ctx context.Context, prompt string, out *Outcome) {
	if cb := o.eventsSnapshot().OnImagePending; cb != nil {
		cb(prompt)
	}
	res := o.images.GenerateImage(ctx, prompt)
	if !res.Ready() {
		out.Kind = OutcomeImageFailed
		out.Err = res.Err
		out.Reply = o.tr.T("image.failed")
		o.repo.AppendMessage(out.Index, chat.NewBotMessage(out.Reply))
		return
	}
	out.Kind = OutcomeImage
	out.Reply = chat.ImageMarkdown(prompt, res.URL)
	out.Title = ImageTitle(prompt)
	out.Index = o.repo.AppendMessage(out.Index, chat.NewBotMessage(out.Reply))
	o.repo.SetTitle(out.Index, out.Title)
}

func (o *Orchestrator) runTextFlow(ctx context.Context, creds chat.Credentials, out *Outcome) {
	conv, ok := o.repo.Get(out.Index)
	if !ok {
		conv = chat.Conversation{}
	}
	reply, err := o.text.GenerateText(ctx, conv.Messages, creds)
	if err != nil {
		out.Kind = OutcomeTextFailed
		out.Err = err
		out.Reply = o.tr.T("error.reply", err.Error())
		o.repo.AppendMessage(out.Index, chat.NewBotMessage(out.Reply))
		return
	}

	res := title.Extract(reply)
	out.Kind = OutcomeText
	out.Reply = res.Text
	if res.Found {
		out.Title = res.Title
		o.repo.SetTitle(out.Index, res.Title)
	}
	o.repo.AppendMessage(out.Index, chat.NewBotMessage(out.Reply))
}

// ImageTitle 图片会话的自动标题
// ImageTitle is "🖼️ " plus the first 40 runes of the prompt without ! ? . ,
func ImageTitle(prompt string) string {
	r := []rune(prompt)
	if len(r) > imageTitleRunes {
		r = r[:imageTitleRunes]
	}
	return "🖼️ " + strings.TrimSpace(imageTitleStripper.Replace(string(r)))
}
