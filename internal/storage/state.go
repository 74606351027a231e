package storage

import (
	"encoding/json"
	"log/slog"
	"strings"

	"lenai/internal/chat"
	"lenai/internal/logging"
)

// DefaultTitle is the title given to a conversation nobody has named yet.
const DefaultTitle = "New Chat"

// State 在 Store 之上提供带安全默认值的类型化读写
// State gives typed access to persisted state. Loads never fail: absent or
// malformed values fall back to safe defaults. Save failures are logged and swallowed.
type State struct {
	store  Store
	logger *slog.Logger
	// DefaultTitle is used for the conversation created when history is empty.
	DefaultTitle string
}

func NewState(store Store, logger *slog.Logger) *State {
	return &State{store: store, logger: logging.OrDiscard(logger), DefaultTitle: DefaultTitle}
}

// LoadHistory 读取会话历史；缺失、损坏或为空时返回一个空会话
func (s *State) LoadHistory() []chat.Conversation {
	raw, ok := s.load(KeyHistory)
	if !ok {
		return s.defaultHistory()
	}
	var convs []chat.Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		s.logger.Warn("history is malformed, starting fresh", "err", err)
		return s.defaultHistory()
	}
	if len(convs) == 0 {
		return s.defaultHistory()
	}
	for i := range convs {
		if convs[i].Messages == nil {
			convs[i].Messages = []chat.Message{}
		}
	}
	return convs
}

func (s *State) SaveHistory(convs []chat.Conversation) {
	s.saveJSON(KeyHistory, convs)
}

func (s *State) LoadCredentials() chat.Credentials {
	raw, ok := s.load(KeyCredentials)
	if !ok {
		return chat.Credentials{}
	}
	var creds chat.Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		s.logger.Warn("credentials are malformed, ignoring", "err", err)
		return chat.Credentials{}
	}
	return creds
}

func (s *State) SaveCredentials(creds chat.Credentials) {
	s.saveJSON(KeyCredentials, creds)
}

func (s *State) LoadTheme() chat.Theme {
	raw, _ := s.load(KeyTheme)
	return chat.ParseTheme(raw)
}

func (s *State) SaveTheme(theme chat.Theme) {
	if err := s.store.Save(KeyTheme, string(theme)); err != nil {
		s.logger.Error("save theme failed", "err", err)
	}
}

func (s *State) load(key string) (string, bool) {
	raw, ok, err := s.store.Load(key)
	if err != nil {
		s.logger.Warn("load failed", "key", key, "err", err)
		return "", false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

func (s *State) saveJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode failed", "key", key, "err", err)
		return
	}
	if err := s.store.Save(key, string(data)); err != nil {
		s.logger.Error("save failed", "key", key, "err", err)
	}
}

func (s *State) defaultHistory() []chat.Conversation {
	title := s.DefaultTitle
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return []chat.Conversation{{Title: title, Messages: []chat.Message{}}}
}
