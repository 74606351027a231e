package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"lenai/internal/chat"
)

// browserConversation is the conversation shape of the browser build.
type browserConversation struct {
	Titulo    string           `json:"titulo"`
	Mensagens []browserMessage `json:"mensagens"`
}

type browserMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type browserKeys struct {
	OpenAI string `json:"openai"`
	Gemini string `json:"gemini"`
	Claude string `json:"claude"`
}

// ImportReport counts what an import wrote.
type ImportReport struct {
	Conversations int
	Credentials   bool
	Theme         bool
}

// ImportBrowserExport 将浏览器版 localStorage 的 JSON 导出迁移到 store
// ImportBrowserExport reads a JSON object dump of the browser build's localStorage
// (lenai_historico, lenai_keys, lenai_tema) and writes the converted values to store.
// Values may be stored either as JSON or as JSON-encoded strings, as localStorage does.
// Keys missing from the dump leave the existing value alone.
func ImportBrowserExport(path string, store Store) (ImportReport, error) {
	var report ImportReport
	var dump map[string]json.RawMessage
	if err := readJSON(path, &dump); err != nil {
		return report, fmt.Errorf("read export: %w", err)
	}

	if raw, ok := dump["lenai_historico"]; ok {
		var legacy []browserConversation
		if err := decodeLocalStorageValue(raw, &legacy); err != nil {
			return report, fmt.Errorf("decode lenai_historico: %w", err)
		}
		convs := make([]chat.Conversation, 0, len(legacy))
		for _, lc := range legacy {
			conv := chat.Conversation{Title: strings.TrimSpace(lc.Titulo), Messages: []chat.Message{}}
			for _, lm := range lc.Mensagens {
				role := chat.RoleUser
				if lm.Role == "bot" || lm.Role == "assistant" {
					role = chat.RoleBot
				}
				conv.Messages = append(conv.Messages, chat.Message{Role: role, Text: lm.Text})
			}
			convs = append(convs, conv)
		}
		if err := saveJSON(store, KeyHistory, convs); err != nil {
			return report, err
		}
		report.Conversations = len(convs)
	}

	if raw, ok := dump["lenai_keys"]; ok {
		var keys browserKeys
		if err := decodeLocalStorageValue(raw, &keys); err != nil {
			return report, fmt.Errorf("decode lenai_keys: %w", err)
		}
		var creds chat.Credentials
		creds.Set(chat.SlotPrimary, keys.OpenAI)
		creds.Set(chat.SlotSecondary, keys.Gemini)
		creds.Set(chat.SlotTertiary, keys.Claude)
		if err := saveJSON(store, KeyCredentials, creds); err != nil {
			return report, err
		}
		report.Credentials = true
	}

	if raw, ok := dump["lenai_tema"]; ok {
		var tema string
		if err := json.Unmarshal(raw, &tema); err != nil {
			return report, fmt.Errorf("decode lenai_tema: %w", err)
		}
		if err := store.Save(KeyTheme, string(chat.ParseTheme(tema))); err != nil {
			return report, err
		}
		report.Theme = true
	}
	return report, nil
}

// ExportHistory writes the stored history as indented JSON.
func ExportHistory(store Store, w io.Writer) error {
	raw, ok, err := store.Load(KeyHistory)
	if err != nil {
		return err
	}
	var convs []chat.Conversation
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &convs); err != nil {
			return fmt.Errorf("decode history: %w", err)
		}
	}
	if convs == nil {
		convs = []chat.Conversation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(convs)
}

// decodeLocalStorageValue accepts either a JSON value or a string holding JSON.
func decodeLocalStorageValue(raw json.RawMessage, v any) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return json.Unmarshal(raw, v)
}

func saveJSON(store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Save(key, string(data))
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
