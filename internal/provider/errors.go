package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoResponse means no configured provider produced any text.
var ErrNoResponse = errors.New("no response received")

// Error 提供方返回的失败，Message 优先于状态码展示
// Error is a failure reported by a provider. Message, when the provider sent one,
// is what the user sees.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Provider + " request failed"
}

func (e *Error) Unwrap() error { return e.Err }

// errorBody matches the {"error":{"message":...}} envelope OpenAI and Anthropic both use.
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// messageFromBody extracts error.message from a JSON error body, or "".
func messageFromBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Error.Message)
}
