// Package title parses the in-band [TITLE: ...] directive out of provider replies.
package title

import (
	"regexp"
	"strings"
)

// MaxRunes caps an extracted title.
const MaxRunes = 60

var directive = regexp.MustCompile(`(?i)\[\s*(?:TITLE|T[IÍ]TULO)\s*:\s*(.+?)\]`)

// Result of Extract. Title is set only when Found.
type Result struct {
	Text  string
	Title string
	Found bool
}

// Extract 取出第一个标题指令并从文本中移除
// Extract removes the first title directive from text and returns its value,
// trimmed and capped at MaxRunes. Text without a directive is returned unchanged.
func Extract(text string) Result {
	loc := directive.FindStringSubmatchIndex(text)
	if loc == nil {
		return Result{Text: text}
	}
	value := strings.TrimSpace(text[loc[2]:loc[3]])
	cleaned := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	if r := []rune(value); len(r) > MaxRunes {
		value = strings.TrimSpace(string(r[:MaxRunes]))
	}
	if value == "" {
		return Result{Text: cleaned}
	}
	return Result{Text: cleaned, Title: value, Found: true}
}
