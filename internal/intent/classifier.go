// Package intent decides whether user text asks for an image instead of a text answer.
package intent

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultPatterns 默认的图片意图短语（葡萄牙语 + 英语），匹配前文本已去重音并转小写
// DefaultPatterns are matched against accent-folded, lower-cased text.
var DefaultPatterns = []string{
	`ger(a|e)? uma imagem`,
	`mostra(r)? uma imagem`,
	`desenh(a|e)r?`,
	`imagem de`,
	`foto de`,
	`cria(r)? imagem`,
	`visualiza(r)?`,
	`\bpint(a|ar|e)\b`,
	`arte de`,
	`\bgenerate (an |a )?image\b`,
	`\bdraw\b`,
	`\bpicture of\b`,
	`\bphoto of\b`,
	`\bcreate (an |a )?image\b`,
	`\bshow me an? (image|picture)\b`,
	`\bpaint\b`,
	`\bart of\b`,
}

// Classifier is safe for concurrent use.
type Classifier struct {
	patterns []*regexp.Regexp
}

// New compiles patterns. An invalid pattern is an error.
func New(patterns []string) (*Classifier, error) {
	c := &Classifier{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(fold(p))
		if err != nil {
			return nil, fmt.Errorf("compile intent pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// MustDefault returns a classifier over DefaultPatterns.
func MustDefault() *Classifier {
	c, err := New(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return c
}

// IsImageRequest reports whether any pattern matches. Empty text is never an image request.
func (c *Classifier) IsImageRequest(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	folded := fold(text)
	for _, re := range c.patterns {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

// fold strips diacritics and lower-cases s.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
