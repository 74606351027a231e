package chat

import (
	"fmt"
	"strings"
)

// Slot 提供方优先级槽位
// Slot names a provider position in the fallback chain.
type Slot string

const (
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
	SlotTertiary  Slot = "tertiary"
)

// Slots lists the slots in fallback priority order.
var Slots = []Slot{SlotPrimary, SlotSecondary, SlotTertiary}

// ParseSlot accepts a slot name or the provider name bound to it by default.
func ParseSlot(s string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "openai", "1":
		return SlotPrimary, nil
	case "secondary", "gemini", "2":
		return SlotSecondary, nil
	case "tertiary", "claude", "anthropic", "3":
		return SlotTertiary, nil
	}
	return "", fmt.Errorf("unknown provider slot %q", s)
}

// Credentials 每个槽位的 bearer token，空字符串表示未配置
// Credentials maps each slot to an opaque bearer token; empty means not configured.
type Credentials struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

func (c Credentials) Get(slot Slot) string {
	switch slot {
	case SlotPrimary:
		return c.Primary
	case SlotSecondary:
		return c.Secondary
	case SlotTertiary:
		return c.Tertiary
	}
	return ""
}

// Set stores a trimmed token for slot; unknown slots are ignored.
func (c *Credentials) Set(slot Slot, token string) {
	token = strings.TrimSpace(token)
	switch slot {
	case SlotPrimary:
		c.Primary = token
	case SlotSecondary:
		c.Secondary = token
	case SlotTertiary:
		c.Tertiary = token
	}
}

// AnyConfigured reports whether at least one slot has a token.
func (c Credentials) AnyConfigured() bool {
	for _, s := range Slots {
		if c.Get(s) != "" {
			return true
		}
	}
	return false
}

// Masked returns the token with everything but the last four characters hidden.
func Masked(token string) string {
	if token == "" {
		return "-"
	}
	runes := []rune(token)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", 8) + string(runes[len(runes)-4:])
}

// Theme 界面主题偏好
// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme returns dark for anything it doesn't recognise.
func ParseTheme(s string) Theme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "claro":
		return ThemeLight
	default:
		return ThemeDark
	}
}

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
