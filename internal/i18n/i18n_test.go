package i18n

import "testing"

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	got := i.T("chat.default_title")
	if got != "New Chat" {
		t.Fatalf("T(chat.default_title)=%q, want New Chat", got)
	}
}

func TestNew_Portuguese(t *testing.T) {
	i := New("pt_BR.UTF-8")
	if i.Locale() != "pt-BR" {
		t.Fatalf("Locale()=%q, want pt-BR", i.Locale())
	}
	if got := i.T("chat.default_title"); got != "Novo Chat" {
		t.Fatalf("T(chat.default_title)=%q, want Novo Chat", got)
	}
	// 未覆盖的键回退英文 / keys missing from the overlay fall back to English
	if got := i.T("chat.bot"); got != "LenAI" {
		t.Fatalf("T(chat.bot)=%q, want LenAI", got)
	}
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("LENAI_LANG", "pt_BR.UTF-8")
	if got := New("").Locale(); got != "pt-BR" {
		t.Fatalf("Locale()=%q, want pt-BR", got)
	}
}

func TestOverlayKeysExistInEnglish(t *testing.T) {
	for k := range PtBRMessages {
		if _, ok := EnMessages[k]; !ok {
			t.Errorf("pt-BR key %q has no English entry", k)
		}
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	got := i.T("error.reply", "bad key")
	if got != "❌ Error: bad key" {
		t.Fatalf("T with args=%q", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	got := i.T("nonexistent.key")
	if got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US.UTF-8", "en"},
		{"pt_BR.UTF-8", "pt-BR"},
		{"pt", "pt-BR"},
		{"pt-BR", "pt-BR"},
		{"en", "en"},
		{"", "en"},
		{"C", "en"},
		{"fr_FR", "en"},
		{"not a locale", "en"},
	}
	for _, tt := range tests {
		got := Match(tt.input).String()
		if got != tt.expected {
			t.Errorf("Match(%q)=%q, want %q", tt.input, got, tt.expected)
		}
	}
}
