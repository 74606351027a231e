package chat

import "testing"

func TestImageMarkdownRoundTrip(t *testing.T) {
	text := ImageMarkdown("a [cat] on a mat", "https://img.example/p/a cat")
	alt, url, ok := ParseImageRef(text)
	if !ok {
		t.Fatalf("ParseImageRef(%q) not detected", text)
	}
	if alt != "a [cat] on a mat" {
		t.Fatalf("alt=%q", alt)
	}
	if url != "https://img.example/p/a%20cat" {
		t.Fatalf("url=%q", url)
	}
}

func TestImageMarkdownEscapesClosingBracket(t *testing.T) {
	text := ImageMarkdown("x](javascript:alert(1))", "https://img.example/p/x")
	_, url, ok := ParseImageRef(text)
	if !ok {
		t.Fatalf("not detected: %q", text)
	}
	if url != "https://img.example/p/x" {
		t.Fatalf("alt text leaked into url: %q", url)
	}
}

func TestParseImageRefPlainText(t *testing.T) {
	if _, _, ok := ParseImageRef("just [some] text (here)"); ok {
		t.Fatal("plain text should not be an image reference")
	}
}

func TestCredentials(t *testing.T) {
	var c Credentials
	if c.AnyConfigured() {
		t.Fatal("zero credentials should not be configured")
	}
	c.Set(SlotSecondary, "  tok  ")
	if c.Get(SlotSecondary) != "tok" {
		t.Fatalf("Get(secondary)=%q", c.Get(SlotSecondary))
	}
	if !c.AnyConfigured() {
		t.Fatal("expected configured")
	}
}

func TestParseSlot(t *testing.T) {
	cases := map[string]Slot{"openai": SlotPrimary, "Gemini": SlotSecondary, "claude": SlotTertiary, "primary": SlotPrimary}
	for in, want := range cases {
		got, err := ParseSlot(in)
		if err != nil || got != want {
			t.Fatalf("ParseSlot(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := ParseSlot("bogus"); err == nil {
		t.Fatal("expected error for unknown slot")
	}
}

func TestThemeToggle(t *testing.T) {
	if ParseTheme("claro") != ThemeLight || ParseTheme("???") != ThemeDark {
		t.Fatal("ParseTheme mapping wrong")
	}
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Fatal("Toggle wrong")
	}
}

func TestMasked(t *testing.T) {
	if Masked("") != "-" {
		t.Fatal("empty mask")
	}
	if got := Masked("sk-abcdef1234"); got != "********1234" {
		t.Fatalf("Masked=%q", got)
	}
}
