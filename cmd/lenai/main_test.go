package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lenai/internal/chat"
)

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"LENAI_CONFIG_PATH", "LENAI_LANG", "LENAI_OPENAI_MODEL", "LENAI_OPENAI_BASE_URL",
		"LENAI_OPENAI_API_KEY", "LENAI_GEMINI_API_KEY", "LENAI_ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	base := t.TempDir()
	t.Setenv("LENAI_BASE_DIR", base)
	work := t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportThenExport(t *testing.T) {
	isolate(t)
	dump := filepath.Join(t.TempDir(), "localStorage.json")
	content := `{
		"lenai_historico": "[{\"titulo\":\"Receita\",\"mensagens\":[{\"role\":\"user\",\"text\":\"bolo\"},{\"role\":\"bot\",\"text\":\"ok\"}]}]",
		"lenai_keys": {"openai": "sk-abcdef1234", "gemini": "", "claude": ""},
		"lenai_tema": "claro"
	}`
	if err := os.WriteFile(dump, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "import", dump)
	if err != nil {
		t.Fatalf("import: %v (%s)", err, out)
	}
	if !strings.Contains(out, "imported 1 conversations") {
		t.Fatalf("unexpected import output: %q", out)
	}

	out, err = execute(t, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var convs []chat.Conversation
	if err := json.Unmarshal([]byte(out), &convs); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, out)
	}
	if len(convs) != 1 || convs[0].Title != "Receita" || len(convs[0].Messages) != 2 {
		t.Fatalf("exported = %+v", convs)
	}
}

func TestKeysSetAndList(t *testing.T) {
	isolate(t)
	t.Setenv("LENAI_ANTHROPIC_API_KEY", "env-claude-9999")

	if out, err := execute(t, "keys", "set", "gemini", "g-secret-5678"); err != nil {
		t.Fatalf("keys set: %v (%s)", err, out)
	}
	out, err := execute(t, "keys")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if strings.Contains(out, "g-secret-5678") || !strings.Contains(out, "5678") {
		t.Fatalf("gemini key not masked: %q", out)
	}
	if !strings.Contains(out, "9999 (env)") {
		t.Fatalf("env key not flagged: %q", out)
	}

	if _, err := execute(t, "keys", "set", "bogus", "x"); err == nil {
		t.Fatalf("expected error for unknown slot")
	}
}

func TestInitWritesScaffold(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	want := filepath.Join(dir, ".lenai", "config.json")
	if strings.TrimSpace(out) != want {
		t.Fatalf("init printed %q, want %q", out, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("scaffold missing: %v", err)
	}
}

func TestPlainEphemeralSession(t *testing.T) {
	base := isolate(t)
	t.Setenv("NO_COLOR", "1")

	// 非 TTY 的 stdin 走普通行输入 / non-TTY stdin uses the plain line reader
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	oldStdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = oldStdin })
	_, _ = w.WriteString("/new\n/list\n/quit\n")
	_ = w.Close()

	out, err := execute(t, "--plain", "--ephemeral")
	if err != nil {
		t.Fatalf("plain session: %v (%s)", err, out)
	}
	if !strings.Contains(out, "New conversation started.") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(base, "lenai.db")); !os.IsNotExist(err) {
		t.Fatalf("ephemeral session created a database")
	}
}
