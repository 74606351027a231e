package config

import (
	"os"
	"path/filepath"
	"testing"

	"lenai/internal/chat"
)

// isolate points HOME at a temp dir and moves into an empty working dir.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"LENAI_CONFIG_PATH", "LENAI_BASE_DIR", "LENAI_LANG", "LENAI_OPENAI_MODEL",
		"LENAI_OPENAI_BASE_URL", "LENAI_OPENAI_API_KEY", "LENAI_GEMINI_API_KEY", "LENAI_ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	work = t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home, work
}

func TestLoadDefaults(t *testing.T) {
	home, _ := isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.OpenAI.Model != "gpt-4o-mini" || cfg.Providers.Gemini.Model != "gemini-1.5-flash" {
		t.Fatalf("providers=%+v", cfg.Providers)
	}
	if cfg.Storage.BaseDir != filepath.Join(home, ".lenai") {
		t.Fatalf("base_dir=%q", cfg.Storage.BaseDir)
	}
	if cfg.DBPath() != filepath.Join(home, ".lenai", "lenai.db") {
		t.Fatalf("DBPath=%q", cfg.DBPath())
	}
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home, _ := isolate(t)

	globalDir := filepath.Join(home, ".lenai")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "providers": {"openai": {"model": "global-model", "timeout_ms": 5000}},
  "ui": {"locale": "pt-BR"}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project wins */
  "providers": {"openai": {"model": "project-model"}},
  "intent": {"patterns": ["\\bsketch\\b"]},
  "system_prompt": "be brief // not a comment"
}`
	if err := os.WriteFile("lenai.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.OpenAI.Model != "project-model" {
		t.Fatalf("model=%q", cfg.Providers.OpenAI.Model)
	}
	if cfg.Providers.OpenAI.TimeoutMS != 5000 {
		t.Fatalf("timeout=%d, want global value kept", cfg.Providers.OpenAI.TimeoutMS)
	}
	if cfg.UI.Locale != "pt-BR" {
		t.Fatalf("locale=%q", cfg.UI.Locale)
	}
	if len(cfg.Intent.Patterns) != 1 || cfg.Intent.Patterns[0] != `\bsketch\b` {
		t.Fatalf("patterns=%v", cfg.Intent.Patterns)
	}
	if cfg.SystemPrompt != "be brief // not a comment" {
		t.Fatalf("system_prompt=%q", cfg.SystemPrompt)
	}
}

func TestEnvOverride(t *testing.T) {
	_, work := isolate(t)
	t.Setenv("LENAI_OPENAI_MODEL", "env-model")
	t.Setenv("LENAI_BASE_DIR", filepath.Join(work, "data"))
	t.Setenv("LENAI_GEMINI_API_KEY", " gem-key ")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.OpenAI.Model != "env-model" {
		t.Fatalf("model=%q", cfg.Providers.OpenAI.Model)
	}
	if cfg.Storage.BaseDir != filepath.Join(work, "data") {
		t.Fatalf("base_dir=%q", cfg.Storage.BaseDir)
	}
	if cfg.EnvCredentials.Secondary != "gem-key" {
		t.Fatalf("env creds=%+v", cfg.EnvCredentials)
	}
}

func TestDotEnv(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".env", []byte("LENAI_ANTHROPIC_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("LENAI_ANTHROPIC_API_KEY") })
	_ = os.Unsetenv("LENAI_ANTHROPIC_API_KEY")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnvCredentials.Tertiary != "from-dotenv" {
		t.Fatalf("tertiary=%q", cfg.EnvCredentials.Tertiary)
	}
}

func TestExplicitPathAndBadJSON(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "custom.json")
	if err := os.WriteFile(path, []byte(`{"providers": {"anthropic": {"model": "claude-x"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.Anthropic.Model != "claude-x" {
		t.Fatalf("model=%q", cfg.Providers.Anthropic.Model)
	}

	if err := os.WriteFile(path, []byte(`{"providers": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSeedCredentials(t *testing.T) {
	cfg := Default()
	cfg.EnvCredentials = chat.Credentials{Primary: "env-openai", Secondary: "env-gemini"}
	got := cfg.SeedCredentials(chat.Credentials{Primary: "stored"})
	if got.Primary != "stored" || got.Secondary != "env-gemini" || got.Tertiary != "" {
		t.Fatalf("seeded=%+v", got)
	}
}

func TestStripJSONComments(t *testing.T) {
	in := []byte("{\"a\": \"x // y\", // c\n \"b\": /* z */ 1}")
	got := string(stripJSONComments(in))
	want := "{\"a\": \"x // y\", \n \"b\":  1}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInitProjectConfigScaffold(t *testing.T) {
	dir := t.TempDir()
	path, err := InitProjectConfigScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ".lenai", "config.json") {
		t.Fatalf("path=%q", path)
	}
	if err := os.WriteFile(path, []byte(`{"ui":{"locale":"en"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := InitProjectConfigScaffold(dir); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"ui":{"locale":"en"}}` {
		t.Fatal("existing config should not be overwritten")
	}
}
