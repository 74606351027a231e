package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lenai/internal/chat"

	"github.com/joho/godotenv"
)

type ProviderConfig struct {
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TimeoutMS   int     `json:"timeout_ms"`
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `json:"openai"`
	Gemini    ProviderConfig `json:"gemini"`
	Anthropic ProviderConfig `json:"anthropic"`
}

type ImageConfig struct {
	Endpoint          string `json:"endpoint"`
	TranslateURL      string `json:"translate_url"`
	SourceLang        string `json:"source_lang"`
	TargetLang        string `json:"target_lang"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	TimeoutMS         int    `json:"timeout_ms"`
	TranslateTimeout  int    `json:"translate_timeout_ms"`
}

type IntentConfig struct {
	Patterns []string `json:"patterns"`
}

type StorageConfig struct {
	BaseDir  string `json:"base_dir"`
	DBFile   string `json:"db_file"`
	LogLevel string `json:"log_level"`
}

type UIConfig struct {
	Locale string `json:"locale"`
}

type Config struct {
	Providers    ProvidersConfig `json:"providers"`
	Image        ImageConfig     `json:"image"`
	Intent       IntentConfig    `json:"intent"`
	Storage      StorageConfig   `json:"storage"`
	UI           UIConfig        `json:"ui"`
	SystemPrompt string          `json:"system_prompt"`

	// EnvCredentials 来自环境变量，只用于填充空槽位，从不写回配置文件
	// EnvCredentials come from the environment and only seed empty slots. Never serialized.
	EnvCredentials chat.Credentials `json:"-"`
}

type fileProvidersConfig struct {
	OpenAI    *ProviderConfig `json:"openai"`
	Gemini    *ProviderConfig `json:"gemini"`
	Anthropic *ProviderConfig `json:"anthropic"`
}

type fileConfig struct {
	Providers    *fileProvidersConfig `json:"providers"`
	Image        *ImageConfig         `json:"image"`
	Intent       *IntentConfig        `json:"intent"`
	Storage      *StorageConfig       `json:"storage"`
	UI           *UIConfig            `json:"ui"`
	SystemPrompt *string              `json:"system_prompt"`
}

func Default() Config {
	return Config{
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o-mini",
				Temperature: DefaultTemperature,
				TimeoutMS:   DefaultProviderTimeoutMS,
			},
			Gemini: ProviderConfig{
				Model:       "gemini-1.5-flash",
				Temperature: DefaultTemperature,
				TimeoutMS:   DefaultProviderTimeoutMS,
			},
			Anthropic: ProviderConfig{
				BaseURL:   "https://api.anthropic.com",
				Model:     "claude-3-5-haiku-latest",
				TimeoutMS: DefaultProviderTimeoutMS,
			},
		},
		Image: ImageConfig{
			Endpoint:          "https://image.pollinations.ai/prompt/",
			TranslateURL:      "https://api.mymemory.translated.net/get",
			SourceLang:        "pt",
			TargetLang:        "en",
			RequestsPerMinute: DefaultTranslateRPM,
			TimeoutMS:         DefaultImageTimeoutMS,
			TranslateTimeout:  DefaultTranslateTimeoutMS,
		},
		Storage: StorageConfig{
			BaseDir:  "~/.lenai",
			DBFile:   DefaultDBFile,
			LogLevel: DefaultLogLevel,
		},
	}
}

// Load 依次合并：默认值 → 全局配置 → 项目配置 → .env → 环境变量
// Load layers defaults, the global config, the project config (or path), .env and
// the process environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("LENAI_CONFIG_PATH")); envPath != "" && resolvedPath == "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	// .env 不覆盖已有环境变量 / .env never overrides variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

// DBPath is the SQLite file under the base dir.
func (c Config) DBPath() string {
	return filepath.Join(c.Storage.BaseDir, c.Storage.DBFile)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".lenai", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"lenai.config.json",
		".lenai/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Providers != nil {
		if fc.Providers.OpenAI != nil {
			cfg.Providers.OpenAI = mergeProvider(cfg.Providers.OpenAI, *fc.Providers.OpenAI)
		}
		if fc.Providers.Gemini != nil {
			cfg.Providers.Gemini = mergeProvider(cfg.Providers.Gemini, *fc.Providers.Gemini)
		}
		if fc.Providers.Anthropic != nil {
			cfg.Providers.Anthropic = mergeProvider(cfg.Providers.Anthropic, *fc.Providers.Anthropic)
		}
	}
	if fc.Image != nil {
		cfg.Image = mergeImage(cfg.Image, *fc.Image)
	}
	if fc.Intent != nil && len(fc.Intent.Patterns) > 0 {
		cfg.Intent.Patterns = append([]string(nil), fc.Intent.Patterns...)
	}
	if fc.Storage != nil {
		if v := strings.TrimSpace(fc.Storage.BaseDir); v != "" {
			cfg.Storage.BaseDir = v
		}
		if v := strings.TrimSpace(fc.Storage.DBFile); v != "" {
			cfg.Storage.DBFile = v
		}
		if v := strings.TrimSpace(fc.Storage.LogLevel); v != "" {
			cfg.Storage.LogLevel = v
		}
	}
	if fc.UI != nil && strings.TrimSpace(fc.UI.Locale) != "" {
		cfg.UI.Locale = strings.TrimSpace(fc.UI.Locale)
	}
	if fc.SystemPrompt != nil {
		cfg.SystemPrompt = *fc.SystemPrompt
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	out := base
	if v := strings.TrimSpace(override.BaseURL); v != "" {
		out.BaseURL = v
	}
	if v := strings.TrimSpace(override.Model); v != "" {
		out.Model = v
	}
	if override.Temperature > 0 {
		out.Temperature = override.Temperature
	}
	if override.TimeoutMS > 0 {
		out.TimeoutMS = override.TimeoutMS
	}
	return out
}

func mergeImage(base ImageConfig, override ImageConfig) ImageConfig {
	out := base
	if v := strings.TrimSpace(override.Endpoint); v != "" {
		out.Endpoint = v
	}
	if v := strings.TrimSpace(override.TranslateURL); v != "" {
		out.TranslateURL = v
	}
	if v := strings.TrimSpace(override.SourceLang); v != "" {
		out.SourceLang = v
	}
	if v := strings.TrimSpace(override.TargetLang); v != "" {
		out.TargetLang = v
	}
	if override.RequestsPerMinute > 0 {
		out.RequestsPerMinute = override.RequestsPerMinute
	}
	if override.TimeoutMS > 0 {
		out.TimeoutMS = override.TimeoutMS
	}
	if override.TranslateTimeout > 0 {
		out.TranslateTimeout = override.TranslateTimeout
	}
	return out
}

func normalize(cfg *Config) error {
	def := Default()
	for _, p := range []struct{ got, want *ProviderConfig }{
		{&cfg.Providers.OpenAI, &def.Providers.OpenAI},
		{&cfg.Providers.Gemini, &def.Providers.Gemini},
		{&cfg.Providers.Anthropic, &def.Providers.Anthropic},
	} {
		if p.got.Model == "" {
			p.got.Model = p.want.Model
		}
		if p.got.BaseURL == "" {
			p.got.BaseURL = p.want.BaseURL
		}
		if p.got.TimeoutMS <= 0 {
			p.got.TimeoutMS = p.want.TimeoutMS
		}
		if p.got.Temperature < 0 || p.got.Temperature > 2 {
			return fmt.Errorf("invalid temperature %v for model %q", p.got.Temperature, p.got.Model)
		}
	}
	if cfg.Image.RequestsPerMinute <= 0 {
		cfg.Image.RequestsPerMinute = def.Image.RequestsPerMinute
	}
	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = def.Storage.BaseDir
	}
	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("expand storage.base_dir: %w", err)
	}
	cfg.Storage.BaseDir = baseDir
	if strings.TrimSpace(cfg.Storage.DBFile) == "" {
		cfg.Storage.DBFile = def.Storage.DBFile
	}
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("LENAI_BASE_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("LENAI_LANG")); v != "" {
		cfg.UI.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv("LENAI_LOG_LEVEL")); v != "" {
		cfg.Storage.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LENAI_OPENAI_BASE_URL")); v != "" {
		cfg.Providers.OpenAI.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LENAI_OPENAI_MODEL")); v != "" {
		cfg.Providers.OpenAI.Model = v
	}
	cfg.EnvCredentials.Set(chat.SlotPrimary, os.Getenv("LENAI_OPENAI_API_KEY"))
	cfg.EnvCredentials.Set(chat.SlotSecondary, os.Getenv("LENAI_GEMINI_API_KEY"))
	cfg.EnvCredentials.Set(chat.SlotTertiary, os.Getenv("LENAI_ANTHROPIC_API_KEY"))

	return cfg, normalize(&cfg)
}

// SeedCredentials 用环境变量中的凭据填充空槽位
// SeedCredentials fills empty slots of stored with env credentials.
func (c Config) SeedCredentials(stored chat.Credentials) chat.Credentials {
	out := stored
	for _, slot := range chat.Slots {
		if out.Get(slot) == "" {
			out.Set(slot, c.EnvCredentials.Get(slot))
		}
	}
	return out
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}
	return out.Bytes()
}
