package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lenai/internal/logging"

	"golang.org/x/time/rate"
)

const (
	DefaultTranslateURL   = "https://api.mymemory.translated.net/get"
	DefaultSourceLang     = "pt"
	DefaultTargetLang     = "en"
	defaultTranslateRPM   = 30
	defaultTranslateLimit = 10 * time.Second
)

// TranslatorConfig configures Translator.
type TranslatorConfig struct {
	Endpoint          string
	SourceLang        string
	TargetLang        string
	RequestsPerMinute int
	TimeoutMS         int
}

// Translator 调用 MyMemory 把图片提示词翻译成英文；任何失败都返回原文
// Translator translates image prompts through the MyMemory API. Any failure,
// including the local rate limit being cancelled, yields the original text.
type Translator struct {
	endpoint string
	langpair string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func NewTranslator(cfg TranslatorConfig, logger *slog.Logger) *Translator {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultTranslateURL
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = DefaultSourceLang
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = DefaultTargetLang
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultTranslateRPM
	}
	timeout := defaultTranslateLimit
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &Translator{
		endpoint: cfg.Endpoint,
		langpair: cfg.SourceLang + "|" + cfg.TargetLang,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:   logging.OrDiscard(logger),
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.RawMessage `json:"responseStatus"`
}

// Translate never fails; it falls back to text.
func (t *Translator) Translate(ctx context.Context, text string) string {
	translated, err := t.translate(ctx, text)
	if err != nil {
		t.logger.Warn("translate failed, using original prompt", "err", err)
		return text
	}
	return translated
}

func (t *Translator) translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", t.langpair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send translate request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("translate: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	var parsed myMemoryResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if status := strings.Trim(string(parsed.ResponseStatus), `"`); status != "" && status != "200" {
		return "", fmt.Errorf("translate: status %s", status)
	}
	out := strings.TrimSpace(parsed.ResponseData.TranslatedText)
	if out == "" {
		return "", fmt.Errorf("translate: empty result")
	}
	return out, nil
}
