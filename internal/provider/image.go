package provider

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lenai/internal/logging"
)

const (
	DefaultImageEndpoint = "https://image.pollinations.ai/prompt/"
	defaultImageTimeout  = 90 * time.Second
)

// ImageResult 图片生成结果：就绪 (URL) 或失败 (Err)
// ImageResult is either ready with a URL or failed with Err.
type ImageResult struct {
	URL        string
	Translated string
	Err        error
}

func (r ImageResult) Ready() bool { return r.Err == nil && r.URL != "" }

// ImageLoader 检查图片 URL 是否可加载
// ImageLoader fetches an image URL to confirm it actually renders.
type ImageLoader struct {
	client *http.Client
}

func NewImageLoader(timeoutMS int) *ImageLoader {
	timeout := defaultImageTimeout
	if timeoutMS > 0 {
		timeout = time.Duration(timeoutMS) * time.Millisecond
	}
	return &ImageLoader{client: &http.Client{Timeout: timeout}}
}

// Check returns nil when the URL answers 2xx with an image/* content type.
// Only the response headers are read.
func (l *ImageLoader) Check(ctx context.Context, imageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("create image request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	// 只看响应头，不下载图片本体
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("load image: HTTP %d", resp.StatusCode)
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("load image: unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	return nil
}

// ImagePipeline 翻译 → 构造 URL → 加载检查
// ImagePipeline runs translate, build URL, then load check.
type ImagePipeline struct {
	translator *Translator
	loader     *ImageLoader
	endpoint   string
	logger     *slog.Logger
}

func NewImagePipeline(endpoint string, translator *Translator, loader *ImageLoader, logger *slog.Logger) *ImagePipeline {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultImageEndpoint
	}
	return &ImagePipeline{
		translator: translator,
		loader:     loader,
		endpoint:   endpoint,
		logger:     logging.OrDiscard(logger),
	}
}

// ImageURL builds the generation URL for a prompt.
func (p *ImagePipeline) ImageURL(prompt string) string {
	base := p.endpoint
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(strings.TrimSpace(prompt))
}

// GenerateImage blocks until the image is ready or has failed.
func (p *ImagePipeline) GenerateImage(ctx context.Context, prompt string) ImageResult {
	translated := prompt
	if p.translator != nil {
		translated = p.translator.Translate(ctx, prompt)
	}
	res := ImageResult{URL: p.ImageURL(translated), Translated: translated}
	if p.loader != nil {
		if err := p.loader.Check(ctx, res.URL); err != nil {
			p.logger.Warn("image failed to load", "url", res.URL, "err", err)
			return ImageResult{Translated: translated, Err: err}
		}
	}
	return res
}
