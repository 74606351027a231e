package bootstrap

import (
	"fmt"
	"log/slog"

	"lenai/internal/config"
	"lenai/internal/intent"
	"lenai/internal/provider"
)

// buildProviders 按优先级槽位构建三个提供方
// buildProviders builds one provider per slot, in fallback order.
func buildProviders(cfg config.Config) []provider.Provider {
	p := cfg.Providers
	return []provider.Provider{
		provider.NewOpenAIProvider(provider.OpenAIConfig{
			BaseURL:     p.OpenAI.BaseURL,
			Model:       p.OpenAI.Model,
			Temperature: float32(p.OpenAI.Temperature),
			TimeoutMS:   p.OpenAI.TimeoutMS,
		}),
		provider.NewGeminiProvider(provider.GeminiConfig{
			Model:       p.Gemini.Model,
			Endpoint:    p.Gemini.BaseURL,
			Temperature: float32(p.Gemini.Temperature),
			TimeoutMS:   p.Gemini.TimeoutMS,
		}),
		provider.NewAnthropicProvider(provider.AnthropicConfig{
			BaseURL:   p.Anthropic.BaseURL,
			Model:     p.Anthropic.Model,
			TimeoutMS: p.Anthropic.TimeoutMS,
		}),
	}
}

func buildImagePipeline(cfg config.Config, logger *slog.Logger) *provider.ImagePipeline {
	img := cfg.Image
	translator := provider.NewTranslator(provider.TranslatorConfig{
		Endpoint:          img.TranslateURL,
		SourceLang:        img.SourceLang,
		TargetLang:        img.TargetLang,
		RequestsPerMinute: img.RequestsPerMinute,
		TimeoutMS:         img.TranslateTimeout,
	}, logger)
	return provider.NewImagePipeline(img.Endpoint, translator, provider.NewImageLoader(img.TimeoutMS), logger)
}

func buildClassifier(cfg config.Config) (*intent.Classifier, error) {
	if len(cfg.Intent.Patterns) == 0 {
		return intent.MustDefault(), nil
	}
	c, err := intent.New(cfg.Intent.Patterns)
	if err != nil {
		return nil, fmt.Errorf("intent patterns: %w", err)
	}
	return c, nil
}
