package provider

import (
	"context"
	"log/slog"
	"strings"

	"lenai/internal/chat"
	"lenai/internal/logging"
)

// Gateway 按固定优先级依次尝试已配置凭据的提供方
// Gateway tries the providers in slot priority order, skipping slots without a
// credential, and returns the first non-empty answer.
type Gateway struct {
	providers map[chat.Slot]Provider
	system    string
	logger    *slog.Logger
}

func NewGateway(system string, logger *slog.Logger, providers ...Provider) *Gateway {
	g := &Gateway{
		providers: make(map[chat.Slot]Provider, len(providers)),
		system:    system,
		logger:    logging.OrDiscard(logger),
	}
	for _, p := range providers {
		g.providers[p.Slot()] = p
	}
	return g
}

// Providers returns the registered providers in priority order.
func (g *Gateway) Providers() []Provider {
	out := make([]Provider, 0, len(g.providers))
	for _, slot := range chat.Slots {
		if p, ok := g.providers[slot]; ok {
			out = append(out, p)
		}
	}
	return out
}

// GenerateText 返回第一个非空回答
// GenerateText sends the full history to each configured provider in turn.
// A provider error or empty answer moves on to the next one. When none answers,
// the last provider error is returned if there was one, otherwise ErrNoResponse.
func (g *Gateway) GenerateText(ctx context.Context, history []chat.Message, creds chat.Credentials) (string, error) {
	req := ChatRequest{System: g.system, Messages: history}
	var lastErr error
	for _, p := range g.Providers() {
		key := creds.Get(p.Slot())
		if key == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := p.Chat(ctx, key, req)
		if err != nil {
			g.logger.Warn("provider failed", "provider", p.Name(), "err", err)
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			g.logger.Info("provider returned no text", "provider", p.Name())
			continue
		}
		return text, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoResponse
}
