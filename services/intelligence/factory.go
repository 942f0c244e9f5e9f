package ai

import (
	"context"

	"hustlr/config"

	"go.uber.org/zap"
)

// NewGenerator selects the generator from configuration. USE_LOCAL_LLM or a
// missing API key selects the local generator alone. Otherwise Gemini is used
// with the local generator behind it. The returned lister is nil in local mode.
func NewGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) (Generator, *GeminiGenerator, error) {
	if cfg.UseLocalLLM || cfg.GeminiAPIKey == "" {
		logger.Info("using local text generator")
		return LocalGenerator{}, nil, nil
	}
	gemini, err := NewGeminiGenerator(ctx, GeminiConfig{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.LLMModel,
		FastModel:     cfg.LLMFastModel,
		FallbackModel: cfg.LLMFallbackModel,
		MaxTokens:     cfg.LLMMaxTokens,
		FastMaxTokens: cfg.LLMFastMaxTokens,
		Temperature:   cfg.LLMTemperature,
		MaxRetries:    cfg.LLMMaxRetries,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using Gemini text generator", zap.Strings("models", gemini.Candidates(false)))
	return &FallbackGenerator{Primary: gemini, Secondary: LocalGenerator{}, Logger: logger}, gemini, nil
}
