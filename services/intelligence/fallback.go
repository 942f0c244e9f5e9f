package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// FallbackGenerator tries Primary and answers with Secondary when Primary
// fails or returns nothing.
type FallbackGenerator struct {
	Primary   Generator
	Secondary Generator
	Logger    *zap.Logger
}

func (f *FallbackGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	text, err := f.Primary.Generate(ctx, req)
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text), nil
	}
	if err == nil {
		err = ErrEmptyCompletion
	}
	f.Logger.Warn("remote generation failed, using local reply", zap.Error(err))
	return f.Secondary.Generate(ctx, req)
}
