package ai

import (
	"context"
	"errors"

	"hustlr/models"
)

var (
	// ErrEmptyCompletion means the model answered with no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrRateLimited means retries were exhausted on a throttling signal.
	ErrRateLimited = errors.New("rate limited")
	// ErrAllModelsFailed means every model candidate failed.
	ErrAllModelsFailed = errors.New("all model candidates failed")
)

// GenerateRequest is one text-completion call.
type GenerateRequest struct {
	// Messages is the ordered dialogue. The last message is the user's.
	Messages []models.Message
	// System is the system instruction.
	System string
	// Fast trades reply length for latency.
	Fast bool
	// Fallback is returned by the local generator verbatim when set.
	Fallback string
}

// Generator produces a natural-language reply.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ModelLister is implemented by generators backed by a remote model catalogue.
type ModelLister interface {
	Candidates(fast bool) []string
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
}

// UserPrompt wraps a single instruction as a one-message dialogue.
func UserPrompt(text string) []models.Message {
	return []models.Message{{Role: models.RoleUser, Content: text}}
}
