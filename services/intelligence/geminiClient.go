package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"hustlr/metrics"
	"hustlr/models"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiConfig configures the remote generator.
type GeminiConfig struct {
	APIKey        string
	Model         string
	FastModel     string
	FallbackModel string
	MaxTokens     int
	FastMaxTokens int
	Temperature   float32
	// MaxRetries bounds the retries of one model on a rate-limit signal.
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// completeFunc performs one remote call against a single model.
type completeFunc func(ctx context.Context, model string, req GenerateRequest, maxTokens int32, temperature float32) (string, error)

// GeminiGenerator calls Gemini through a tiered list of model candidates.
// Rate-limited calls are retried with capped exponential backoff and jitter.
// Any other failure moves on to the next candidate.
type GeminiGenerator struct {
	client *genai.Client
	cfg    GeminiConfig
	logger *zap.Logger

	complete completeFunc
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g := newGeminiGenerator(cfg, logger)
	g.client = client
	g.complete = g.generateContent
	return g, nil
}

func newGeminiGenerator(cfg GeminiConfig, logger *zap.Logger) *GeminiGenerator {
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 2 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	if cfg.FastMaxTokens <= 0 {
		cfg.FastMaxTokens = cfg.MaxTokens
	}
	return &GeminiGenerator{cfg: cfg, logger: logger, sleep: sleepContext}
}

func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Candidates returns the model chain for a request.
func (g *GeminiGenerator) Candidates(fast bool) []string {
	primary := g.cfg.Model
	if fast && g.cfg.FastModel != "" {
		primary = g.cfg.FastModel
	}
	return ModelCandidates(primary, g.cfg.FallbackModel)
}

// Generate returns the first non-empty completion along the model chain.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("generate: no messages")
	}
	maxTokens := g.cfg.MaxTokens
	if req.Fast {
		maxTokens = g.cfg.FastMaxTokens
	}

	var lastErr error
	for _, model := range g.Candidates(req.Fast) {
		text, err := g.tryModel(ctx, model, req, int32(maxTokens))
		if err == nil {
			return text, nil
		}
		g.logger.Debug("model candidate failed", zap.String("model", model), zap.Error(err))
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAllModelsFailed, lastErr)
}

func (g *GeminiGenerator) tryModel(ctx context.Context, model string, req GenerateRequest, maxTokens int32) (string, error) {
	for attempt := 0; ; attempt++ {
		start := time.Now()
		text, err := g.complete(ctx, model, req, maxTokens, g.cfg.Temperature)
		metrics.LLMLatency.WithLabelValues(model).Observe(time.Since(start).Seconds())

		if err == nil {
			if text = strings.TrimSpace(text); text == "" {
				metrics.LLMAttempts.WithLabelValues(model, "empty").Inc()
				return "", ErrEmptyCompletion
			}
			metrics.LLMAttempts.WithLabelValues(model, "ok").Inc()
			return text, nil
		}

		if !isRateLimited(err) {
			metrics.LLMAttempts.WithLabelValues(model, "error").Inc()
			return "", err
		}
		metrics.LLMAttempts.WithLabelValues(model, "rate_limited").Inc()
		if attempt >= g.cfg.MaxRetries {
			return "", fmt.Errorf("%w after %d retries: %v", ErrRateLimited, attempt, err)
		}
		wait := g.backoff(attempt)
		g.logger.Warn("rate limited, backing off",
			zap.String("model", model), zap.Int("attempt", attempt+1), zap.Duration("wait", wait))
		if err := g.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
}

// backoff doubles from BaseBackoff up to MaxBackoff, keeping half the delay
// fixed and drawing the other half at random.
func (g *GeminiGenerator) backoff(attempt int) time.Duration {
	d := g.cfg.BaseBackoff << attempt
	if d <= 0 || d > g.cfg.MaxBackoff {
		d = g.cfg.MaxBackoff
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return status.Code(err) == codes.ResourceExhausted
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (g *GeminiGenerator) generateContent(ctx context.Context, model string, req GenerateRequest, maxTokens int32, temperature float32) (string, error) {
	m := g.client.GenerativeModel(model)
	m.SetMaxOutputTokens(maxTokens)
	m.SetTemperature(temperature)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	history, last := toContents(req.Messages)
	if last == nil {
		return "", fmt.Errorf("gemini: dialogue has no user message")
	}
	cs := m.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	return responseText(resp), nil
}

// toContents maps the dialogue onto Gemini roles. Consecutive messages of one
// role are merged, the history starts with a user turn and the final user
// turn is returned separately.
func toContents(msgs []models.Message) (history []*genai.Content, last *genai.Content) {
	var contents []*genai.Content
	for _, msg := range msgs {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		if len(contents) == 0 && role == "model" {
			continue
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, genai.Text(msg.Content))
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	for len(contents) > 0 && contents[len(contents)-1].Role != "user" {
		contents = contents[:len(contents)-1]
	}
	if len(contents) == 0 {
		return nil, nil
	}
	return contents[:len(contents)-1], contents[len(contents)-1]
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}

// ListModels returns the models the API key can use.
func (g *GeminiGenerator) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	it := g.client.ListModels(ctx)
	var out []models.ModelInfo
	for {
		info, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		out = append(out, models.ModelInfo{
			Name:             info.Name,
			DisplayName:      info.DisplayName,
			Description:      info.Description,
			InputTokenLimit:  info.InputTokenLimit,
			OutputTokenLimit: info.OutputTokenLimit,
			Methods:          info.SupportedGenerationMethods,
		})
	}
	return out, nil
}
