// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/internal/schema"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// retryBaseDelay is the first backoff interval between attempts. Tests
// shorten it.
var retryBaseDelay = 2 * time.Second

// transientMarkers are substrings of provider errors worth retrying.
var transientMarkers = []string{
	"429", "500", "502", "503", "504",
	"resource_exhausted", "unavailable", "internal error", "overloaded",
}

// GeminiGenerator calls Google Gemini through langchaingo.
type GeminiGenerator struct {
	Model      llms.Model
	ModelName  string
	MaxRetries int
}

// NewGeminiGenerator returns a generator authenticated with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey string, cfg types.AIConfig) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is empty")
	}
	model := cfg.Model
	if model == "" {
		model = types.DefaultModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiGenerator{Model: llm, ModelName: model, MaxRetries: cfg.MaxRetries}, nil
}

// Generate returns the model's text response to prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.call(ctx, prompt)
}

// GenerateStructured asks the model for JSON matching d. The schema is
// appended to the prompt and JSON mode is enabled; a surrounding code fence
// is removed from the reply.
func (g *GeminiGenerator) GenerateStructured(ctx context.Context, prompt string, d *schema.Descriptor) ([]byte, error) {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nRespond with a single JSON object that conforms to this JSON Schema. Do not include any text outside the JSON object.\n")
	b.WriteString(d.String())

	out, err := g.call(ctx, b.String(), llms.WithJSONMode())
	if err != nil {
		return nil, err
	}
	return []byte(StripFence(out)), nil
}

func (g *GeminiGenerator) call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	log := logger.FromContext(ctx)

	retries := g.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(retryBaseDelay))

	var out string
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		text, err := llms.GenerateFromSinglePrompt(ctx, g.Model, prompt, opts...)
		if err != nil {
			if transient(err) {
				log.Debug("gemini call failed, retrying", "model", g.ModelName, "attempt", attempt, "err", err)
				return retry.RetryableError(err)
			}
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.ModelName, err)
	}
	return out, nil
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
