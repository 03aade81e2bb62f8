// Package gemini wraps the Gemini text-generation API for status summaries.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
)

const (
	defaultModel       = "gemini-1.5-flash"
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.7
	maxOutputTokens    = 1024
)

// Config holds generator configuration.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Generator produces status summaries from assembled prompts. Each call is
// bounded by a fixed timeout; a timed-out or failed call is a hard failure
// with no retry.
type Generator struct {
	model   string
	timeout time.Duration
	logger  zerolog.Logger

	// generate performs the actual model call; swapped out in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGenerator constructs a Generator backed by the Gemini API.
func NewGenerator(ctx context.Context, cfg Config, logger zerolog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	g := &Generator{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "gemini").Logger(),
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	g.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, g.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{
				Temperature:     genai.Ptr[float32](defaultTemperature),
				MaxOutputTokens: maxOutputTokens,
			})
		if err != nil {
			return "", err
		}
		text := resp.Text()
		if text == "" {
			return "", fmt.Errorf("model returned no text")
		}
		return text, nil
	}

	return g, nil
}

// Model returns the configured model identifier.
func (g *Generator) Model() string { return g.model }

// Generate submits the prompt and returns the raw generated text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.generate(callCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			return "", fmt.Errorf("generation exceeded %s: %w", g.timeout, serrors.ErrTimeout)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	g.logger.Debug().
		Str("model", g.model).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("generation complete")
	return text, nil
}
