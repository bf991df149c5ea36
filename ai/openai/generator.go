package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/scout/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.GeneratorAPIKey
	if token == "" {
		// Local OpenAI-compatible services don't require authentication
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(token),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate sends prompt as a single user message and returns the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating completion", "prompt_length", len(prompt))

	response, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("generation failed", "err", err)
		return "", err
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", errors.New("generator returned empty response")
	}
	return response, nil
}
