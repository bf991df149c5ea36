// Package gemini implements ai.Generator with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/scout/ai"
	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-flash"

// Generator wraps the Google GenAI client to provide prompt-based generation.
type Generator struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, config *ai.Config) (*Generator, error) {
	apiKey := strings.TrimSpace(config.GeneratorAPIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(config.GeneratorModel)
	if model == "" {
		model = defaultModel
	}

	return &Generator{
		client:      client,
		modelName:   model,
		temperature: float32(config.Temperature),
		logger:      slog.Default().With("component", "gemini-generator"),
	}, nil
}

// Generate sends the prompt to Gemini and joins the textual parts of the response.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	g.logger.Debug("generating content", "model", g.modelName, "prompt_length", len(prompt))
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := joinText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// Model returns the model name used for generation.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// Close is a no-op; the genai client holds no long-lived connections.
func (g *Generator) Close() error {
	return nil
}

func joinText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}
