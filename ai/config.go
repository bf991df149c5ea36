// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"fmt"
	"strings"
)

// GeneratorBackend names the service that writes candidate explanations.
type GeneratorBackend string

const (
	// BackendGemini uses the Google Gemini API.
	BackendGemini GeneratorBackend = "gemini"
	// BackendOpenAI uses an OpenAI-compatible chat completion API.
	BackendOpenAI GeneratorBackend = "openai"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Its output dimension must match the vector size of the collections.
	// Example: "bge-m3", "text-embedding-3-large"
	EmbeddingModel string

	// EmbeddingToken authenticates against the embedding API.
	// Local servers accept any value.
	EmbeddingToken string

	// QueryPrefix is prepended to search queries before embedding.
	// Asymmetric retrieval models expect one (e.g. "query: ").
	QueryPrefix string

	// PassagePrefix is prepended to indexed documents before embedding.
	// Example: "passage: "
	PassagePrefix string

	// GeneratorBackend selects the explanation generator.
	// Default: gemini
	GeneratorBackend GeneratorBackend

	// GeneratorHost is the base URL of an OpenAI-compatible generator.
	// Only used with BackendOpenAI.
	GeneratorHost string

	// GeneratorModel is the model identifier used for explanations.
	// Example: "gemini-1.5-flash", "qwen2.5:7b"
	GeneratorModel string

	// GeneratorAPIKey authenticates against the generator API.
	// Required for BackendGemini.
	GeneratorAPIKey string

	// Temperature controls sampling for explanations.
	// Default: 0.3
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingToken sets the embedding API token.
func WithEmbeddingToken(token string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingToken = token
	}
}

// WithPrefixes sets the query and passage prefixes.
func WithPrefixes(query, passage string) ConfigOption {
	return func(c *Config) {
		c.QueryPrefix = query
		c.PassagePrefix = passage
	}
}

// WithGeneratorBackend selects the explanation generator.
func WithGeneratorBackend(backend GeneratorBackend) ConfigOption {
	return func(c *Config) {
		c.GeneratorBackend = backend
	}
}

// WithGeneratorHost sets the OpenAI-compatible generator host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithGeneratorModel sets the generator model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithGeneratorAPIKey sets the generator API key.
func WithGeneratorAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.GeneratorAPIKey = key
	}
}

// WithTemperature sets the generator sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// DefaultConfig returns a Config with sensible defaults: a local
// OpenAI-compatible embedding server and Gemini for explanations.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:    defaultHost,
		EmbeddingModel:   "bge-m3",
		EmbeddingToken:   "none",
		GeneratorBackend: BackendGemini,
		GeneratorHost:    defaultHost,
		GeneratorModel:   "gemini-1.5-flash",
		Temperature:      0.3,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithGeneratorAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.GeneratorHost = normalizeHost(c.GeneratorHost)
	if c.EmbeddingToken == "" {
		c.EmbeddingToken = "none"
	}
	c.GeneratorBackend = GeneratorBackend(strings.ToLower(strings.TrimSpace(string(c.GeneratorBackend))))
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	switch c.GeneratorBackend {
	case BackendGemini:
		if strings.TrimSpace(c.GeneratorAPIKey) == "" {
			return errors.New("ai config: GeneratorAPIKey is required for the gemini backend")
		}
	case BackendOpenAI:
		if c.GeneratorHost == "" {
			return errors.New("ai config: GeneratorHost is required for the openai backend")
		}
	default:
		return fmt.Errorf("ai config: unknown GeneratorBackend %q", c.GeneratorBackend)
	}
	return nil
}
