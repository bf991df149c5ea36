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

package openai

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/scout/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// The generator may be supplied from another backend with WithGenerator.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	generator ai.Generator
	logger    *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider) error

// WithGenerator uses generator instead of an OpenAI-compatible one.
// If generator implements io.Closer it is closed with the provider.
func WithGenerator(generator ai.Generator) Option {
	return func(p *Provider) error {
		if generator == nil {
			return errors.New("generator cannot be nil")
		}
		p.generator = generator
		return nil
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. Without WithGenerator
// the config must select the openai generator backend.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:   config,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.generator == nil {
		if config.GeneratorBackend != ai.BackendOpenAI {
			return nil, errors.New("openai provider: a generator is required for backend " + string(config.GeneratorBackend))
		}
		generator, err := newGenerator(config)
		if err != nil {
			return nil, err
		}
		p.generator = generator
	}

	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the explanation generator.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases resources held by the provider.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	if closer, ok := p.generator.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
