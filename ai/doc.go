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


// Package ai provides abstractions for AI services used in scout.
//
// The package defines two services:
//
//   - Embedder: encodes search queries and indexed passages as vectors
//   - Generator: writes the natural-language justification for ranked candidates
//
// AIProvider bundles both for initialization and shutdown.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible embedding and chat APIs (Ollama, vLLM, OpenAI)
//   - ai/gemini: Google Gemini generator
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in the implementation packages return interface types.
// Mock constructors return concrete types so tests can inject behavior and
// inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithGeneratorAPIKey(os.Getenv("GEMINI_API_KEY")))
//	generator, err := gemini.NewGenerator(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := openai.NewProvider(config, openai.WithGenerator(generator))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedQuery(ctx, "welder with hot work card")
package ai
