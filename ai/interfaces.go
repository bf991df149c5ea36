package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Queries and passages are encoded separately because asymmetric retrieval
// models embed the two sides differently.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedQuery generates the embedding of a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates passage embeddings for documents being indexed.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate returns the model's text response to prompt.
	// An empty response is an error.
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the explanation generator.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
