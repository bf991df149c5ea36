package indexer

import "errors"

var (
	// ErrIndexRequired is returned when no vector index is given.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrEmbedderRequired is returned when no embedder is given.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidInput is returned when a source file cannot be decoded.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingMismatch is returned when the embedder returns a different
	// number of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)
