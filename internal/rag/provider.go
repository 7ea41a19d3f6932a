package rag

import "context"

// Embedder maps text to a fixed-length numeric vector. Implementations
// report their dimensionality and whether the backing model is currently
// reachable; when unavailable, Embed returns a nil vector and no error so
// processing and retrieval can degrade gracefully.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Available() bool
}

// BatchEmbedder is implemented by embedders that can vectorize several
// texts in one round trip. Results are in input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from an assembled context.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Available() bool
}
