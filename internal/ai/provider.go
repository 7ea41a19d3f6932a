package ai

import (
	"context"
	"errors"
)

// EmbeddingProvider adapts the OpenAI-compatible client to the embedding
// capability the RAG core consumes. When not configured it reports
// unavailable and Embed returns a nil vector without error, so document
// processing and retrieval degrade instead of failing.
type EmbeddingProvider struct {
	client *Client
	cfg    EmbeddingConfig
	dim    int
}

func NewEmbeddingProvider(client *Client, cfg EmbeddingConfig, dimension int) *EmbeddingProvider {
	return &EmbeddingProvider{client: client, cfg: cfg, dim: dimension}
}

func (p *EmbeddingProvider) Available() bool {
	return p.cfg.BaseURL != "" && p.cfg.APIKey != "" && p.cfg.Model != ""
}

func (p *EmbeddingProvider) Dimension() int {
	return p.dim
}

func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if !p.Available() {
		return nil, nil
	}
	return p.client.Embed(ctx, p.cfg, text)
}

// EmbedBatch vectorizes several texts in one round trip.
func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !p.Available() {
		return make([][]float32, len(texts)), nil
	}
	return p.client.EmbedBatch(ctx, p.cfg, texts)
}

// AnswerProvider adapts chat completion to the answer-generator capability.
type AnswerProvider struct {
	client *Client
	cfg    ChatConfig
}

func NewAnswerProvider(client *Client, cfg ChatConfig) *AnswerProvider {
	return &AnswerProvider{client: client, cfg: cfg}
}

func (p *AnswerProvider) Available() bool {
	return p.cfg.BaseURL != "" && p.cfg.APIKey != "" && p.cfg.Model != ""
}

func (p *AnswerProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !p.Available() {
		return "", errors.New("answer generator is not configured")
	}
	return p.client.Complete(ctx, p.cfg, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}
