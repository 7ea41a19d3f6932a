package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scholarchat/internal/model"
	"scholarchat/internal/rag"
)

// embeddingBatchSize caps one embedding round trip; most OpenAI-compatible
// backends reject larger batches.
const embeddingBatchSize = 10

// ProcessingService turns an uploaded paper into stored, embedded passages.
// Processing is idempotent: a paper whose passages already exist is never
// re-extracted, re-chunked, or re-embedded.
type ProcessingService struct {
	passages  PassageStore
	extractor TextExtractor
	embedder  rag.Embedder
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

func NewProcessingService(
	passages PassageStore,
	extractor TextExtractor,
	embedder rag.Embedder,
	chunkSize, overlap int,
	logger *zap.Logger,
) *ProcessingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessingService{
		passages:  passages,
		extractor: extractor,
		embedder:  embedder,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger,
	}
}

// EnsureProcessed runs the extract-normalize-chunk-embed pipeline for paper
// unless its passages are already stored. It reports whether this call did
// the processing. Concurrent callers may both run the pipeline; the passage
// store guarantees only one batch is persisted.
func (s *ProcessingService) EnsureProcessed(ctx context.Context, paper *model.Paper) (bool, error) {
	if paper == nil {
		return false, ErrInvalidInput
	}

	exists, err := s.passages.ExistsByPaperID(paper.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	text, err := s.extractor.Extract(paper.FilePath)
	if err != nil {
		return false, fmt.Errorf("%w: extract %q: %v", ErrProcessingFailed, paper.FileName, err)
	}

	normalized := rag.Normalize(text)
	fragments := rag.Chunk(normalized, s.chunkSize, s.overlap)
	if len(fragments) == 0 {
		return false, fmt.Errorf("%w: %q contains no extractable text", ErrProcessingFailed, paper.FileName)
	}

	vectors := s.embedFragments(ctx, fragments)

	passages := make([]model.Passage, 0, len(fragments))
	for i, f := range fragments {
		p := model.Passage{
			PaperID:             paper.ID,
			Idx:                 f.Index,
			Content:             f.Content,
			Size:                f.Size,
			OverlapWithPrevious: f.Overlap,
			SpanStart:           f.Start,
			SpanEnd:             f.End,
		}
		p.SetEmbedding(vectors[i])
		passages = append(passages, p)
	}

	inserted, err := s.passages.CreateBatchIfAbsent(paper.ID, passages)
	if err != nil {
		return false, err
	}
	if inserted {
		s.logger.Info("paper processed",
			zap.Uint("paper_id", paper.ID),
			zap.Int("passages", len(passages)),
		)
	}
	return inserted, nil
}

// embedFragments vectorizes every fragment, batching when the embedder
// supports it. Embedding failures degrade to passages without vectors; the
// text itself is always persisted.
func (s *ProcessingService) embedFragments(ctx context.Context, fragments []rag.Fragment) [][]float32 {
	vectors := make([][]float32, len(fragments))
	if s.embedder == nil || !s.embedder.Available() {
		return vectors
	}

	if batcher, ok := s.embedder.(rag.BatchEmbedder); ok {
		for start := 0; start < len(fragments); start += embeddingBatchSize {
			end := start + embeddingBatchSize
			if end > len(fragments) {
				end = len(fragments)
			}
			texts := make([]string, 0, end-start)
			for _, f := range fragments[start:end] {
				texts = append(texts, f.Content)
			}
			batch, err := batcher.EmbedBatch(ctx, texts)
			if err != nil {
				s.logger.Warn("embedding batch failed, storing passages without vectors",
					zap.Int("from", start), zap.Int("to", end), zap.Error(err))
				continue
			}
			copy(vectors[start:end], batch)
		}
		return vectors
	}

	for i, f := range fragments {
		vec, err := s.embedder.Embed(ctx, f.Content)
		if err != nil {
			s.logger.Warn("embedding failed, storing passage without vector",
				zap.Int("index", f.Index), zap.Error(err))
			continue
		}
		vectors[i] = vec
	}
	return vectors
}
