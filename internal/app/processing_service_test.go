package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureProcessedRunsPipelineOnce(t *testing.T) {
	passages := newFakePassageStore()
	extractor := &fakeExtractor{text: strings.Repeat("alpha beta gamma. ", 100)}
	embedder := &fakeBatchEmbedder{fakeEmbedder: fakeEmbedder{available: true}}
	svc := NewProcessingService(passages, extractor, embedder, 500, 100, nil)

	paper := paperFixture(1, "Test Paper")

	processed, err := svc.EnsureProcessed(context.Background(), paper)
	require.NoError(t, err)
	require.True(t, processed)
	require.Equal(t, 1, extractor.calls)

	stored, err := passages.ListByPaperID(1)
	require.NoError(t, err)
	require.NotEmpty(t, stored)
	for i, p := range stored {
		require.Equal(t, i, p.Idx)
		require.NotEmpty(t, p.Content)
		require.NotEmpty(t, p.EmbeddingVector())
	}

	// Second call must not re-extract, re-chunk, or re-embed.
	embedCalls := embedder.calls
	processed, err = svc.EnsureProcessed(context.Background(), paper)
	require.NoError(t, err)
	require.False(t, processed)
	require.Equal(t, 1, extractor.calls)
	require.Equal(t, embedCalls, embedder.calls)
}

func TestEnsureProcessedBatchesEmbeddings(t *testing.T) {
	passages := newFakePassageStore()
	// 2400 chars, size 100, no boundaries: 30 fragments, so three full
	// batches of ten.
	extractor := &fakeExtractor{text: strings.Repeat("x", 2400)}
	embedder := &fakeBatchEmbedder{fakeEmbedder: fakeEmbedder{available: true}}
	svc := NewProcessingService(passages, extractor, embedder, 100, 20, nil)

	_, err := svc.EnsureProcessed(context.Background(), paperFixture(1, "Batched"))
	require.NoError(t, err)
	for _, size := range embedder.batchSizes {
		require.LessOrEqual(t, size, embeddingBatchSize)
	}
}

func TestEnsureProcessedExtractFailure(t *testing.T) {
	passages := newFakePassageStore()
	extractor := &fakeExtractor{err: errors.New("corrupt pdf")}
	svc := NewProcessingService(passages, extractor, &fakeEmbedder{}, 500, 100, nil)

	_, err := svc.EnsureProcessed(context.Background(), paperFixture(1, "Broken"))
	require.ErrorIs(t, err, ErrProcessingFailed)

	exists, err := passages.ExistsByPaperID(1)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestEnsureProcessedEmptyText(t *testing.T) {
	passages := newFakePassageStore()
	extractor := &fakeExtractor{text: "   \n\t  "}
	svc := NewProcessingService(passages, extractor, &fakeEmbedder{}, 500, 100, nil)

	_, err := svc.EnsureProcessed(context.Background(), paperFixture(1, "Empty"))
	require.ErrorIs(t, err, ErrProcessingFailed)
}

func TestEnsureProcessedUnavailableEmbedderStoresText(t *testing.T) {
	passages := newFakePassageStore()
	extractor := &fakeExtractor{text: strings.Repeat("content words here. ", 50)}
	embedder := &fakeEmbedder{available: false}
	svc := NewProcessingService(passages, extractor, embedder, 300, 50, nil)

	processed, err := svc.EnsureProcessed(context.Background(), paperFixture(1, "No Vectors"))
	require.NoError(t, err)
	require.True(t, processed)
	require.Zero(t, embedder.calls)

	stored, err := passages.ListByPaperID(1)
	require.NoError(t, err)
	require.NotEmpty(t, stored)
	for _, p := range stored {
		require.Empty(t, p.EmbeddingVector())
	}
}
