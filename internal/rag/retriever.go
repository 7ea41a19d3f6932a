package rag

import (
	"math"
	"sort"

	"scholarchat/internal/model"
)

// ScoredPassage pairs a passage with its similarity to the query.
type ScoredPassage struct {
	Passage model.Passage
	Score   float64
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), or exactly 0 when either
// vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every vectorized passage against the query vector and returns
// the topK best, sorted by score descending with ties broken by ascending
// passage index. Passages without a stored vector do not participate. A nil
// query vector yields no results.
func Rank(query []float32, passages []model.Passage, topK int) []ScoredPassage {
	if len(query) == 0 {
		return nil
	}

	var scored []ScoredPassage
	for _, p := range passages {
		vec := p.EmbeddingVector()
		if len(vec) == 0 {
			continue
		}
		scored = append(scored, ScoredPassage{Passage: p, Score: CosineSimilarity(query, vec)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Passage.Idx < scored[j].Passage.Idx
	})

	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
