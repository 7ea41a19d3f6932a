package model

import (
	"encoding/json"
	"time"
)

// Passage is one retrieval unit cut from a paper's normalized text.
// Embedding is stored as a JSON array of float32 for portability; it is
// empty when the embedding provider was unavailable at processing time.
type Passage struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	PaperID             uint      `gorm:"not null;index:idx_passage_paper_idx,unique" json:"paper_id"`
	Idx                 int       `gorm:"not null;index:idx_passage_paper_idx,unique" json:"index"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	Embedding           string    `gorm:"type:text" json:"-"`
	Size                int       `gorm:"not null" json:"size"`
	OverlapWithPrevious int       `gorm:"not null" json:"overlap_with_previous"`
	SpanStart           int       `gorm:"not null" json:"span_start"`
	SpanEnd             int       `gorm:"not null" json:"span_end"`
	CreatedAt           time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; nil when absent or unparsable.
func (p *Passage) EmbeddingVector() []float32 {
	if p.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(p.Embedding), &v)
	return v
}

// SetEmbedding stores vec as JSON; a nil or empty vector leaves the column empty.
func (p *Passage) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		p.Embedding = ""
		return
	}
	b, _ := json.Marshal(vec)
	p.Embedding = string(b)
}
