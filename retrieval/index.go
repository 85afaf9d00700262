package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

const (
	defaultTopK = 5
)

// VectorIndex is an in-memory similarity index over embedded documents.
// It embeds documents on Index and brute-force scans with cosine
// similarity on Retrieve. Suitable for modest corpora; all methods are
// safe for concurrent use.
type VectorIndex struct {
	embedder Embedder
	topK     int
	minScore float32

	mu   sync.RWMutex
	docs map[string]Document
}

// IndexOption configures a VectorIndex.
type IndexOption func(*VectorIndex)

// WithTopK sets the number of documents Retrieve returns (default 5).
func WithTopK(k int) IndexOption {
	return func(v *VectorIndex) {
		if k > 0 {
			v.topK = k
		}
	}
}

// WithMinScore excludes results scoring below the threshold.
func WithMinScore(score float32) IndexOption {
	return func(v *VectorIndex) { v.minScore = score }
}

// NewVectorIndex creates a VectorIndex using the given embedder.
func NewVectorIndex(embedder Embedder, opts ...IndexOption) *VectorIndex {
	v := &VectorIndex{
		embedder: embedder,
		topK:     defaultTopK,
		docs:     make(map[string]Document),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Index embeds the documents that lack an embedding and stores them.
// Documents with an id already present are overwritten.
func (v *VectorIndex) Index(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var missing []int
	var texts []string
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document at index %d has empty id", i)
		}
		if len(d.Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, d.Content)
		}
	}

	if len(texts) > 0 {
		vectors, err := v.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed documents: %w", err)
		}
		for j, i := range missing {
			docs[i].Embedding = vectors[j]
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, d := range docs {
		v.docs[d.ID] = d.clone()
	}
	return nil
}

// Retrieve embeds the query and returns up to topK documents ordered by
// descending cosine similarity.
func (v *VectorIndex) Retrieve(ctx context.Context, query string) ([]Document, error) {
	queryVec, err := v.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	v.mu.RLock()
	scored := make([]Document, 0, len(v.docs))
	for _, d := range v.docs {
		score := cosineSimilarity(queryVec, d.Embedding)
		if score < v.minScore {
			continue
		}
		result := d.clone()
		result.Score = score
		scored = append(scored, result)
	}
	v.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if len(scored) > v.topK {
		scored = scored[:v.topK]
	}
	return scored, nil
}

// Len returns the number of indexed documents.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.docs)
}

func cosineSimilarity(a, b []float32) float32 {
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
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
