// Package memory provides an in-memory VectorIndex using brute-force cosine similarity.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Index)(nil)

// Index keeps records keyed by chunk ID.
type Index struct {
	mu      sync.RWMutex
	records map[string]driven.VectorRecord
}

// New creates an empty index.
func New() *Index {
	return &Index{records: make(map[string]driven.VectorRecord)}
}

// Upsert stores or replaces the record for its chunk ID.
func (i *Index) Upsert(_ context.Context, record driven.VectorRecord) error {
	if record.ChunkID == "" || len(record.Embedding) == 0 {
		return fmt.Errorf("upsert vector: %w", domain.ErrInvalidInput)
	}

	emb := make([]float32, len(record.Embedding))
	copy(emb, record.Embedding)
	record.Embedding = emb

	i.mu.Lock()
	defer i.mu.Unlock()
	i.records[record.ChunkID] = record
	return nil
}

// Search returns up to topK hits ordered by descending cosine similarity.
// Records whose dimension differs from the query are skipped.
func (i *Index) Search(_ context.Context, query []float32, topK int) ([]driven.VectorHit, error) {
	if topK <= 0 || len(query) == 0 {
		return nil, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(i.records))
	for _, r := range i.records {
		if len(r.Embedding) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Content:    r.Content,
			SourceType: r.SourceType,
			Score:      Cosine(query, r.Embedding),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score == hits[b].Score {
			return hits[a].ChunkID < hits[b].ChunkID
		}
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteByDocumentID removes every record of the document.
func (i *Index) DeleteByDocumentID(_ context.Context, documentID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for id, r := range i.records {
		if r.DocumentID == documentID {
			delete(i.records, id)
		}
	}
	return nil
}

// Len returns the number of stored records.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

// Close is a no-op.
func (i *Index) Close() error {
	return nil
}

// Cosine returns the cosine similarity of two equal-length vectors.
// A zero vector scores 0.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for k := range a {
		x, y := float64(a[k]), float64(b[k])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
