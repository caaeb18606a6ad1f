package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// VectorIndex stores chunk vectors and serves nearest-neighbour search.
type VectorIndex interface {
	// Upsert stores a record. Idempotent per chunk ID.
	Upsert(ctx context.Context, record VectorRecord) error

	// Search returns up to topK hits ordered by descending score.
	Search(ctx context.Context, query []float32, topK int) ([]VectorHit, error)

	// DeleteByDocumentID removes every record of a document.
	DeleteByDocumentID(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

// VectorRecord is one indexed chunk.
type VectorRecord struct {
	ChunkID    string
	DocumentID string
	Embedding  []float32
	Content    string
	SourceType domain.SourceType
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	ChunkID    string
	DocumentID string
	Content    string
	SourceType domain.SourceType

	// Score is the cosine similarity.
	Score float64
}
