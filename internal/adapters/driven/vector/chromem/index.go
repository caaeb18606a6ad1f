// Package chromem provides a VectorIndex backed by the embedded chromem-go database.
package chromem

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Index)(nil)

const (
	// DefaultCollection is the collection holding chunk vectors.
	DefaultCollection = "answerdesk_chunks"

	metaDocumentID = "document_id"
	metaSourceType = "source_type"
)

// Index wraps one chromem collection.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// New opens the index. A non-empty path persists the collection under that
// directory; an empty path keeps it in memory.
func New(path string) (*Index, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db %s: %w", path, err)
		}
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	c, err := db.GetOrCreateCollection(DefaultCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}

	logger.Debug("chromem index %q opened with %d records", DefaultCollection, c.Count())
	return &Index{db: db, collection: c}, nil
}

// Upsert stores the record. chromem overwrites documents with the same ID.
func (i *Index) Upsert(ctx context.Context, record driven.VectorRecord) error {
	if record.ChunkID == "" || len(record.Embedding) == 0 {
		return fmt.Errorf("upsert vector: %w", domain.ErrInvalidInput)
	}

	emb := make([]float32, len(record.Embedding))
	copy(emb, record.Embedding)

	doc := chromem.Document{
		ID:      record.ChunkID,
		Content: record.Content,
		Metadata: map[string]string{
			metaDocumentID: record.DocumentID,
			metaSourceType: string(record.SourceType),
		},
		Embedding: emb,
	}
	if err := i.collection.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return fmt.Errorf("upsert vector %s: %w", record.ChunkID, err)
	}
	return nil
}

// Search returns up to topK hits ordered by descending cosine similarity.
func (i *Index) Search(ctx context.Context, query []float32, topK int) ([]driven.VectorHit, error) {
	if topK <= 0 || len(query) == 0 {
		return nil, nil
	}

	// chromem rejects NResults above the collection size.
	n := min(topK, i.collection.Count())
	if n == 0 {
		return nil, nil
	}

	q := make([]float32, len(query))
	copy(q, query)

	results, err := i.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: q,
		NResults:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("query chromem: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.ID,
			DocumentID: r.Metadata[metaDocumentID],
			Content:    r.Content,
			SourceType: domain.SourceType(r.Metadata[metaSourceType]),
			Score:      float64(r.Similarity),
		})
	}
	return hits, nil
}

// DeleteByDocumentID removes every record of the document.
func (i *Index) DeleteByDocumentID(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("delete vectors: %w", domain.ErrInvalidInput)
	}
	if i.collection.Count() == 0 {
		return nil
	}
	if err := i.collection.Delete(ctx, map[string]string{metaDocumentID: documentID}, nil); err != nil {
		return fmt.Errorf("delete vectors of %s: %w", documentID, err)
	}
	return nil
}

// Count returns the number of stored records.
func (i *Index) Count() int {
	return i.collection.Count()
}

// Close is a no-op; persistent writes happen on every change.
func (i *Index) Close() error {
	return nil
}
