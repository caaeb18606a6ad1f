// Package pgvector provides a VectorIndex stored in a Postgres vector column.
// It shares the bun database opened by the postgres storage adapter.
package pgvector

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Index)(nil)

// TableName is the table holding chunk vectors.
const TableName = "chunk_vectors"

type vectorRow struct {
	bun.BaseModel `bun:"table:chunk_vectors"`

	ChunkID    string          `bun:"chunk_id,pk"`
	DocumentID string          `bun:"document_id,notnull"`
	Content    string          `bun:"content,notnull"`
	SourceType string          `bun:"source_type,notnull"`
	Embedding  pgvector.Vector `bun:"embedding,type:vector"`
}

type hitRow struct {
	ChunkID    string  `bun:"chunk_id"`
	DocumentID string  `bun:"document_id"`
	Content    string  `bun:"content"`
	SourceType string  `bun:"source_type"`
	Score      float64 `bun:"score"`
}

// Index runs cosine-distance queries through bun.
type Index struct {
	db   *bun.DB
	dims int
}

// New prepares the extension and table. dims fixes the column width and
// enables the HNSW index; zero leaves the column unconstrained.
func New(ctx context.Context, db *bun.DB, dims int) (*Index, error) {
	for _, stmt := range SchemaStatements(dims) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("prepare pgvector schema: %w", err)
		}
	}
	return &Index{db: db, dims: dims}, nil
}

// SchemaStatements returns the DDL run by New.
func SchemaStatements(dims int) []string {
	column := "vector"
	if dims > 0 {
		column = fmt.Sprintf("vector(%d)", dims)
	}
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	chunk_id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	content TEXT NOT NULL,
	source_type TEXT NOT NULL,
	embedding %s NOT NULL
)`, TableName, column),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_document ON %s (document_id)", TableName, TableName),
	}
	if dims > 0 {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)",
			TableName, TableName))
	}
	return stmts
}

// Upsert inserts the record or replaces the row with the same chunk ID.
func (i *Index) Upsert(ctx context.Context, record driven.VectorRecord) error {
	if record.ChunkID == "" || len(record.Embedding) == 0 {
		return fmt.Errorf("upsert vector: %w", domain.ErrInvalidInput)
	}
	if i.dims > 0 && len(record.Embedding) != i.dims {
		return fmt.Errorf("upsert vector: dimension %d, want %d: %w",
			len(record.Embedding), i.dims, domain.ErrInvalidInput)
	}

	row := &vectorRow{
		ChunkID:    record.ChunkID,
		DocumentID: record.DocumentID,
		Content:    record.Content,
		SourceType: string(record.SourceType),
		Embedding:  pgvector.NewVector(record.Embedding),
	}
	_, err := i.db.NewInsert().
		Model(row).
		On("CONFLICT (chunk_id) DO UPDATE").
		Set("document_id = EXCLUDED.document_id").
		Set("content = EXCLUDED.content").
		Set("source_type = EXCLUDED.source_type").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert vector %s: %w", record.ChunkID, err)
	}
	return nil
}

// Search returns up to topK hits ordered by descending cosine similarity.
func (i *Index) Search(ctx context.Context, query []float32, topK int) ([]driven.VectorHit, error) {
	if topK <= 0 || len(query) == 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(query)
	var rows []hitRow
	err := i.db.NewSelect().
		TableExpr(TableName).
		Column("chunk_id", "document_id", "content", "source_type").
		ColumnExpr("1 - (embedding <=> ?::vector) AS score", vec).
		OrderExpr("embedding <=> ?::vector", vec).
		Limit(topK).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("query pgvector: %w", err)
	}
	return toHits(rows), nil
}

// DeleteByDocumentID removes every record of the document.
func (i *Index) DeleteByDocumentID(ctx context.Context, documentID string) error {
	_, err := i.db.NewDelete().
		TableExpr(TableName).
		Where("document_id = ?", documentID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete vectors of %s: %w", documentID, err)
	}
	return nil
}

// Close is a no-op; the bun DB is owned by the postgres store.
func (i *Index) Close() error {
	return nil
}

func toHits(rows []hitRow) []driven.VectorHit {
	hits := make([]driven.VectorHit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Content:    r.Content,
			SourceType: domain.SourceType(r.SourceType),
			Score:      r.Score,
		})
	}
	return hits
}
