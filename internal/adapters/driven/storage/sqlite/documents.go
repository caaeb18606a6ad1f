package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, inquiry_id, source_type, file_name, mime_type, content_ref, size, text,
	status, ocr_confidence, chunk_count, vector_count, last_error, created_at, updated_at`

const chunkColumns = `id, document_id, position, start_offset, end_offset, content,
	context_prefix, enriched_content, level, parent_chunk_id, source_type`

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	var ocr sql.NullFloat64
	if doc.OCRConfidence != nil {
		ocr = sql.NullFloat64{Float64: *doc.OCRConfidence, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			inquiry_id = excluded.inquiry_id,
			source_type = excluded.source_type,
			file_name = excluded.file_name,
			mime_type = excluded.mime_type,
			content_ref = excluded.content_ref,
			size = excluded.size,
			text = excluded.text,
			status = excluded.status,
			ocr_confidence = excluded.ocr_confidence,
			chunk_count = excluded.chunk_count,
			vector_count = excluded.vector_count,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, doc.ID, doc.InquiryID, string(doc.SourceType), doc.FileName, doc.MIMEType, doc.ContentRef,
		doc.Size, doc.Text, string(doc.Status), ocr, doc.ChunkCount, doc.VectorCount, doc.LastError,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, notFound(err, "document", id)
	}
	return doc, nil
}

// ListDocuments returns documents matching the filter, newest first.
func (s *documentStore) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	b := sq.Select(documentColumns).From("documents").OrderBy("created_at DESC", "id")
	if filter.InquiryID != "" {
		b = b.Where(sq.Eq{"inquiry_id": filter.InquiryID})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}

	rows, err := s.store.queryRows(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document. Chunks cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ReplaceChunks swaps the chunk set of a document in one transaction.
func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	if len(chunks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (`+chunkColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range chunks {
			level := c.Level
			if level == "" {
				level = domain.ChunkFlat
			}
			if _, err := stmt.ExecContext(ctx, c.ID, documentID, c.Index, c.StartOffset, c.EndOffset,
				c.Content, c.ContextPrefix, c.EnrichedContent, string(level), c.ParentChunkID,
				string(c.SourceType)); err != nil {
				return fmt.Errorf("saving chunk %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	c, err := scanChunk(row)
	if err != nil {
		return nil, notFound(err, "chunk", id)
	}
	return c, nil
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var sourceType, status string
	var ocr sql.NullFloat64

	if err := row.Scan(&doc.ID, &doc.InquiryID, &sourceType, &doc.FileName, &doc.MIMEType,
		&doc.ContentRef, &doc.Size, &doc.Text, &status, &ocr, &doc.ChunkCount, &doc.VectorCount,
		&doc.LastError, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	doc.SourceType = domain.SourceType(sourceType)
	doc.Status = domain.DocumentStatus(status)
	if ocr.Valid {
		v := ocr.Float64
		doc.OCRConfidence = &v
	}
	return &doc, nil
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var c domain.Chunk
	var level, sourceType string

	if err := row.Scan(&c.ID, &c.DocumentID, &c.Index, &c.StartOffset, &c.EndOffset, &c.Content,
		&c.ContextPrefix, &c.EnrichedContent, &level, &c.ParentChunkID, &sourceType); err != nil {
		return nil, err
	}

	c.Level = domain.ChunkLevel(level)
	c.SourceType = domain.SourceType(sourceType)
	return &c, nil
}
