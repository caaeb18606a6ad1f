package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// UploadRequest describes a file to register as a document.
type UploadRequest struct {
	// InquiryID attaches the document to an inquiry. Empty means knowledge base.
	InquiryID string
	FileName  string
	MIMEType  string
	Content   io.Reader
}

// DocumentService manages uploaded documents.
type DocumentService interface {
	// Upload stores the raw bytes and creates an UPLOADED document.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents matching the filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Chunks returns a document's chunks ordered by index.
	Chunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// Delete removes a document, its chunks, its vectors (best-effort) and its content.
	Delete(ctx context.Context, id string) error
}

// IngestionService runs the ingestion pipeline.
type IngestionService interface {
	// Ingest parses, chunks, enriches and indexes a document.
	// Pipeline failures are recorded on the document (FAILED) and are not
	// returned as errors; errors mean the run could not start.
	Ingest(ctx context.Context, documentID string) (*domain.Document, error)

	// ForceIngest restarts a document even if a stored in-flight status
	// has not yet expired.
	ForceIngest(ctx context.Context, documentID string) (*domain.Document, error)
}
