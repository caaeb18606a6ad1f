package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// TextExtractor turns raw file bytes into plain text.
// Each extractor handles specific MIME types and file extensions.
type TextExtractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns file extensions (with dot) this extractor handles.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors return 50-89, the fallback returns 1-9.
	Priority() int

	// Extract returns the text content of file.
	Extract(ctx context.Context, file *domain.RawFile) (string, error)
}

// ExtractorRegistry selects the extractor for a file.
type ExtractorRegistry interface {
	// Extract uses the best matching extractor.
	// Selection: MIME type, then extension, then fallback.
	Extract(ctx context.Context, file *domain.RawFile) (string, error)

	// Register adds an extractor.
	Register(extractor TextExtractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
