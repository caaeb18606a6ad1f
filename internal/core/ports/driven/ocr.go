package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// OCRService extracts text from scanned documents.
// Optional: without it, short extractions are accepted as parsed text.
type OCRService interface {
	// Extract returns the recognised text and a confidence in [0,1].
	Extract(ctx context.Context, file *domain.RawFile) (OCRResult, error)
}

// OCRResult is the output of an OCR call.
type OCRResult struct {
	Text       string
	Confidence float64
}
