package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// InquiryStore persists customer inquiries.
type InquiryStore interface {
	SaveInquiry(ctx context.Context, inquiry *domain.Inquiry) error

	// GetInquiry returns domain.ErrNotFound if the inquiry does not exist.
	GetInquiry(ctx context.Context, id string) (*domain.Inquiry, error)

	// ListInquiries returns inquiries newest first. A limit of 0 means no limit.
	ListInquiries(ctx context.Context, limit int) ([]domain.Inquiry, error)
}

// EvidenceStore is the append-only retrieval audit trail.
type EvidenceStore interface {
	AppendEvidence(ctx context.Context, rows []domain.RetrievalEvidence) error

	// ListEvidence returns rows for an inquiry in insertion order.
	ListEvidence(ctx context.Context, inquiryID string) ([]domain.RetrievalEvidence, error)
}
