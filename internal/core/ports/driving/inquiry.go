package driving

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// CreateInquiryRequest holds the fields of a new inquiry.
type CreateInquiryRequest struct {
	CustomerName    string
	CustomerContact string
	Subject         string
	Question        string
	Channel         domain.Channel
}

// InquiryService manages customer inquiries.
type InquiryService interface {
	Create(ctx context.Context, req CreateInquiryRequest) (*domain.Inquiry, error)
	Get(ctx context.Context, id string) (*domain.Inquiry, error)
	List(ctx context.Context, limit int) ([]domain.Inquiry, error)
}

// VerificationService retrieves evidence and judges it.
type VerificationService interface {
	// RetrieveAndVerify embeds the question, logs retrieval evidence and
	// returns the verdict. Empty evidence yields CONDITIONAL, never an error.
	RetrieveAndVerify(ctx context.Context, inquiryID, question string, topK int) (*domain.VerificationResult, error)

	// Evidence returns the retrieval audit trail of an inquiry.
	Evidence(ctx context.Context, inquiryID string) ([]domain.RetrievalEvidence, error)
}
