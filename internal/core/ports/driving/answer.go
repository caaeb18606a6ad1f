package driving

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// ComposeRequest asks for a new draft.
type ComposeRequest struct {
	InquiryID string

	// Question defaults to the inquiry's question when empty.
	Question string
	Tone     domain.Tone
	Channel  domain.Channel
	TopK     int
}

// HumanReview is a manual review of a draft.
type HumanReview struct {
	Reviewer string
	Score    int
	Comment  string
}

// AnswerService drives an answer draft through its lifecycle.
type AnswerService interface {
	// Compose verifies the question and creates a new DRAFT version.
	Compose(ctx context.Context, req ComposeRequest) (*domain.AnswerDraft, error)

	Get(ctx context.Context, answerID string) (*domain.AnswerDraft, error)

	// List returns every version for an inquiry, newest first.
	List(ctx context.Context, inquiryID string) ([]domain.AnswerDraft, error)

	// Queue returns drafts awaiting a human decision (REVIEWED) or dispatch
	// (APPROVED), oldest first.
	Queue(ctx context.Context) ([]domain.AnswerDraft, error)

	// Review runs the automated reviewer and moves the draft to REVIEWED.
	Review(ctx context.Context, answerID string) (*domain.AIReviewResult, error)

	// MarkReviewed records a human review and moves the draft to REVIEWED.
	MarkReviewed(ctx context.Context, answerID string, review HumanReview) (*domain.AnswerDraft, error)

	// Reviews returns the review history of a draft.
	Reviews(ctx context.Context, answerID string) ([]domain.AIReviewResult, error)

	// Approve records a human approval: REVIEWED -> APPROVED.
	Approve(ctx context.Context, answerID, approver, comment string) (*domain.AnswerDraft, error)

	// Reject records a human rejection: back to DRAFT.
	Reject(ctx context.Context, answerID, approver, comment string) (*domain.AnswerDraft, error)

	// AutoApprove evaluates the approval gates against the latest review.
	AutoApprove(ctx context.Context, answerID string) (*domain.ApprovalDecision, error)

	// Revise creates a new DRAFT version from the latest review's revised text.
	Revise(ctx context.Context, answerID string) (*domain.AnswerDraft, error)
}

// SendRequest asks for an APPROVED draft to be dispatched.
type SendRequest struct {
	AnswerID string

	// Channel overrides the draft's channel when set.
	Channel domain.Channel

	// SendRequestID is the caller's idempotency token.
	SendRequestID string
}

// DispatchService delivers approved drafts.
type DispatchService interface {
	// Send dispatches the draft once per (answer, send-request id).
	Send(ctx context.Context, req SendRequest) (*domain.SendResult, error)

	// Attempts returns the dispatch log of a draft.
	Attempts(ctx context.Context, answerID string) ([]domain.SendAttempt, error)
}
