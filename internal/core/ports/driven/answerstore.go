package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// AnswerStore persists answer drafts. Every version is kept.
type AnswerStore interface {
	// SaveAnswer inserts or updates a draft.
	SaveAnswer(ctx context.Context, answer *domain.AnswerDraft) error

	// MarkAnswerSent saves a SENT draft only if the stored row is still
	// APPROVED, otherwise it returns domain.ErrNotApproved.
	MarkAnswerSent(ctx context.Context, answer *domain.AnswerDraft) error

	// GetAnswer returns domain.ErrNotFound if the draft does not exist.
	GetAnswer(ctx context.Context, id string) (*domain.AnswerDraft, error)

	// ListAnswers returns every version for an inquiry, newest first.
	ListAnswers(ctx context.Context, inquiryID string) ([]domain.AnswerDraft, error)

	// ListAnswersByStatus returns drafts in any of the statuses, oldest first.
	ListAnswersByStatus(ctx context.Context, statuses ...domain.AnswerStatus) ([]domain.AnswerDraft, error)

	// NextVersion reserves the next version number for an inquiry.
	NextVersion(ctx context.Context, inquiryID string) (int, error)
}

// ReviewStore is the append-only review history.
type ReviewStore interface {
	AppendReview(ctx context.Context, review *domain.AIReviewResult) error

	// ListReviews returns reviews for an answer, oldest first.
	ListReviews(ctx context.Context, answerID string) ([]domain.AIReviewResult, error)

	// LatestReview returns domain.ErrNotFound when the answer was never reviewed.
	LatestReview(ctx context.Context, answerID string) (*domain.AIReviewResult, error)
}

// SendAttemptStore is the append-only dispatch log.
type SendAttemptStore interface {
	AppendSendAttempt(ctx context.Context, attempt *domain.SendAttempt) error

	// FindSent returns the SENT attempt for (answerID, sendRequestID),
	// or domain.ErrNotFound.
	FindSent(ctx context.Context, answerID, sendRequestID string) (*domain.SendAttempt, error)

	// ListSendAttempts returns attempts for an answer, oldest first.
	ListSendAttempts(ctx context.Context, answerID string) ([]domain.SendAttempt, error)
}
