package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// Reviewer produces an automated quality review of a draft.
type Reviewer interface {
	// Name identifies the reviewer; it is recorded on every review row.
	Name() string

	// Review returns Decision, Score, Summary, RevisedDraft and Issues.
	// Identity and timestamps are filled in by the caller.
	Review(ctx context.Context, draft *domain.AnswerDraft) (*domain.AIReviewResult, error)
}
