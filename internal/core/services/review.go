package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

const mockReviewSummary = "Automated review unavailable; default pass applied."

// Ensure MockReviewer implements the interface.
var _ driven.Reviewer = (*MockReviewer)(nil)

// MockReviewer is the deterministic fallback reviewer: PASS with the default score.
type MockReviewer struct{}

// Name returns the reviewer identity.
func (MockReviewer) Name() string { return domain.MockReviewerName }

// Review returns a PASS result with no issues.
func (MockReviewer) Review(_ context.Context, draft *domain.AnswerDraft) (*domain.AIReviewResult, error) {
	return &domain.AIReviewResult{
		AnswerID:  draft.ID,
		InquiryID: draft.InquiryID,
		Reviewer:  domain.MockReviewerName,
		Decision:  domain.ReviewPass,
		Score:     domain.DefaultReviewScore,
		Summary:   mockReviewSummary,
	}, nil
}

// ReviewGate tries each configured reviewer in order and falls back to
// MockReviewer. It never fails.
type ReviewGate struct {
	reviewers []driven.Reviewer
	fallback  driven.Reviewer
	now       func() time.Time
}

// NewReviewGate creates a review gate. Nil reviewers are skipped.
func NewReviewGate(reviewers ...driven.Reviewer) *ReviewGate {
	g := &ReviewGate{fallback: MockReviewer{}, now: time.Now}
	for _, r := range reviewers {
		if r != nil {
			g.reviewers = append(g.reviewers, r)
		}
	}
	return g
}

// Reviewers returns the names of the configured reviewers, fallback last.
func (g *ReviewGate) Reviewers() []string {
	names := make([]string, 0, len(g.reviewers)+1)
	for _, r := range g.reviewers {
		names = append(names, r.Name())
	}
	return append(names, g.fallback.Name())
}

// Review obtains a normalised review result for draft.
func (g *ReviewGate) Review(ctx context.Context, draft *domain.AnswerDraft) *domain.AIReviewResult {
	for _, r := range g.reviewers {
		res, err := r.Review(ctx, draft)
		if err != nil {
			logger.Warn("reviewer %s failed, trying next: %v", r.Name(), err)
			continue
		}
		if res == nil {
			continue
		}
		if res.Reviewer == "" {
			res.Reviewer = r.Name()
		}
		return g.normalise(draft, res)
	}
	res, _ := g.fallback.Review(ctx, draft)
	return g.normalise(draft, res)
}

func (g *ReviewGate) normalise(draft *domain.AnswerDraft, res *domain.AIReviewResult) *domain.AIReviewResult {
	res.ID = uuid.New().String()
	res.AnswerID = draft.ID
	res.InquiryID = draft.InquiryID
	res.Decision = domain.ParseReviewDecision(strings.ToUpper(strings.TrimSpace(string(res.Decision))))
	res.Score = domain.ClampScore(res.Score)
	res.RevisedDraft = strings.TrimSpace(res.RevisedDraft)
	res.CreatedAt = g.now()
	return res
}
