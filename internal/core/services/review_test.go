package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func reviewDraft() *domain.AnswerDraft {
	return &domain.AnswerDraft{ID: "ans-1", InquiryID: "inq-1", Status: domain.AnswerDraftStatus}
}

func TestReviewGate_NoReviewerFallsBackToMock(t *testing.T) {
	gate := NewReviewGate(nil)

	res := gate.Review(context.Background(), reviewDraft())
	require.NotNil(t, res)
	assert.Equal(t, domain.MockReviewerName, res.Reviewer)
	assert.Equal(t, domain.ReviewPass, res.Decision)
	assert.Equal(t, domain.DefaultReviewScore, res.Score)
	assert.Empty(t, res.Issues)
	assert.Equal(t, "ans-1", res.AnswerID)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.CreatedAt.IsZero())
	assert.Equal(t, []string{domain.MockReviewerName}, gate.Reviewers())
}

func TestReviewGate_ReviewerFailureFallsBack(t *testing.T) {
	failing := &mockReviewer{name: "llm", err: errors.New("timeout")}
	gate := NewReviewGate(failing)

	res := gate.Review(context.Background(), reviewDraft())
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, domain.MockReviewerName, res.Reviewer)
	assert.Equal(t, domain.ReviewPass, res.Decision)
}

func TestReviewGate_NormalisesReviewerOutput(t *testing.T) {
	r := &mockReviewer{name: "llm", result: domain.AIReviewResult{
		Decision:     "revise",
		Score:        140,
		Summary:      "tighten wording",
		RevisedDraft: "  better text \n",
		Issues:       []domain.ReviewIssue{{Severity: domain.SeverityLow, Message: "wordy"}},
	}}
	gate := NewReviewGate(r)

	res := gate.Review(context.Background(), reviewDraft())
	assert.Equal(t, "llm", res.Reviewer)
	assert.Equal(t, domain.ReviewRevise, res.Decision)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, "better text", res.RevisedDraft)
	assert.Len(t, res.Issues, 1)
}

func TestReviewGate_InvalidDecisionDefaultsToPass(t *testing.T) {
	r := &mockReviewer{name: "llm", result: domain.AIReviewResult{Decision: "MAYBE", Score: -3}}
	res := NewReviewGate(r).Review(context.Background(), reviewDraft())
	assert.Equal(t, domain.ReviewPass, res.Decision)
	assert.Equal(t, 0, res.Score)
}

func TestReviewGate_FirstSuccessfulReviewerWins(t *testing.T) {
	first := &mockReviewer{name: "primary", err: errors.New("down")}
	second := &mockReviewer{name: "secondary", result: domain.AIReviewResult{Decision: domain.ReviewReject, Score: 20}}
	gate := NewReviewGate(first, second)

	res := gate.Review(context.Background(), reviewDraft())
	assert.Equal(t, "secondary", res.Reviewer)
	assert.Equal(t, domain.ReviewReject, res.Decision)
	assert.Equal(t, []string{"primary", "secondary", domain.MockReviewerName}, gate.Reviewers())
}
