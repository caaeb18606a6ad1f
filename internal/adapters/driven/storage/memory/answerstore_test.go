package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestAnswerStore_VersionsAndOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewAnswerStore()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		v, err := store.NextVersion(ctx, "inq-1")
		require.NoError(t, err)
		assert.Equal(t, i+1, v)
		require.NoError(t, store.SaveAnswer(ctx, &domain.AnswerDraft{
			ID:        fmt.Sprintf("a%d", v),
			InquiryID: "inq-1",
			Version:   v,
			Status:    domain.AnswerDraftStatus,
			CreatedAt: base.Add(time.Duration(v) * time.Minute),
		}))
	}

	other, err := store.NextVersion(ctx, "inq-2")
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	list, err := store.ListAnswers(ctx, "inq-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, list[0].Version)

	drafts, err := store.ListAnswersByStatus(ctx, domain.AnswerDraftStatus, domain.AnswerReviewed)
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, 1, drafts[0].Version)

	none, err := store.ListAnswersByStatus(ctx, domain.AnswerSent)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnswerStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewAnswerStore()
	require.NoError(t, store.SaveAnswer(ctx, &domain.AnswerDraft{
		ID:        "a1",
		InquiryID: "inq",
		Version:   1,
		RiskFlags: []domain.RiskFlag{domain.RiskLowConfidence},
	}))

	got, err := store.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	got.RiskFlags[0] = domain.RiskSafetyConcern

	again, err := store.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLowConfidence, again.RiskFlags[0])

	_, err = store.GetAnswer(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnswerStore_SaveKeepsVersionCounterAhead(t *testing.T) {
	ctx := context.Background()
	store := NewAnswerStore()
	require.NoError(t, store.SaveAnswer(ctx, &domain.AnswerDraft{ID: "a", InquiryID: "inq", Version: 4}))

	v, err := store.NextVersion(ctx, "inq")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestReviewStore(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()

	_, err := store.LatestReview(ctx, "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.AppendReview(ctx, &domain.AIReviewResult{ID: "r1", AnswerID: "a1", Score: 70}))
	require.NoError(t, store.AppendReview(ctx, &domain.AIReviewResult{ID: "r2", AnswerID: "a2", Score: 60}))
	require.NoError(t, store.AppendReview(ctx, &domain.AIReviewResult{ID: "r3", AnswerID: "a1", Score: 90}))

	latest, err := store.LatestReview(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "r3", latest.ID)

	all, err := store.ListReviews(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r1", all[0].ID)
}

func TestSendAttemptStore(t *testing.T) {
	ctx := context.Background()
	store := NewSendAttemptStore()

	_, err := store.FindSent(ctx, "a1", "req-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.AppendSendAttempt(ctx, &domain.SendAttempt{ID: "s0", AnswerID: "a1", SendRequestID: "req-1", Outcome: domain.SendFailed}))
	require.NoError(t, store.AppendSendAttempt(ctx, &domain.SendAttempt{ID: "s1", AnswerID: "a1", SendRequestID: "req-1", Outcome: domain.SendSent, MessageID: "m-1"}))
	require.NoError(t, store.AppendSendAttempt(ctx, &domain.SendAttempt{ID: "s2", AnswerID: "a1", SendRequestID: "req-1", Outcome: domain.SendDuplicateBlocked}))

	err = store.AppendSendAttempt(ctx, &domain.SendAttempt{ID: "s3", AnswerID: "a1", SendRequestID: "req-1", Outcome: domain.SendSent})
	assert.ErrorIs(t, err, domain.ErrConflict)

	sent, err := store.FindSent(ctx, "a1", "req-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", sent.MessageID)

	attempts, err := store.ListSendAttempts(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, domain.SendFailed, attempts[0].Outcome)
}

func TestAnswerStore_MarkAnswerSentOnlyFromApproved(t *testing.T) {
	ctx := context.Background()
	store := NewAnswerStore()
	require.NoError(t, store.SaveAnswer(ctx, &domain.AnswerDraft{
		ID: "a1", InquiryID: "inq", Version: 1, Status: domain.AnswerApproved,
	}))

	sent := &domain.AnswerDraft{ID: "a1", InquiryID: "inq", Version: 1, Status: domain.AnswerSent, MessageID: "m-1"}
	require.NoError(t, store.MarkAnswerSent(ctx, sent))

	again := *sent
	again.MessageID = "m-2"
	assert.ErrorIs(t, store.MarkAnswerSent(ctx, &again), domain.ErrNotApproved)

	got, err := store.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", got.MessageID)

	assert.ErrorIs(t, store.MarkAnswerSent(ctx, &domain.AnswerDraft{ID: "missing"}), domain.ErrNotFound)
}
