package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

type mockAnswerService struct {
	driving.AnswerService
	draft   *domain.AnswerDraft
	reviews []domain.AIReviewResult
	err     error
}

func (m *mockAnswerService) Get(_ context.Context, _ string) (*domain.AnswerDraft, error) {
	return m.draft, m.err
}

func (m *mockAnswerService) Reviews(_ context.Context, _ string) ([]domain.AIReviewResult, error) {
	return m.reviews, nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testDraft() *domain.AnswerDraft {
	return &domain.AnswerDraft{
		ID:         "a1",
		InquiryID:  "inq-1",
		Version:    2,
		Verdict:    domain.VerdictConditional,
		Confidence: 0.72,
		Tone:       domain.ToneProfessional,
		Channel:    domain.ChannelEmail,
		Status:     domain.AnswerReviewed,
		Text:       "It works with the adapter.",
		Citations:  []string{"chunk-1"},
		RiskFlags:  []domain.RiskFlag{domain.RiskWeakEvidenceMatch},
	}
}

func newLoadedView(t *testing.T) *View {
	t.Helper()
	svc := &mockAnswerService{
		draft: testDraft(),
		reviews: []domain.AIReviewResult{{
			Reviewer:  "llm",
			Decision:  domain.ReviewRevise,
			Score:     64,
			Summary:   "Needs a caveat",
			Issues:    []domain.ReviewIssue{{Severity: "HIGH", Message: "missing limitation"}},
			CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		}},
	}
	v := NewView(context.Background(), styles.DefaultStyles(), keymap.DefaultKeyMap(), svc)
	v.SetDimensions(120, 40)
	v, _ = v.Update(v.Load("a1")())
	return v
}

func TestView_LoadRendersDraftAndReviews(t *testing.T) {
	v := newLoadedView(t)

	require.NotNil(t, v.Draft())
	out := v.View()
	assert.Contains(t, out, "Answer Draft")
	assert.Contains(t, out, "a1 (v2)")
	assert.Contains(t, out, "CONDITIONAL 0.72")
	assert.Contains(t, out, "WEAK_EVIDENCE_MATCH")
	assert.Contains(t, out, "It works with the adapter.")
	assert.Contains(t, out, "Needs a caveat")
	assert.Contains(t, out, "missing limitation")
}

func TestView_LoadError(t *testing.T) {
	svc := &mockAnswerService{err: domain.ErrNotFound}
	v := NewView(context.Background(), styles.DefaultStyles(), keymap.DefaultKeyMap(), svc)

	msg := v.Load("missing")().(messages.AnswerLoaded)
	assert.ErrorIs(t, msg.Err, domain.ErrNotFound)

	v, _ = v.Update(msg)
	assert.Nil(t, v.Draft())
	assert.Contains(t, v.View(), "Error:")
}

func TestView_LoadingBeforeDraft(t *testing.T) {
	v := NewView(context.Background(), styles.DefaultStyles(), keymap.DefaultKeyMap(), &mockAnswerService{})
	assert.Contains(t, v.View(), "Loading...")
}

func TestView_BackReturnsToQueue(t *testing.T) {
	v := newLoadedView(t)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewQueue}, cmd())
}

func TestView_RejectWithComment(t *testing.T) {
	v := newLoadedView(t)

	v, _ = v.Update(keyRune('x'))
	require.True(t, v.Prompting())
	for _, r := range "wrong" {
		v, _ = v.Update(keyRune(r))
	}
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, v.Prompting())
	require.NotNil(t, cmd)
	assert.Equal(t,
		messages.ActionRequested{AnswerID: "a1", Action: messages.ActionReject, Comment: "wrong"},
		cmd())
}

func TestView_SendAndAutoApprove(t *testing.T) {
	v := newLoadedView(t)

	_, cmd := v.Update(keyRune('s'))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ActionRequested{AnswerID: "a1", Action: messages.ActionSend}, cmd())

	_, cmd = v.Update(keyRune('g'))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ActionRequested{AnswerID: "a1", Action: messages.ActionAutoApprove}, cmd())
}

func TestView_ActionCompletedReloadsMatchingDraft(t *testing.T) {
	v := newLoadedView(t)

	_, cmd := v.Update(messages.ActionCompleted{AnswerID: "other"})
	assert.Nil(t, cmd)

	_, cmd = v.Update(messages.ActionCompleted{AnswerID: "a1", Err: errors.New("x")})
	require.NotNil(t, cmd)
	_, ok := cmd().(messages.AnswerLoaded)
	assert.True(t, ok)
}

func TestView_Reset(t *testing.T) {
	v := newLoadedView(t)
	v.Reset()

	assert.Nil(t, v.Draft())
	assert.False(t, v.Prompting())
}
