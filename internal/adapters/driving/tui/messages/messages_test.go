package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewQueue, "queue"},
		{ViewAnswer, "answer"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestQueueLoaded(t *testing.T) {
	msg := QueueLoaded{
		Answers: []domain.AnswerDraft{{ID: "a1", Status: domain.AnswerReviewed}},
	}

	assert.Len(t, msg.Answers, 1)
	assert.NoError(t, msg.Err)
}

func TestActionCompleted_CarriesError(t *testing.T) {
	err := errors.New("boom")
	msg := ActionCompleted{AnswerID: "a1", Action: ActionSend, Err: err}

	assert.Equal(t, ActionSend, msg.Action)
	assert.ErrorIs(t, msg.Err, err)
}
