// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewQueue is the review queue table.
	ViewQueue ViewType = iota
	// ViewAnswer shows a single draft with its reviews.
	ViewAnswer
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewQueue:
		return "queue"
	case ViewAnswer:
		return "answer"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Action is a decision taken on a draft from the TUI.
type Action string

// Actions available on a queued draft.
const (
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionAutoApprove Action = "auto-approve"
	ActionSend        Action = "send"
)

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// QueueLoaded carries the drafts awaiting a decision.
type QueueLoaded struct {
	Answers []domain.AnswerDraft
	Err     error
}

// AnswerSelected signals a draft was picked from the queue.
type AnswerSelected struct {
	Answer domain.AnswerDraft
}

// AnswerLoaded carries a draft with its review history.
type AnswerLoaded struct {
	Answer  *domain.AnswerDraft
	Reviews []domain.AIReviewResult
	Err     error
}

// ActionRequested asks the app to run an action on a draft.
// Comment is only used by approve and reject.
type ActionRequested struct {
	AnswerID string
	Action   Action
	Comment  string
}

// ActionCompleted reports the outcome of an action.
type ActionCompleted struct {
	AnswerID string
	Action   Action
	Summary  string
	Err      error
}
