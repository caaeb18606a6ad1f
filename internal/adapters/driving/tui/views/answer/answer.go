// Package answer provides the draft detail view for the TUI.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// View shows one draft with its evidence summary and reviews.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	answers driving.AnswerService

	viewport viewport.Model
	prompt   *input.CommentInput
	pending  messages.Action

	draft   *domain.AnswerDraft
	reviews []domain.AIReviewResult
	width   int
	err     error
}

// NewView creates a new answer view.
func NewView(ctx context.Context, s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService) *View {
	return &View{
		ctx:      ctx,
		styles:   s,
		keymap:   km,
		answers:  answers,
		viewport: viewport.New(80, 20),
		prompt:   input.NewCommentInput(s),
		width:    80,
	}
}

// Load fetches a draft and its reviews.
func (v *View) Load(answerID string) tea.Cmd {
	return func() tea.Msg {
		draft, err := v.answers.Get(v.ctx, answerID)
		if err != nil {
			return messages.AnswerLoaded{Err: err}
		}
		reviews, err := v.answers.Reviews(v.ctx, answerID)
		return messages.AnswerLoaded{Answer: draft, Reviews: reviews, Err: err}
	}
}

// Update handles messages for the answer view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.AnswerLoaded:
		v.err = msg.Err
		if msg.Answer != nil {
			v.draft = msg.Answer
			v.reviews = msg.Reviews
			v.viewport.SetContent(v.render())
			v.viewport.GotoTop()
		}
		return v, nil

	case messages.ActionCompleted:
		if v.draft != nil && msg.AnswerID == v.draft.ID {
			return v, v.Load(v.draft.ID)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.prompt.Active() {
		switch msg.Type {
		case tea.KeyEsc:
			v.prompt.Close()
			return v, nil
		case tea.KeyEnter:
			req := messages.ActionRequested{AnswerID: v.draft.ID, Action: v.pending, Comment: v.prompt.Value()}
			v.prompt.Close()
			return v, func() tea.Msg { return req }
		}
		var cmd tea.Cmd
		v.prompt, cmd = v.prompt.Update(msg)
		return v, cmd
	}

	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewQueue} }
	case v.draft == nil:
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Approve):
		v.pending = messages.ActionApprove
		return v, v.prompt.Open("Approve")
	case keymap.Matches(keyStr, v.keymap.Reject):
		v.pending = messages.ActionReject
		return v, v.prompt.Open("Reject")
	case keymap.Matches(keyStr, v.keymap.AutoApprove):
		id := v.draft.ID
		return v, func() tea.Msg {
			return messages.ActionRequested{AnswerID: id, Action: messages.ActionAutoApprove}
		}
	case keymap.Matches(keyStr, v.keymap.Send):
		id := v.draft.ID
		return v, func() tea.Msg {
			return messages.ActionRequested{AnswerID: id, Action: messages.ActionSend}
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render builds the scrollable body.
func (v *View) render() string {
	d := v.draft
	var b strings.Builder

	field := func(label, value string) {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-11s", label+":")))
		b.WriteString(" ")
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}

	field("Answer", fmt.Sprintf("%s (v%d)", d.ID, d.Version))
	field("Inquiry", d.InquiryID)
	field("Status", string(d.Status))
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-11s", "Verdict:")))
	b.WriteString(" ")
	b.WriteString(v.styles.Verdict(d.Verdict).Render(fmt.Sprintf("%s %.2f", d.Verdict, d.Confidence)))
	b.WriteString("\n")
	field("Channel", fmt.Sprintf("%s, %s tone", d.Channel, d.Tone))
	if len(d.RiskFlags) > 0 {
		flags := make([]string, len(d.RiskFlags))
		for i, f := range d.RiskFlags {
			flags[i] = string(f)
		}
		field("Risk", strings.Join(flags, ", "))
	}
	if d.ApprovalDecision != "" {
		field("Approval", fmt.Sprintf("%s by %s", d.ApprovalDecision, d.ApprovedBy))
	}
	if len(d.Citations) > 0 {
		field("Citations", strings.Join(d.Citations, ", "))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Draft.Width(max(v.width-4, 20)).Render(d.Text))
	b.WriteString("\n")

	if len(v.reviews) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Title.Render("Reviews"))
		b.WriteString("\n")
	}
	for i := range v.reviews {
		r := &v.reviews[i]
		b.WriteString(v.styles.Review(r.Decision).Render(fmt.Sprintf("%s %d", r.Decision, r.Score)))
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s  %s", r.Reviewer, r.CreatedAt.Format("2006-01-02 15:04"))))
		b.WriteString("\n")
		if r.Summary != "" {
			b.WriteString("  " + r.Summary + "\n")
		}
		for _, is := range r.Issues {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("  [%s] ", is.Severity)))
			b.WriteString(is.Message + "\n")
		}
	}
	return b.String()
}

// View renders the answer view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Answer Draft"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.draft == nil:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.viewport.View())
	}
	b.WriteString("\n")

	if v.prompt.Active() {
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = max(height-6, 3)
	v.prompt.SetWidth(width)
	if v.draft != nil {
		v.viewport.SetContent(v.render())
	}
}

// Reset clears the displayed draft.
func (v *View) Reset() {
	v.draft = nil
	v.reviews = nil
	v.err = nil
	v.prompt.Close()
}

// Draft returns the displayed draft.
func (v *View) Draft() *domain.AnswerDraft {
	return v.draft
}

// Prompting reports whether a comment prompt is open.
func (v *View) Prompting() bool {
	return v.prompt.Active()
}
