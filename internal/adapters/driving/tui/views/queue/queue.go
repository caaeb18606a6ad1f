// Package queue provides the review queue table for the TUI.
package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// reservedLines is the space taken by title, prompt and status bar.
const reservedLines = 8

// View lists drafts awaiting approval or dispatch.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	answers driving.AnswerService

	table  table.Model
	drafts []domain.AnswerDraft
	prompt *input.CommentInput

	// pending is the action waiting for the prompt's comment.
	pending messages.Action

	loading bool
	width   int
	height  int
	err     error
}

// NewView creates a new queue view.
func NewView(ctx context.Context, s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService) *View {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(s.Table()),
	)

	return &View{
		ctx:     ctx,
		styles:  s,
		keymap:  km,
		answers: answers,
		table:   t,
		prompt:  input.NewCommentInput(s),
	}
}

func columns(width int) []table.Column {
	cols := []table.Column{
		{Title: "Answer", Width: 10},
		{Title: "Inquiry", Width: 10},
		{Title: "Ver", Width: 4},
		{Title: "Status", Width: 9},
		{Title: "Verdict", Width: 11},
		{Title: "Conf", Width: 5},
		{Title: "Score", Width: 5},
		{Title: "Approval", Width: 14},
		{Title: "Flags", Width: 0},
	}
	used := 0
	for _, c := range cols {
		used += c.Width + 2
	}
	flags := width - used - 2
	if flags < 10 {
		flags = 10
	}
	cols[len(cols)-1].Width = flags
	return cols
}

// Init loads the queue.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload fetches the queue from the answer service.
func (v *View) Reload() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		answers, err := v.answers.Queue(v.ctx)
		return messages.QueueLoaded{Answers: answers, Err: err}
	}
}

// Update handles messages for the queue view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.QueueLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.SetDrafts(msg.Answers)
		}
		return v, nil

	case messages.ActionCompleted:
		return v, v.Reload()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.prompt.Active() {
		return v.handlePrompt(msg)
	}

	keyStr := msg.String()
	selected := v.Selected()

	switch {
	case keymap.Matches(keyStr, v.keymap.Refresh):
		return v, v.Reload()
	case selected == nil:
		// Nothing below applies to an empty table.
	case keymap.Matches(keyStr, v.keymap.Select):
		d := *selected
		return v, func() tea.Msg { return messages.AnswerSelected{Answer: d} }
	case keymap.Matches(keyStr, v.keymap.Approve):
		v.pending = messages.ActionApprove
		return v, v.prompt.Open("Approve " + shortID(selected.ID))
	case keymap.Matches(keyStr, v.keymap.Reject):
		v.pending = messages.ActionReject
		return v, v.prompt.Open("Reject " + shortID(selected.ID))
	case keymap.Matches(keyStr, v.keymap.AutoApprove):
		return v, request(selected.ID, messages.ActionAutoApprove, "")
	case keymap.Matches(keyStr, v.keymap.Send):
		return v, request(selected.ID, messages.ActionSend, "")
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) handlePrompt(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.prompt.Close()
		v.pending = ""
		return v, nil
	case tea.KeyEnter:
		comment := v.prompt.Value()
		action := v.pending
		v.prompt.Close()
		v.pending = ""
		if selected := v.Selected(); selected != nil {
			return v, request(selected.ID, action, comment)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func request(answerID string, action messages.Action, comment string) tea.Cmd {
	return func() tea.Msg {
		return messages.ActionRequested{AnswerID: answerID, Action: action, Comment: comment}
	}
}

// SetDrafts replaces the table rows.
func (v *View) SetDrafts(drafts []domain.AnswerDraft) {
	v.drafts = drafts
	rows := make([]table.Row, len(drafts))
	for i := range drafts {
		rows[i] = row(&drafts[i])
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(len(rows)-1, 0))
	}
}

func row(d *domain.AnswerDraft) table.Row {
	score := "-"
	if d.ReviewScore != nil {
		score = fmt.Sprint(*d.ReviewScore)
	}
	approval := string(d.ApprovalDecision)
	if approval == "" {
		approval = "-"
	}
	flags := make([]string, len(d.RiskFlags))
	for i, f := range d.RiskFlags {
		flags[i] = string(f)
	}
	return table.Row{
		shortID(d.ID),
		shortID(d.InquiryID),
		fmt.Sprintf("v%d", d.Version),
		string(d.Status),
		string(d.Verdict),
		fmt.Sprintf("%.2f", d.Confidence),
		score,
		approval,
		strings.Join(flags, ","),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Selected returns the highlighted draft, or nil when the queue is empty.
func (v *View) Selected() *domain.AnswerDraft {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.drafts) {
		return nil
	}
	return &v.drafts[i]
}

// Prompting reports whether a comment prompt is open.
func (v *View) Prompting() bool {
	return v.prompt.Active()
}

// View renders the queue.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Review Queue"))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %d drafts", len(v.drafts))))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.loading && len(v.drafts) == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.drafts) == 0:
		b.WriteString(v.styles.Muted.Render("Nothing awaiting review. Press r to refresh."))
	default:
		b.WriteString(v.table.View())
	}
	b.WriteString("\n\n")

	if v.prompt.Active() {
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.table.SetColumns(columns(width))
	v.table.SetHeight(max(height-reservedLines, 3))
	v.prompt.SetWidth(width)
}

// Drafts returns the drafts currently listed.
func (v *View) Drafts() []domain.AnswerDraft {
	return v.drafts
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
