// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/styles"
)

// CommentInput is a one-line prompt for an approval or rejection comment.
type CommentInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
}

// NewCommentInput creates a blurred comment prompt.
func NewCommentInput(s *styles.Styles) *CommentInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "optional comment"
	ti.CharLimit = 500
	ti.Width = 60

	return &CommentInput{
		textinput: ti,
		styles:    s,
	}
}

// Open focuses the prompt under the given label.
func (c *CommentInput) Open(label string) tea.Cmd {
	c.label = label
	c.textinput.Reset()
	return c.textinput.Focus()
}

// Close blurs and clears the prompt.
func (c *CommentInput) Close() {
	c.textinput.Blur()
	c.textinput.Reset()
	c.label = ""
}

// Active reports whether the prompt is open.
func (c *CommentInput) Active() bool {
	return c.textinput.Focused()
}

// Update handles input messages.
func (c *CommentInput) Update(msg tea.Msg) (*CommentInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the prompt.
func (c *CommentInput) View() string {
	label := c.styles.Title.Render(c.label + ": ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *CommentInput) Value() string {
	return c.textinput.Value()
}

// SetWidth sets the width of the input.
func (c *CommentInput) SetWidth(width int) {
	w := width - 20
	if w < 20 {
		w = 20
	}
	c.textinput.Width = w
}
