package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/views/answer"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui/views/queue"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// defaultApprover is recorded on decisions when no name is configured.
const defaultApprover = "tui"

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports    *Ports
	ctx      context.Context
	approver string

	styles *styles.Styles
	keymap *keymap.KeyMap
	status *status.Bar

	queueView  *queue.View
	answerView *answer.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ctx context.Context, ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetBindings(km.QueueHelp())

	return &App{
		ports:       ports,
		ctx:         ctx,
		approver:    defaultApprover,
		styles:      s,
		keymap:      km,
		status:      bar,
		queueView:   queue.NewView(ctx, s, km, ports.Answer),
		answerView:  answer.NewView(ctx, s, km, ports.Answer),
		currentView: messages.ViewQueue,
	}, nil
}

// WithApprover sets the name recorded on human approvals and rejections.
func (a *App) WithApprover(name string) *App {
	if name != "" {
		a.approver = name
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("answerdesk - Review Queue"),
		a.queueView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		a.setView(msg.View)
		if msg.View == messages.ViewQueue {
			return a, a.queueView.Reload()
		}
		return a, nil

	case messages.QueueLoaded:
		a.queueView, cmd = a.queueView.Update(msg)
		if msg.Err != nil {
			a.fail(msg.Err)
		} else if a.status.State() == status.StateLoading {
			a.status.Clear()
		}
		return a, cmd

	case messages.AnswerSelected:
		a.setView(messages.ViewAnswer)
		a.answerView.Reset()
		return a, a.answerView.Load(msg.Answer.ID)

	case messages.AnswerLoaded:
		a.answerView, cmd = a.answerView.Update(msg)
		if msg.Err != nil {
			a.fail(msg.Err)
		}
		return a, cmd

	case messages.ActionRequested:
		a.status.SetState(status.StateLoading, "")
		return a, a.runAction(msg)

	case messages.ActionCompleted:
		if msg.Err != nil {
			a.fail(msg.Err)
		} else {
			a.err = nil
			a.status.SetState(status.StateInfo, msg.Summary)
		}
		var qcmd, acmd tea.Cmd
		a.queueView, qcmd = a.queueView.Update(msg)
		a.answerView, acmd = a.answerView.Update(msg)
		return a, tea.Batch(qcmd, acmd)

	case messages.ErrorOccurred:
		a.fail(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) || keymap.Matches(msg.String(), a.keymap.Help) {
			a.setView(messages.ViewQueue)
		}
		return a, nil

	case messages.ViewAnswer:
		a.answerView, cmd = a.answerView.Update(msg)
		return a, cmd

	default:
		if !a.queueView.Prompting() {
			switch {
			case keymap.Matches(msg.String(), a.keymap.Quit):
				return a, tea.Quit
			case keymap.Matches(msg.String(), a.keymap.Help):
				a.setView(messages.ViewHelp)
				return a, nil
			}
		}
		a.queueView, cmd = a.queueView.Update(msg)
		return a, cmd
	}
}

func (a *App) setView(v messages.ViewType) {
	a.currentView = v
	switch v {
	case messages.ViewAnswer:
		a.status.SetBindings(a.keymap.AnswerHelp())
	case messages.ViewHelp:
		a.status.SetBindings(a.keymap.ShortHelp())
	default:
		a.status.SetBindings(a.keymap.QueueHelp())
	}
}

func (a *App) fail(err error) {
	a.err = err
	a.status.SetState(status.StateError, err.Error())
}

// runAction performs a decision through the driving ports.
func (a *App) runAction(req messages.ActionRequested) tea.Cmd {
	ctx := a.ctx
	answers := a.ports.Answer
	dispatch := a.ports.Dispatch
	approver := a.approver

	return func() tea.Msg {
		done := messages.ActionCompleted{AnswerID: req.AnswerID, Action: req.Action}

		switch req.Action {
		case messages.ActionApprove:
			draft, err := answers.Approve(ctx, req.AnswerID, approver, req.Comment)
			if err != nil {
				done.Err = err
				break
			}
			done.Summary = fmt.Sprintf("Approved v%d, press s to send", draft.Version)

		case messages.ActionReject:
			if _, err := answers.Reject(ctx, req.AnswerID, approver, req.Comment); err != nil {
				done.Err = err
				break
			}
			done.Summary = "Rejected, back to DRAFT"

		case messages.ActionAutoApprove:
			decision, err := answers.AutoApprove(ctx, req.AnswerID)
			if err != nil {
				done.Err = err
				break
			}
			done.Summary = fmt.Sprintf("Approval gate: %s", decision.Outcome)
			if failed := decision.FailedGates(); len(failed) > 0 {
				done.Summary += " (failed " + strings.Join(failed, ", ") + ")"
			}

		case messages.ActionSend:
			if dispatch == nil {
				done.Err = errDispatchDisabled
				break
			}
			res, err := dispatch.Send(ctx, driving.SendRequest{AnswerID: req.AnswerID})
			if err != nil {
				done.Err = err
				break
			}
			done.Summary = fmt.Sprintf("Sent via %s (%s)", res.Provider, res.MessageID)

		default:
			done.Err = fmt.Errorf("unknown action %q", req.Action)
		}
		return done
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewAnswer:
		body = a.answerView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.queueView.View()
	}
	return body + "\n" + a.status.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render(`Approve and reject prompt for an optional comment.
Auto-approve runs the confidence, review score, critical issue and
risk flag gates on the latest review. Send is idempotent per draft.`))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to queue"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.status.SetWidth(width)
	a.queueView.SetDimensions(width, height)
	a.answerView.SetDimensions(width, height)
}
