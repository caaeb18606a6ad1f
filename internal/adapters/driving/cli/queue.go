package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/tui"
)

// runApp starts the TUI; replaced in tests.
var runApp = func(app *tui.App) error { return app.Run() }

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Open the interactive review queue",
	Long: `Open the terminal review queue listing drafts that await a human decision
or dispatch.

Controls:
  ↑/k, ↓/j - Navigate drafts
  Enter    - Open draft
  a / x    - Approve / reject (prompts for a comment)
  g        - Run the approval gate
  s        - Send
  r        - Refresh
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runQueue,
}

var queueApprover string

func init() {
	queueCmd.Flags().StringVar(&queueApprover, "by", "", "Name recorded on approvals (default $USER)")
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, _ []string) (err error) {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	app, err := tui.NewApp(commandContext(cmd), &tui.Ports{
		Answer:   answerService,
		Dispatch: dispatchService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	approver := queueApprover
	if approver == "" {
		approver = os.Getenv("USER")
	}
	app.WithApprover(approver)

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
