package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory and ingest new files",
	Long: `Watch the configured inbox directory. Dropped documents are uploaded to the
knowledge base and ingested; .eml files open a new inquiry with their
attachments. Runs until interrupted.

Configure the directory with 'answerdesk settings set watch.inbox <dir>'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if watchInbox == nil {
			return errors.New("inbox watcher not configured: set watch.inbox")
		}
		cmd.Println("Watching inbox. Press Ctrl+C to stop.")
		return watchInbox(commandContext(cmd))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
