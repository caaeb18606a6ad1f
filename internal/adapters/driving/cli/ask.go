package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [inquiry-id] [question]",
	Short: "Retrieve evidence and judge a question",
	Long: `Retrieve the most relevant knowledge-base chunks for a question and
judge whether they support it: SUPPORTED, CONDITIONAL or REFUTED.
The retrieved evidence is recorded against the inquiry.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

var askTopK int

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "Number of chunks to retrieve (default 5, max 50)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if verificationService == nil {
		return errors.New("verification service not configured")
	}

	res, err := verificationService.RetrieveAndVerify(commandContext(cmd), args[0], args[1], askTopK)
	if err != nil {
		return fmt.Errorf("verify question: %w", err)
	}

	cmd.Printf("Verdict:    %s\n", res.Verdict)
	cmd.Printf("Confidence: %.2f\n", res.Confidence)
	cmd.Printf("Reason:     %s\n", res.Reason)
	if len(res.RiskFlags) > 0 {
		cmd.Printf("Risk flags: %v\n", res.RiskFlags)
	}

	if len(res.Evidence) == 0 {
		cmd.Println("\nNo evidence found.")
		return nil
	}
	cmd.Println("\nEvidence:")
	for i, ev := range res.Evidence {
		cmd.Printf("  %d. [%.3f] %s (doc %s, %s)\n", i+1, ev.Score, ev.ChunkID, ev.DocumentID, ev.SourceType)
		cmd.Printf("     %s\n", ev.Excerpt)
	}
	return nil
}
