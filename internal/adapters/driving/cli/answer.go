package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Draft, review, approve and send answers",
	Long: `Answer drafts move DRAFT -> REVIEWED -> APPROVED -> SENT.
A rejected or revised draft goes back to DRAFT.`,
}

var answerComposeCmd = &cobra.Command{
	Use:   "compose [inquiry-id]",
	Short: "Draft a new answer version for an inquiry",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerCompose,
}

var answerListCmd = &cobra.Command{
	Use:   "list [inquiry-id]",
	Short: "List answer versions for an inquiry, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerList,
}

var answerShowCmd = &cobra.Command{
	Use:   "show [answer-id]",
	Short: "Show a draft with its reviews and send attempts",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerShow,
}

var answerReviewCmd = &cobra.Command{
	Use:   "review [answer-id]",
	Short: "Review a draft",
	Long: `Run the automated reviewer on a draft. With --reviewer the draft is
marked reviewed by a human instead, using --score and --comment.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswerReview,
}

var answerApproveCmd = &cobra.Command{
	Use:   "approve [answer-id]",
	Short: "Approve a reviewed draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerApprove,
}

var answerRejectCmd = &cobra.Command{
	Use:   "reject [answer-id]",
	Short: "Reject a reviewed draft back to DRAFT",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerReject,
}

var answerAutoApproveCmd = &cobra.Command{
	Use:   "auto-approve [answer-id]",
	Short: "Run the automated approval gate",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerAutoApprove,
}

var answerReviseCmd = &cobra.Command{
	Use:   "revise [answer-id]",
	Short: "Create a new version from the reviewer's revised draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerRevise,
}

var answerSendCmd = &cobra.Command{
	Use:   "send [answer-id]",
	Short: "Send an approved answer",
	Long: `Send an approved answer over its channel. Repeating a send with the
same --request-id never delivers twice.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswerSend,
}

var (
	answerQuestion  string
	answerTone      string
	answerChannel   string
	answerTopK      int
	answerReviewer  string
	answerScore     int
	answerComment   string
	answerApprover  string
	answerRequestID string
)

func init() {
	answerComposeCmd.Flags().StringVarP(&answerQuestion, "question", "q", "", "Question to answer (default: the inquiry's question)")
	answerComposeCmd.Flags().StringVarP(&answerTone, "tone", "t", "professional", "brief, technical or professional")
	answerComposeCmd.Flags().StringVar(&answerChannel, "channel", "", "email or messenger (default: the inquiry's channel)")
	answerComposeCmd.Flags().IntVarP(&answerTopK, "top-k", "k", 0, "Number of chunks to retrieve")

	answerReviewCmd.Flags().StringVar(&answerReviewer, "reviewer", "", "Mark reviewed by this human instead of the automated reviewer")
	answerReviewCmd.Flags().IntVar(&answerScore, "score", 0, "Human review score (0-100)")
	answerReviewCmd.Flags().StringVarP(&answerComment, "comment", "m", "", "Review comment")

	for _, c := range []*cobra.Command{answerApproveCmd, answerRejectCmd} {
		c.Flags().StringVar(&answerApprover, "by", "", "Name of the approver")
		c.Flags().StringVarP(&answerComment, "comment", "m", "", "Decision comment")
	}

	answerSendCmd.Flags().StringVar(&answerChannel, "channel", "", "Override the draft's channel")
	answerSendCmd.Flags().StringVar(&answerRequestID, "request-id", "", "Idempotency key for this send")

	answerCmd.AddCommand(answerComposeCmd)
	answerCmd.AddCommand(answerListCmd)
	answerCmd.AddCommand(answerShowCmd)
	answerCmd.AddCommand(answerReviewCmd)
	answerCmd.AddCommand(answerApproveCmd)
	answerCmd.AddCommand(answerRejectCmd)
	answerCmd.AddCommand(answerAutoApproveCmd)
	answerCmd.AddCommand(answerReviseCmd)
	answerCmd.AddCommand(answerSendCmd)
	rootCmd.AddCommand(answerCmd)
}

func runAnswerCompose(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	req := driving.ComposeRequest{
		InquiryID: args[0],
		Question:  answerQuestion,
		Tone:      domain.ParseTone(answerTone),
		TopK:      answerTopK,
	}
	if answerChannel != "" {
		req.Channel = domain.ParseChannel(answerChannel)
	}

	draft, err := answerService.Compose(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("compose answer: %w", err)
	}
	printAnswer(cmd, draft)
	return nil
}

func runAnswerList(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answers, err := answerService.List(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	if len(answers) == 0 {
		cmd.Println("No answers yet.")
		return nil
	}

	for i := range answers {
		a := &answers[i]
		score := "-"
		if a.ReviewScore != nil {
			score = fmt.Sprint(*a.ReviewScore)
		}
		cmd.Printf("  v%-3d %s  %-8s %-11s conf %.2f  score %s\n",
			a.Version, a.ID, a.Status, a.Verdict, a.Confidence, score)
	}
	return nil
}

func runAnswerShow(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	ctx := commandContext(cmd)

	draft, err := answerService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get answer: %w", err)
	}
	printAnswer(cmd, draft)

	reviews, err := answerService.Reviews(ctx, draft.ID)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	if len(reviews) > 0 {
		cmd.Println("\nReviews:")
		for i := range reviews {
			printReview(cmd, &reviews[i])
		}
	}

	if dispatchService == nil {
		return nil
	}
	attempts, err := dispatchService.Attempts(ctx, draft.ID)
	if err != nil {
		return fmt.Errorf("list send attempts: %w", err)
	}
	if len(attempts) > 0 {
		cmd.Println("\nSend attempts:")
		for i := range attempts {
			at := &attempts[i]
			cmd.Printf("  %s  %-17s %-9s %s %s %s\n", at.CreatedAt.Format("2006-01-02 15:04:05"),
				at.Outcome, at.Channel, at.SendRequestID, at.MessageID, at.Detail)
		}
	}
	return nil
}

func runAnswerReview(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	ctx := commandContext(cmd)

	if answerReviewer != "" {
		draft, err := answerService.MarkReviewed(ctx, args[0], driving.HumanReview{
			Reviewer: answerReviewer,
			Score:    answerScore,
			Comment:  answerComment,
		})
		if err != nil {
			return fmt.Errorf("mark reviewed: %w", err)
		}
		cmd.Printf("Answer %s marked reviewed by %s.\n", draft.ID, answerReviewer)
		return nil
	}

	res, err := answerService.Review(ctx, args[0])
	if err != nil {
		return fmt.Errorf("review answer: %w", err)
	}
	printReview(cmd, res)
	return nil
}

func runAnswerApprove(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	draft, err := answerService.Approve(commandContext(cmd), args[0], approverName(), answerComment)
	if err != nil {
		return fmt.Errorf("approve answer: %w", err)
	}
	cmd.Printf("Answer %s approved (%s).\n", draft.ID, draft.ApprovalDecision)
	return nil
}

func runAnswerReject(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	draft, err := answerService.Reject(commandContext(cmd), args[0], approverName(), answerComment)
	if err != nil {
		return fmt.Errorf("reject answer: %w", err)
	}
	cmd.Printf("Answer %s rejected, back to %s.\n", draft.ID, draft.Status)
	return nil
}

func runAnswerAutoApprove(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	decision, err := answerService.AutoApprove(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("auto-approve answer: %w", err)
	}

	cmd.Printf("Decision: %s\n", decision.Outcome)
	for _, g := range decision.Gates {
		mark := "pass"
		if !g.Passed {
			mark = "FAIL"
		}
		cmd.Printf("  %-17s %s\n", g.Name, mark)
	}
	if decision.Reason != "" {
		cmd.Printf("Reason: %s\n", decision.Reason)
	}
	return nil
}

func runAnswerRevise(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	draft, err := answerService.Revise(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("revise answer: %w", err)
	}
	printAnswer(cmd, draft)
	return nil
}

func runAnswerSend(cmd *cobra.Command, args []string) error {
	if dispatchService == nil {
		return errors.New("dispatch service not configured")
	}

	req := driving.SendRequest{AnswerID: args[0], SendRequestID: answerRequestID}
	if answerChannel != "" {
		req.Channel = domain.ParseChannel(answerChannel)
	}

	res, err := dispatchService.Send(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("send answer: %w", err)
	}

	if res.Duplicate {
		cmd.Printf("Already sent for request %s (message %s).\n", res.SendRequestID, res.MessageID)
		return nil
	}
	cmd.Printf("Sent via %s, message %s (request %s).\n", res.Provider, res.MessageID, res.SendRequestID)
	return nil
}

func approverName() string {
	if answerApprover != "" {
		return answerApprover
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}

func printAnswer(cmd *cobra.Command, a *domain.AnswerDraft) {
	cmd.Printf("Answer: %s (v%d)\n\n", a.ID, a.Version)
	cmd.Printf("  Inquiry:    %s\n", a.InquiryID)
	cmd.Printf("  Status:     %s\n", a.Status)
	cmd.Printf("  Verdict:    %s (%.2f)\n", a.Verdict, a.Confidence)
	cmd.Printf("  Tone:       %s via %s\n", a.Tone, a.Channel)
	if len(a.RiskFlags) > 0 {
		cmd.Printf("  Risk flags: %v\n", a.RiskFlags)
	}
	if a.ReviewScore != nil {
		cmd.Printf("  Review:     %s %d\n", a.ReviewDecision, *a.ReviewScore)
	}
	if a.ApprovalDecision != "" {
		cmd.Printf("  Approval:   %s by %s\n", a.ApprovalDecision, a.ApprovedBy)
	}
	if a.MessageID != "" {
		cmd.Printf("  Message:    %s\n", a.MessageID)
	}
	cmd.Printf("\n%s\n", a.Text)
}

func printReview(cmd *cobra.Command, r *domain.AIReviewResult) {
	cmd.Printf("  %s  %s score %d by %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"),
		r.Decision, r.Score, r.Reviewer)
	if r.Summary != "" {
		cmd.Printf("    %s\n", r.Summary)
	}
	for _, is := range r.Issues {
		cmd.Printf("    [%s] %s\n", is.Severity, is.Message)
	}
}
