package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

var inquiryCmd = &cobra.Command{
	Use:   "inquiry",
	Short: "Manage customer inquiries",
}

var inquiryCreateCmd = &cobra.Command{
	Use:   "create [question]",
	Short: "Record a new customer inquiry",
	Args:  cobra.ExactArgs(1),
	RunE:  runInquiryCreate,
}

var inquiryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent inquiries",
	Args:  cobra.NoArgs,
	RunE:  runInquiryList,
}

var inquiryShowCmd = &cobra.Command{
	Use:   "show [inquiry-id]",
	Short: "Show an inquiry and its answer versions",
	Args:  cobra.ExactArgs(1),
	RunE:  runInquiryShow,
}

var (
	inquiryCustomer string
	inquiryContact  string
	inquirySubject  string
	inquiryChannel  string
	inquiryLimit    int
)

func init() {
	inquiryCreateCmd.Flags().StringVar(&inquiryCustomer, "customer", "", "Customer name used in greetings")
	inquiryCreateCmd.Flags().StringVar(&inquiryContact, "contact", "", "Email address or chat id replies go to")
	inquiryCreateCmd.Flags().StringVar(&inquirySubject, "subject", "", "Inquiry subject")
	inquiryCreateCmd.Flags().StringVar(&inquiryChannel, "channel", "email", "Preferred reply channel (email or messenger)")
	inquiryListCmd.Flags().IntVarP(&inquiryLimit, "limit", "n", 20, "Maximum number of inquiries")

	inquiryCmd.AddCommand(inquiryCreateCmd)
	inquiryCmd.AddCommand(inquiryListCmd)
	inquiryCmd.AddCommand(inquiryShowCmd)
	rootCmd.AddCommand(inquiryCmd)
}

func runInquiryCreate(cmd *cobra.Command, args []string) error {
	if inquiryService == nil {
		return errors.New("inquiry service not configured")
	}

	inq, err := inquiryService.Create(commandContext(cmd), driving.CreateInquiryRequest{
		CustomerName:    inquiryCustomer,
		CustomerContact: inquiryContact,
		Subject:         inquirySubject,
		Question:        args[0],
		Channel:         domain.ParseChannel(inquiryChannel),
	})
	if err != nil {
		return fmt.Errorf("create inquiry: %w", err)
	}

	cmd.Printf("Created inquiry %s\n", inq.ID)
	return nil
}

func runInquiryList(cmd *cobra.Command, _ []string) error {
	if inquiryService == nil {
		return errors.New("inquiry service not configured")
	}

	inquiries, err := inquiryService.List(commandContext(cmd), inquiryLimit)
	if err != nil {
		return fmt.Errorf("list inquiries: %w", err)
	}
	if len(inquiries) == 0 {
		cmd.Println("No inquiries.")
		return nil
	}

	for i := range inquiries {
		inq := &inquiries[i]
		cmd.Printf("  %s  %-9s %s  %s\n", inq.ID, inq.Channel,
			inq.CreatedAt.Format("2006-01-02 15:04"), displaySubject(inq))
	}
	cmd.Printf("\nTotal: %d inquiries\n", len(inquiries))
	return nil
}

func runInquiryShow(cmd *cobra.Command, args []string) error {
	if inquiryService == nil {
		return errors.New("inquiry service not configured")
	}
	ctx := commandContext(cmd)

	inq, err := inquiryService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get inquiry: %w", err)
	}

	cmd.Printf("Inquiry: %s\n\n", inq.ID)
	cmd.Printf("  Customer: %s\n", inq.CustomerName)
	cmd.Printf("  Contact:  %s\n", inq.CustomerContact)
	cmd.Printf("  Channel:  %s\n", inq.Channel)
	cmd.Printf("  Subject:  %s\n", inq.Subject)
	cmd.Printf("  Created:  %s\n", inq.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("\n  %s\n", inq.Question)

	if answerService == nil {
		return nil
	}
	answers, err := answerService.List(ctx, inq.ID)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	if len(answers) > 0 {
		cmd.Println("\n  Answers:")
		for i := range answers {
			cmd.Printf("    v%d  %s  %-8s %s\n", answers[i].Version, answers[i].ID,
				answers[i].Status, answers[i].Verdict)
		}
	}
	return nil
}

func displaySubject(inq *domain.Inquiry) string {
	if inq.Subject != "" {
		return inq.Subject
	}
	return truncate(inq.Question, 60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
