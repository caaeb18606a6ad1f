// Package cli provides the cobra command tree for answerdesk.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports the commands call into.
type Services struct {
	Inquiry      driving.InquiryService
	Document     driving.DocumentService
	Ingestion    driving.IngestionService
	Verification driving.VerificationService
	Answer       driving.AnswerService
	Dispatch     driving.DispatchService
	Settings     driving.SettingsService

	// Watch runs the inbox watcher until ctx is cancelled. Nil when no
	// inbox directory is configured.
	Watch func(ctx context.Context) error
}

// Initializer builds the full service graph. It runs once, before the
// first command that needs it, and returns a cleanup func.
type Initializer func(ctx context.Context) (*Services, func(), error)

var (
	inquiryService      driving.InquiryService
	documentService     driving.DocumentService
	ingestionService    driving.IngestionService
	verificationService driving.VerificationService
	answerService       driving.AnswerService
	dispatchService     driving.DispatchService
	settingsService     driving.SettingsService
	watchInbox          func(ctx context.Context) error
)

var (
	verbose     bool
	initializer Initializer
	cleanup     func()
)

// skipInit marks commands that run without the service graph.
const skipInit = "skip-init"

var rootCmd = &cobra.Command{
	Use:   "answerdesk",
	Short: "Evidence-checked answers for customer inquiries",
	Long: `answerdesk ingests product documents, verifies customer questions against
them and drafts replies that go through review and approval before they
are sent by email or messenger.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initServices,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	inquiryService = s.Inquiry
	documentService = s.Document
	ingestionService = s.Ingestion
	verificationService = s.Verification
	answerService = s.Answer
	dispatchService = s.Dispatch
	if s.Settings != nil {
		settingsService = s.Settings
	}
	watchInbox = s.Watch
}

// SetSettingsService installs the settings service, which needs no AI
// providers or storage.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetInitializer registers the lazy service builder.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// FormatError renders err prefixed with its error kind.
func FormatError(err error) string {
	return fmt.Sprintf("error [%s]: %v", domain.KindOf(err), err)
}

// ExitCode maps err onto a process exit status.
func ExitCode(err error) int {
	switch domain.KindOf(err) {
	case "":
		return 0
	case domain.KindInvalidInput:
		return 2
	case domain.KindNotFound:
		return 3
	case domain.KindConflict:
		return 4
	case domain.KindExternalService:
		return 5
	default:
		return 1
	}
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if initializer == nil || needsNoServices(cmd) {
		return nil
	}
	services, done, err := initializer(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("initialise services: %w", err)
	}
	SetServices(services)
	initializer = nil
	cleanup = done
	return nil
}

func needsNoServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipInit]; ok {
			return true
		}
	}
	return cmd.Name() == "help"
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
