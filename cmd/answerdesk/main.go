// Command answerdesk drafts evidence-checked replies to customer inquiries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/answerdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/answerdesk/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// API keys and DSNs may come from a local .env file.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(cli.ExitCode(err))
	}
}

func run(ctx context.Context) error {
	configDir := os.Getenv("ANSWERDESK_HOME")
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetInitializer(func(ctx context.Context) (*cli.Services, func(), error) {
		return buildServices(ctx, configStore.Dir(), settingsService, os.Stdout)
	})

	return cli.Execute(ctx)
}
